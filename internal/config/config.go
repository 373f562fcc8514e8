package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Debug         bool          `yaml:"debug" env:"DEBUG"`
	GroupCode     string        `yaml:"group_code" env:"GROUP_CODE" env-default:"GP01"`
	Timezone      string        `yaml:"timezone" env:"TIMEZONE" env-default:"Asia/Ho_Chi_Minh"`
	Limiter       Limiter       `yaml:"limiter"`
	Server        Server        `yaml:"server"`
	Session       Session       `yaml:"session"`
	Tasks         Tasks         `yaml:"tasks"`
	Notifications Notifications `yaml:"notifications"`
	Clients       ClientsConfig `yaml:"clients"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled" env:"LIMITER_ENABLED"`
	Rps     float64 `yaml:"rps" env-default:"20"`
	Burst   int     `yaml:"burst" env-default:"5"`
}

// Client describes the cinema backend. ApiToken and AuthToken are the static
// credentials sent on every request.
type Client struct {
	BaseURL   string        `yaml:"base_url" env:"CINEMA_BASE_URL" env-required:"true"`
	ApiToken  string        `yaml:"api_token" env:"CINEMA_API_TOKEN" env-required:"true"`
	AuthToken string        `yaml:"auth_token" env:"CINEMA_AUTH_TOKEN"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10s"`
}

type ClientsConfig struct {
	Cinema Client `yaml:"cinema"`
}

type Server struct {
	Port string `yaml:"port" env:"PORT" env-default:"8000"`
	Host string `yaml:"host" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type Session struct {
	CookieName string        `yaml:"cookie_name" env-default:"session_id"`
	TTL        time.Duration `yaml:"ttl" env-default:"12h"`
	Secure     bool          `yaml:"secure"`
}

type Tasks struct {
	Workers   int `yaml:"workers" env-default:"4"`
	QueueSize int `yaml:"queue_size" env-default:"64"`
}

type Notifications struct {
	TTL      time.Duration `yaml:"ttl" env-default:"5s"`
	ErrorTTL time.Duration `yaml:"error_ttl" env-default:"10s"`
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(configPath string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s not found", configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves Timezone, falling back to local time when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
