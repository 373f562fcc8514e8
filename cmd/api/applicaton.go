package main

import (
	"log/slog"
	"reflect"

	"cineconsole/proj/internal/clients/cinema"
	"cineconsole/proj/internal/config"
	"cineconsole/proj/internal/domain/fields"
	"cineconsole/proj/internal/lib/validator"
	"cineconsole/proj/internal/services"
	"cineconsole/proj/internal/services/selection"
	"cineconsole/proj/internal/storage/memory"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

type Application struct {
	cfg       *config.Config
	log       *slog.Logger
	Http      *Http
	Services  *services.Services
	validator *govalidator.Validate
	decoder   *schema.Decoder
}

func NewApplication(cfg *config.Config, log *slog.Logger, client *cinema.Client, executor selection.TaskExecutor) *Application {
	validator := validator.New()
	app := &Application{
		cfg:       cfg,
		log:       log,
		validator: validator,
		decoder:   newDecoder(),
		Services:  services.New(log, cfg, client, memory.NewRoomRegistry(), validator, executor),
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
	return app
}

func newDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(fields.ReleaseDate{}, func(s string) reflect.Value {
		if s == "" {
			return reflect.ValueOf(fields.ReleaseDate{})
		}
		d, err := fields.ParseReleaseDate(s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(d)
	})
	return decoder
}
