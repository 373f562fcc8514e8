package services

import (
	"log/slog"

	"cineconsole/proj/internal/clients/cinema"
	"cineconsole/proj/internal/config"
	"cineconsole/proj/internal/services/auth"
	"cineconsole/proj/internal/services/movies"
	"cineconsole/proj/internal/services/selection"
	"cineconsole/proj/internal/services/showtimes"
	"cineconsole/proj/internal/services/stats"
	"cineconsole/proj/internal/services/theaters"
	"cineconsole/proj/internal/services/users"
	"cineconsole/proj/internal/storage/memory"

	govalidator "github.com/go-playground/validator/v10"
)

type Services struct {
	Auth      *auth.AuthService
	Movies    *movies.MovieService
	Showtimes *showtimes.ShowtimeService
	Theaters  *theaters.TheaterService
	Users     *users.UserService
	Stats     *stats.StatsService
}

func New(
	log *slog.Logger,
	cfg *config.Config,
	client *cinema.Client,
	rooms *memory.RoomRegistry,
	validator *govalidator.Validate,
	taskExecutor selection.TaskExecutor,
) *Services {
	moviesService := movies.New(log, client, validator, cfg.GroupCode)
	theatersService := theaters.New(log, client, rooms, validator)
	return &Services{
		Auth:      auth.New(log, client, validator, theatersService, taskExecutor, cfg.Session.TTL),
		Movies:    moviesService,
		Showtimes: showtimes.New(log, client, validator, cfg.Location()),
		Theaters:  theatersService,
		Users:     users.New(log, client, validator, cfg.GroupCode),
		Stats:     stats.New(log, moviesService, theatersService),
	}
}
