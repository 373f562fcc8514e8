package main

import (
	"flag"
	"os"

	"cineconsole/proj/internal/api/tasks"
	"cineconsole/proj/internal/clients/cinema"
	"cineconsole/proj/internal/config"
	"cineconsole/proj/internal/lib/logger"

	"github.com/joho/godotenv"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "config/local.yml", "path to config file")

	flag.Parse()
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		panic(err)
	}
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)
	client := cinema.New(
		log,
		cfg.Clients.Cinema.BaseURL,
		cfg.Clients.Cinema.ApiToken,
		cfg.Clients.Cinema.AuthToken,
		cfg.Clients.Cinema.Timeout,
	)
	log.Info("cinema backend configured", "base_url", cfg.Clients.Cinema.BaseURL, "timeout", cfg.Clients.Cinema.Timeout)
	bgTasks := tasks.New(log, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	bgTasks.Run()
	app := NewApplication(cfg, log, client, bgTasks)
	if err := app.serve(bgTasks); err != nil {
		app.log.Error("shutting down the server", "reason", err.Error())
		os.Exit(1)
	}
}
