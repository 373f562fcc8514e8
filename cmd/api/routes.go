package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.MethodNotAllowed(app.Http.MethodNotAllowed)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(app.RateLimiter)
	router.Use(app.Authenticate)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", app.healthcheck)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", app.login)
			r.With(app.requireSession).Post("/logout", app.logout)
		})

		r.Get("/banners", app.listBanners)
		r.Get("/cinema-systems", app.listCinemaSystems)
		r.Get("/dashboard/stats", app.dashboardStats)
		r.Route("/movies", func(r chi.Router) {
			r.Get("/", app.listMovies)
			r.Get("/name-available", app.movieNameAvailable)
			r.Get("/{id}", app.getMovie)
			r.Get("/{id}/showtimes", app.listMovieShowtimes)
			r.Group(func(r chi.Router) {
				r.Use(app.requireSession)
				r.Post("/", app.createMovie)
				r.Post("/bulk-delete", app.bulkDeleteMovies)
				r.Put("/{id}", app.updateMovie)
				r.Delete("/{id}", app.deleteMovie)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(app.requireSession)
			r.Route("/selection", func(r chi.Router) {
				r.Get("/", app.getSelection)
				r.Put("/system", app.chooseSystem)
				r.Put("/cluster", app.chooseCluster)
				r.Put("/room", app.chooseRoom)
				r.Post("/retry", app.retrySelection)
			})
			r.Route("/clusters/{id}/rooms", func(r chi.Router) {
				r.Post("/", app.addRoom)
				r.Delete("/{roomID}", app.deleteRoom)
			})
			r.Route("/showtimes", func(r chi.Router) {
				r.Post("/", app.createShowtime)
				r.Post("/bulk-delete", app.bulkDeleteShowtimes)
				r.Delete("/{id}", app.deleteShowtime)
			})
			r.Get("/user-types", app.listUserTypes)
			r.Route("/users", func(r chi.Router) {
				r.Get("/", app.listUsers)
				r.Post("/", app.createUser)
				r.Post("/bulk-delete", app.bulkDeleteUsers)
				r.Get("/{account}", app.getUser)
				r.Put("/{account}", app.updateUser)
				r.Delete("/{account}", app.deleteUser)
			})
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", app.listNotifications)
				r.Delete("/{id}", app.dismissNotification)
			})
		})
	})
	return router
}
