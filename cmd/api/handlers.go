package main

import (
	"net/http"
	"time"

	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/notify"
	"cineconsole/proj/internal/services/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func (app *Application) healthcheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, struct {
		Status  string `json:"status"`
		Debug   bool   `json:"debug"`
		Version string `json:"version"`
	}{
		Status:  "available",
		Debug:   app.cfg.Debug,
		Version: version,
	})
}

type sessionView struct {
	User      models.User `json:"user"`
	Role      string      `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (app *Application) login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if !app.readInput(w, r, &creds) {
		return
	}
	session, err := app.Services.Auth.Login(r.Context(), creds)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.setSessionCookie(w, session)
	session.Notifications.Enqueue("Signed in as "+session.User.Account, notify.SeverityInfo, app.cfg.Notifications.TTL)
	app.Http.Ok(w, r, envelop{"session": sessionView{
		User:      session.User,
		Role:      session.Role,
		ExpiresAt: session.ExpiresAt,
	}}, "")
}

func (app *Application) logout(w http.ResponseWriter, r *http.Request) {
	app.Services.Auth.Logout(sessionFrom(r).ID)
	app.clearSessionCookie(w)
	app.Http.Ok(w, r, nil, "Signed out")
}

func (app *Application) dashboardStats(w http.ResponseWriter, r *http.Request) {
	dashboard, err := app.Services.Stats.Dashboard(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"dashboard": dashboard}, "")
}

func (app *Application) listNotifications(w http.ResponseWriter, r *http.Request) {
	active := sessionFrom(r).Notifications.Active(time.Now())
	app.Http.Ok(w, r, envelop{"notifications": active}, "")
}

func (app *Application) dismissNotification(w http.ResponseWriter, r *http.Request) {
	if !sessionFrom(r).Notifications.Dismiss(chi.URLParam(r, "id")) {
		app.Http.NotFound(w, r, "notification not found")
		return
	}
	app.Http.NoContent(w, r)
}
