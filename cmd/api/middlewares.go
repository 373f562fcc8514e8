package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cineconsole/proj/internal/clients/cinema"
	"cineconsole/proj/internal/services/auth"

	"github.com/tomasen/realip"
	"golang.org/x/time/rate"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil && rec != http.ErrAbortHandler {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				app.Http.ServerError(w, r, err, "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	clients := make(map[string]*client)
	var mu sync.Mutex
	go func() {
		for {
			time.Sleep(5 * time.Minute)
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > 5*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.cfg.Limiter.Enabled {
			ip := realip.FromRequest(r)
			mu.Lock()
			c, ok := clients[ip]
			if !ok {
				c = &client{limiter: rate.NewLimiter(rate.Limit(app.cfg.Limiter.Rps), app.cfg.Limiter.Burst)}
				clients[ip] = c
			}
			c.lastSeen = time.Now()
			allowed := c.limiter.Allow()
			mu.Unlock()
			log.Debug("rate limiting", "ip", ip, "Available requests", c.limiter.Tokens())
			if !allowed {
				log.Warn("rate limit exceeded", "ip", ip)
				app.Http.TooManyRequests(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type CtxKey string

const CtxKeySession CtxKey = "session"

func sessionFrom(r *http.Request) *auth.Session {
	session, _ := r.Context().Value(CtxKeySession).(*auth.Session)
	return session
}

func withSession(ctx context.Context, session *auth.Session) context.Context {
	ctx = context.WithValue(ctx, CtxKeySession, session)
	return cinema.WithAccessToken(ctx, session.AccessToken)
}

// Authenticate resolves the session cookie. Requests without a live session
// continue anonymously and use the static backend token.
func (app *Application) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(app.cfg.Session.CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		session, err := app.Services.Auth.Session(cookie.Value)
		if err != nil {
			if errors.Is(err, auth.ErrSessionExpired) {
				app.log.Info("session expired", "session_id", cookie.Value)
			}
			app.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

func (app *Application) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r) == nil {
			app.Http.Unauthorized(w, r, "You must be signed in to access this resource")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (app *Application) setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.cfg.Session.CookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   app.cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (app *Application) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   app.cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
