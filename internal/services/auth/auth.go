package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cineconsole/proj/internal/clients/cinema"
	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/apperr"
	"cineconsole/proj/internal/lib/envelope"
	"cineconsole/proj/internal/lib/validator"
	"cineconsole/proj/internal/notify"
	"cineconsole/proj/internal/services/selection"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claim names used by the backend's access tokens.
const (
	claimRole    = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
	claimAccount = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
)

type AccountProvider interface {
	Login(ctx context.Context, creds cinema.Credentials) ([]byte, error)
}

type Credentials struct {
	Account  string `json:"taiKhoan" schema:"taiKhoan" validate:"required"`
	Password string `json:"matKhau" schema:"matKhau" validate:"required"`
}

// Session is one signed-in console user. It owns the user's selection
// controller and notification queue.
type Session struct {
	ID            string
	User          models.User
	Role          string
	AccessToken   string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	Selection     *selection.Controller
	Notifications *notify.Queue
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type AuthService struct {
	log       *slog.Logger
	provider  AccountProvider
	validator *govalidator.Validate
	fetcher   selection.Fetcher
	executor  selection.TaskExecutor
	ttl       time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func New(
	log *slog.Logger,
	provider AccountProvider,
	validator *govalidator.Validate,
	fetcher selection.Fetcher,
	executor selection.TaskExecutor,
	ttl time.Duration,
) *AuthService {
	return &AuthService{
		log:       log,
		provider:  provider,
		validator: validator,
		fetcher:   fetcher,
		executor:  executor,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Login signs in against the backend and opens a session. Only administrators
// may use the console.
func (a *AuthService) Login(ctx context.Context, creds Credentials) (*Session, error) {
	const op = "auth.AuthService.Login"
	log := a.log.With("op", op, "account", creds.Account)
	if err := validator.Validate(a.validator, creds); err != nil {
		return nil, err
	}
	raw, err := a.provider.Login(ctx, cinema.Credentials{Account: creds.Account, Password: creds.Password})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || cinema.StatusOf(err) == http.StatusBadRequest {
			log.Info("invalid credentials")
			return nil, ErrInvalidCredentials
		}
		log.Error("Error calling backend login", "errMsg", err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	account, err := envelope.DecodeRecord[models.Account](raw)
	if err != nil {
		log.Error("Error decoding account", "errMsg", err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if account.AccessToken == "" {
		log.Error(ErrMissingToken.Error())
		return nil, fmt.Errorf("%s: %w", op, ErrMissingToken)
	}

	now := a.now()
	expiresAt := now.Add(a.ttl)
	role := account.TypeID
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(account.AccessToken, claims); err != nil {
		log.Warn("access token is not a readable JWT", "errMsg", err.Error())
	} else {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(expiresAt) {
			expiresAt = exp.Time
		}
		if r, ok := claims[claimRole].(string); ok && r != "" {
			role = r
		}
	}
	if role != models.UserTypeAdmin {
		log.Info("non-admin sign-in refused", "role", role)
		return nil, apperr.NewAuthorizationError(http.StatusForbidden, "administrator account required", "")
	}
	if !now.Before(expiresAt) {
		return nil, ErrSessionExpired
	}

	user := account.User
	user.Password = ""
	session := &Session{
		ID:            uuid.NewString(),
		User:          user,
		Role:          role,
		AccessToken:   account.AccessToken,
		CreatedAt:     now,
		ExpiresAt:     expiresAt,
		Selection:     selection.New(a.log.With("session_account", user.Account), a.fetcher, a.executor),
		Notifications: notify.NewQueue(),
	}
	a.mu.Lock()
	a.purge(now)
	a.sessions[session.ID] = session
	a.mu.Unlock()
	log.Info("session opened", "expires_at", expiresAt)
	return session, nil
}

// Session returns the live session with id. Expired sessions are dropped.
func (a *AuthService) Session(id string) (*Session, error) {
	a.mu.RLock()
	session, ok := a.sessions[id]
	a.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Expired(a.now()) {
		a.Logout(id)
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (a *AuthService) Logout(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, id)
}

func (a *AuthService) purge(now time.Time) {
	for id, s := range a.sessions {
		if s.Expired(now) {
			delete(a.sessions, id)
		}
	}
}
