package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"cineconsole/proj/internal/clients/cinema"
	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/apperr"
	"cineconsole/proj/internal/notify"
	"cineconsole/proj/internal/services/auth"
	"cineconsole/proj/internal/services/movies"
	"cineconsole/proj/internal/services/selection"
	"cineconsole/proj/internal/services/showtimes"
	"cineconsole/proj/internal/services/theaters"
	"cineconsole/proj/internal/services/users"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
)

const (
	maxBodyBytes   = 1_048_576      // 1MB
	maxUploadBytes = 10 * 1_048_576 // 10MB
	posterField    = "hinhAnh"
)

func (app *Application) extractIDParam(w http.ResponseWriter, r *http.Request) (id int, extracted bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		app.Http.BadRequest(w, r, "invalid movie ID")
		return 0, false
	}
	if id < 1 {
		app.Http.BadRequest(w, r, "id must be greater than zero")
		return 0, false
	}
	return id, true
}

func (app *Application) extractStringParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		app.Http.BadRequest(w, r, name+" must not be empty")
		return "", false
	}
	return value, true
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	src := http.MaxBytesReader(w, r.Body, int64(maxBodyBytes))
	defer io.Copy(io.Discard, src)
	dec := json.NewDecoder(src)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err != nil {
		return handleJsonErr(err)
	}
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func handleJsonErr(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError
	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")

	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")

	case errors.As(err, &invalidUnmarshalError):
		panic(err)
	default:
		return err
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readInput decodes a JSON body or an urlencoded/multipart form into dst.
// It writes the error response itself and reports whether decoding succeeded.
func (app *Application) readInput(w http.ResponseWriter, r *http.Request, dst any) bool {
	if isJSON(r) {
		if err := app.readJSON(w, r, dst); err != nil {
			app.Http.BadRequest(w, r, err.Error())
			return false
		}
		return true
	}
	return app.readForm(w, r, dst)
}

func (app *Application) readForm(w http.ResponseWriter, r *http.Request, dst any) bool {
	var err error
	if isMultipart(r) {
		err = r.ParseMultipartForm(maxUploadBytes)
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, int64(maxBodyBytes))
		err = r.ParseForm()
	}
	if err != nil {
		app.Http.BadRequest(w, r, "malformed form data")
		return false
	}
	if err := app.decoder.Decode(dst, r.PostForm); err != nil {
		app.handleSchemaErr(w, r, err)
		return false
	}
	return true
}

func (app *Application) readQuery(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := app.decoder.Decode(dst, r.URL.Query()); err != nil {
		app.handleSchemaErr(w, r, err)
		return false
	}
	return true
}

func (app *Application) handleSchemaErr(w http.ResponseWriter, r *http.Request, err error) {
	var multiErr schema.MultiError
	if !errors.As(err, &multiErr) {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	errs := make(map[string]string, len(multiErr))
	for field := range multiErr {
		errs[field] = "Invalid value"
	}
	app.Http.UnprocessableEntity(w, r, errs)
}

// readPoster returns the uploaded poster, or nil when the form carries none.
func (app *Application) readPoster(r *http.Request) (*models.Image, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(posterField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &models.Image{Filename: header.Filename, Content: content}, nil
}

var (
	notFoundErrors = []error{
		movies.ErrMovieNotFound,
		showtimes.ErrShowtimeNotFound,
		theaters.ErrClusterNotFound,
		theaters.ErrRoomNotFound,
		users.ErrUserNotFound,
	}
	conflictErrors = []error{
		movies.ErrMovieAlreadyExists,
		theaters.ErrRoomAlreadyExists,
		users.ErrAccountTaken,
		selection.ErrNoSystemSelected,
		selection.ErrUnknownCluster,
		selection.ErrRoomsNotLoaded,
		selection.ErrUnknownRoom,
		selection.ErrNothingToRetry,
	}
)

func matching(err error, candidates []error) (error, bool) {
	for _, candidate := range candidates {
		if errors.Is(err, candidate) {
			return candidate, true
		}
	}
	return nil, false
}

func upstreamOf(d apperr.Diagnostic) envelop {
	if d.HTTPStatus() == 0 && d.HTTPBody() == "" {
		return nil
	}
	return envelop{"upstream_status": d.HTTPStatus(), "upstream_body": d.HTTPBody()}
}

// authGuidance tells the operator how to recover from a refused backend call.
func authGuidance(reason apperr.AuthReason) string {
	if reason == apperr.ReasonTokenInvalid {
		return "Access token is invalid or expired. Sign in again."
	}
	return "This account lacks the required role. Check its permissions or sign in with an administrator account."
}

// handleServiceError maps a service error to its response. Backend failures
// are also queued as error notifications on the caller's session.
func (app *Application) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr  *apperr.ValidationError
		authErr        *apperr.AuthorizationError
		unavailableErr *apperr.EndpointUnavailableError
		apiErr         *cinema.APIError
	)
	switch {
	case errors.As(err, &validationErr):
		app.Http.UnprocessableEntity(w, r, validationErr.Fields)
	case errors.Is(err, users.ErrAccountMismatch):
		app.Http.UnprocessableEntity(w, r, map[string]string{"taiKhoan": users.ErrAccountMismatch.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		app.Http.Unauthorized(w, r, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, auth.ErrSessionExpired):
		app.Http.Unauthorized(w, r, "session expired, please sign in again")
	case errors.As(err, &authErr):
		msg := authGuidance(authErr.Reason)
		app.notifyError(r, msg)
		data := envelop{"reason": authErr.Reason}
		if authErr.Message != "" {
			data["upstream_message"] = authErr.Message
		}
		status := http.StatusForbidden
		if authErr.Reason == apperr.ReasonTokenInvalid {
			status = http.StatusUnauthorized
		}
		app.Http.Response(w, r, data, msg, status)
	case errors.Is(err, apperr.ErrNotFound):
		msg := ""
		if known, ok := matching(err, notFoundErrors); ok {
			msg = known.Error()
		}
		app.Http.NotFound(w, r, msg)
	case isConflict(err):
		known, _ := matching(err, conflictErrors)
		app.Http.Conflict(w, r, known.Error())
	case errors.Is(err, apperr.ErrConfiguration):
		app.Http.ServerError(w, r, err, "")
	case errors.As(err, &unavailableErr):
		app.notifyError(r, "Cinema backend is unavailable, please try again later")
		upstream := upstreamOf(unavailableErr)
		if upstream == nil {
			upstream = envelop{}
		}
		upstream["attempts"] = unavailableErr.Attempts
		app.Http.BadGateway(w, r, "cinema backend unavailable", upstream)
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = "cinema backend rejected the request"
		}
		app.notifyError(r, msg)
		app.Http.BadGateway(w, r, msg, upstreamOf(apiErr))
	case errors.Is(err, auth.ErrMissingToken):
		app.Http.BadGateway(w, r, auth.ErrMissingToken.Error(), nil)
	default:
		app.Http.ServerError(w, r, err, "")
	}
}

func isConflict(err error) bool {
	_, ok := matching(err, conflictErrors)
	return ok
}

func (app *Application) notifyError(r *http.Request, msg string) {
	if session := sessionFrom(r); session != nil {
		session.Notifications.Enqueue(msg, notify.SeverityError, app.cfg.Notifications.ErrorTTL)
	}
}

func (app *Application) notifySuccess(r *http.Request, msg string) {
	if session := sessionFrom(r); session != nil {
		session.Notifications.Enqueue(msg, notify.SeveritySuccess, app.cfg.Notifications.TTL)
	}
}

func (app *Application) notifyBatch(r *http.Request, noun string, succeeded, failed int) {
	session := sessionFrom(r)
	if session == nil {
		return
	}
	switch {
	case failed == 0:
		session.Notifications.Enqueue(fmt.Sprintf("Deleted %d %s(s)", succeeded, noun), notify.SeveritySuccess, app.cfg.Notifications.TTL)
	case succeeded == 0:
		session.Notifications.Enqueue(fmt.Sprintf("Failed to delete %d %s(s)", failed, noun), notify.SeverityError, app.cfg.Notifications.ErrorTTL)
	default:
		session.Notifications.Enqueue(
			fmt.Sprintf("Deleted %d %s(s), %d failed", succeeded, noun, failed),
			notify.SeverityWarning,
			app.cfg.Notifications.ErrorTTL,
		)
	}
}
