package cinema

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cineconsole/proj/internal/lib/apperr"
)

// APIError is a non-2xx response from the cinema backend. Body keeps the raw
// payload for display.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cinema: %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("cinema: %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *APIError) HTTPStatus() int  { return e.StatusCode }
func (e *APIError) HTTPBody() string { return e.Body }

// Unwrap maps 404 responses to apperr.ErrNotFound.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return apperr.ErrNotFound
	}
	return nil
}

func newError(method, path string, status int, body []byte) error {
	msg := messageOf(body)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return apperr.NewAuthorizationError(status, msg, string(body))
	}
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    msg,
		Body:       string(body),
	}
}

// messageOf extracts the human message of an error envelope. The backend puts
// it in content when content is a string, otherwise in message.
func messageOf(body []byte) string {
	var env struct {
		Message string          `json:"message"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	var content string
	if err := json.Unmarshal(env.Content, &content); err == nil && content != "" {
		return content
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Content, &nested); err == nil && nested.Message != "" {
		return nested.Message
	}
	return env.Message
}

func IsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}

func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var authErr *apperr.AuthorizationError
	if errors.As(err, &authErr) {
		return authErr.Status
	}
	return 0
}
