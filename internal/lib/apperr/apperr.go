// Package apperr holds the error taxonomy shared by the data-access layer.
// Only the HTTP boundary turns these into human text.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned for HTTP 404 responses and for client-side scans
	// that exhausted the listing without a match.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration marks a programming error such as an empty strategy list.
	// It is never retryable.
	ErrConfiguration = errors.New("configuration error")
)

// ValidationError reports local preconditions that failed before any network call.
// Fields maps the offending field name to its message.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type AuthReason string

const (
	ReasonTokenInvalid     AuthReason = "token_invalid"
	ReasonInsufficientRole AuthReason = "insufficient_role"
)

// AuthorizationError is returned for HTTP 401 and 403 responses.
type AuthorizationError struct {
	Status  int
	Reason  AuthReason
	Message string
	Body    string
}

func NewAuthorizationError(status int, msg, body string) *AuthorizationError {
	reason := ReasonInsufficientRole
	if status == 401 {
		reason = ReasonTokenInvalid
	}
	return &AuthorizationError{Status: status, Reason: reason, Message: msg, Body: body}
}

func (e *AuthorizationError) HTTPStatus() int  { return e.Status }
func (e *AuthorizationError) HTTPBody() string { return e.Body }

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authorization failed (%d): %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("authorization failed (%d): %s: %s", e.Status, e.Reason, e.Message)
}

// Diagnostic is implemented by errors that carry an upstream HTTP payload.
type Diagnostic interface {
	HTTPStatus() int
	HTTPBody() string
}

// EndpointUnavailableError is returned when every strategy of an operation failed.
// Status and Body come from the last error and are zero when it carried no
// diagnostic payload.
type EndpointUnavailableError struct {
	Op       string
	Attempts int
	Errors   []error
	Status   int
	Body     string
}

func (e *EndpointUnavailableError) Error() string {
	last := "no error recorded"
	if n := len(e.Errors); n > 0 {
		last = e.Errors[n-1].Error()
	}
	return fmt.Sprintf("%s: endpoint unavailable after %d attempt(s): %s", e.Op, e.Attempts, last)
}

func (e *EndpointUnavailableError) HTTPStatus() int  { return e.Status }
func (e *EndpointUnavailableError) HTTPBody() string { return e.Body }

// Unwrap exposes the last strategy error so errors.Is(err, ErrNotFound) holds
// for chains that ended in an exhausted scan.
func (e *EndpointUnavailableError) Unwrap() error {
	if n := len(e.Errors); n > 0 {
		return e.Errors[n-1]
	}
	return nil
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsAuthorization(err error) bool {
	var a *AuthorizationError
	return errors.As(err, &a)
}

func IsEndpointUnavailable(err error) bool {
	var e *EndpointUnavailableError
	return errors.As(err, &e)
}
