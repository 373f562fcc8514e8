// Package dispatch runs an ordered list of alternative strategies for one
// logical backend operation and stops at the first that succeeds.
//
// It is a fallback mechanism for heterogeneous or undocumented endpoints, not a
// retry policy: every strategy runs at most once, there is no backoff and no
// deadline of its own.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cineconsole/proj/internal/lib/apperr"
)

// Strategy is one candidate way of performing an operation.
type Strategy[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

func New[T any](name string, run func(ctx context.Context) (T, error)) Strategy[T] {
	return Strategy[T]{Name: name, Run: run}
}

// Run invokes strategies strictly in order. The first one returning a nil error
// wins and the rest are never invoked. When all fail the result is an
// *apperr.EndpointUnavailableError carrying the last diagnostic payload.
func Run[T any](ctx context.Context, log *slog.Logger, op string, strategies ...Strategy[T]) (T, error) {
	var zero T
	if len(strategies) == 0 {
		return zero, fmt.Errorf("%s: empty strategy list: %w", op, apperr.ErrConfiguration)
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("op", op)
	failure := &apperr.EndpointUnavailableError{Op: op}
	for i, s := range strategies {
		if s.Run == nil {
			return zero, fmt.Errorf("%s: strategy %q has no func: %w", op, s.Name, apperr.ErrConfiguration)
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		failure.Attempts++
		res, err := s.Run(ctx)
		if err == nil {
			if i > 0 {
				log.Info("fallback strategy succeeded", "strategy", s.Name, "attempt", failure.Attempts)
			}
			return res, nil
		}
		if errors.Is(err, apperr.ErrConfiguration) || apperr.IsValidation(err) {
			return zero, err
		}
		log.Warn("strategy failed", "strategy", s.Name, "attempt", failure.Attempts, "errMsg", err.Error())
		failure.Errors = append(failure.Errors, fmt.Errorf("%s: %w", s.Name, err))
		var diag apperr.Diagnostic
		if errors.As(err, &diag) {
			failure.Status = diag.HTTPStatus()
			failure.Body = diag.HTTPBody()
		} else {
			failure.Status = 0
			failure.Body = ""
		}
	}
	log.Error("all strategies failed", "attempts", failure.Attempts)
	return zero, failure
}
