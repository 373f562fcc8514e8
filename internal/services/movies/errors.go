package movies

import (
	"errors"
	"fmt"

	"cineconsole/proj/internal/lib/apperr"
)

var (
	ErrMovieNotFound      = fmt.Errorf("movie %w", apperr.ErrNotFound)
	ErrMovieAlreadyExists = errors.New("movie with that title already exists")
)
