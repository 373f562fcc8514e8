package users

import (
	"errors"
	"fmt"

	"cineconsole/proj/internal/lib/apperr"
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrAccountTaken    = errors.New("account name is already taken")
	ErrAccountMismatch = errors.New("account name cannot be changed")
)
