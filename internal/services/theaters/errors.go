package theaters

import (
	"errors"
	"fmt"

	"cineconsole/proj/internal/lib/apperr"
)

var (
	ErrClusterNotFound   = fmt.Errorf("cluster %w", apperr.ErrNotFound)
	ErrRoomNotFound      = fmt.Errorf("room %w", apperr.ErrNotFound)
	ErrRoomAlreadyExists = errors.New("room with that name already exists in the cluster")
)
