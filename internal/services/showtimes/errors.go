package showtimes

import (
	"fmt"

	"cineconsole/proj/internal/lib/apperr"
)

var ErrShowtimeNotFound = fmt.Errorf("showtime %w", apperr.ErrNotFound)
