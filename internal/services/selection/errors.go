package selection

import "errors"

var (
	ErrNoSystemSelected = errors.New("no cinema system selected")
	ErrUnknownCluster   = errors.New("cluster is not in the loaded list")
	ErrRoomsNotLoaded   = errors.New("rooms are not loaded")
	ErrUnknownRoom      = errors.New("room is not in the loaded list")
	ErrNothingToRetry   = errors.New("no failed fetch to retry")
)
