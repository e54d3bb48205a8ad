package media

import "errors"

var (
	// ErrMissingUploadToken is returned when a raw upload yields no token
	ErrMissingUploadToken = errors.New("upload response contained no upload token")

	// ErrNoItems is returned when a batch create is requested without items
	ErrNoItems = errors.New("at least one media item is required")
)
