package publisher

import "errors"

// Sentinel kinds for publisher errors.
var (
	ErrInvalidConfig = errors.New("invalid publisher configuration")
	ErrUnavailable   = errors.New("broker unavailable")
	ErrClosed        = errors.New("publisher closed")
)
