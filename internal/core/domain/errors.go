package domain

import "errors"

var (
	// ErrNotConfigured means the backing store was never initialized.
	// Permanent; callers must not retry.
	ErrNotConfigured = errors.New("store not configured")
	// ErrConnectionLost means a subscription dropped after initial success.
	// The last known room state remains usable.
	ErrConnectionLost  = errors.New("store connection lost")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExpired     = errors.New("room expired")
	ErrInvalidRoomID   = errors.New("invalid room id")
	ErrMalformedRecord = errors.New("malformed room record")
	ErrMovieNotFound   = errors.New("movie not found")
)
