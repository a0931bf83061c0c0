package db

import "errors"

var (
	// requested record is not found.
	ErrMissing = errors.New("missing")

	// status string is not one of known statuses.
	ErrInvalidStatus = errors.New("invalid status")
)
