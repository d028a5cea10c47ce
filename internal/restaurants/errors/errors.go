package errors

import "errors"

var (
	ErrNotFound = errors.New("restaurant not found")

	ErrInvalidID = errors.New("invalid restaurant ID format")
)
