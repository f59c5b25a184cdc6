package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNotEmpty        = errors.New("not empty")
	ErrHasChildren     = errors.New("has children")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrNotConnected    = errors.New("not connected")
	ErrUnauthorized    = errors.New("unauthorized")
)
