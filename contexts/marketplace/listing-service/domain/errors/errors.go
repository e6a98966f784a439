package errors

import "errors"

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrForbidden             = errors.New("you do not have permission to modify this advertisement")
	ErrCarNotFound           = errors.New("car not found")
	ErrAdvertisementNotFound = errors.New("advertisement not found")
	ErrCarAlreadyListed      = errors.New("car already has an advertisement")
	ErrCarHasTransaction     = errors.New("car is referenced by a transaction")
)
