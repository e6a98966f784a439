package errors

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid mobile number or password")
	ErrForbidden          = errors.New("missing required role")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrMobileAlreadyTaken = errors.New("mobile number already registered")
	ErrRoleAlreadyGranted = errors.New("role already granted")
	ErrSelfDeactivation   = errors.New("you cannot deactivate your own account")
	ErrAccountDeactivated = errors.New("account is deactivated")
)
