package errors

import "errors"

var (
	ErrInvalidRequest           = errors.New("invalid request")
	ErrForbidden                = errors.New("actor is not allowed to perform this action")
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrCarNotFound              = errors.New("car not found")
	ErrAdvertisementNotFound    = errors.New("car has no advertisement")
	ErrSelfTrade                = errors.New("buyer and seller cannot be the same user")
	ErrPendingTransactionExists = errors.New("car already has a pending transaction")
	ErrCarAlreadyTraded         = errors.New("car already has a transaction on record")
	ErrInvalidStatus            = errors.New("invalid transaction status")
	ErrInvalidTransition        = errors.New("transaction cannot move to the requested status")
	ErrTransactionClosed        = errors.New("transaction is already closed")
)
