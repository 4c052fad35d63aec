package user

import "errors"

// Domain errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
	ErrInvalidInput = errors.New("invalid user input")
	ErrStoreFailure = errors.New("user store unavailable")
)
