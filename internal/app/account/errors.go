package account

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInvalidPhone   = errors.New("invalid_phone")
	ErrUserNotFound   = errors.New("user_not_found")
	ErrUserBlocked    = errors.New("user_blocked")
)
