package match

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrMatchNotFound     = errors.New("match_not_found")
	ErrInvalidMatchState = errors.New("invalid_match_state")
)
