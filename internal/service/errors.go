package service

import "errors"

var (
	// ErrInvalidSample marks a malformed position or heading sample
	ErrInvalidSample = errors.New("invalid sample")

	// ErrInvalidQuery marks malformed query parameters
	ErrInvalidQuery = errors.New("invalid query")
)
