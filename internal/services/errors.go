package services

import "errors"

// Cleaning service errors
var (
	// Input errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedInput = errors.New("unsupported input type")

	// Report errors
	ErrInvalidReport = errors.New("invalid run report")
)
