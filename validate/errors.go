package validate

import "errors"

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInsufficientData = errors.New("insufficient data")
	ErrNumericalFailure = errors.New("numerical failure")
)
