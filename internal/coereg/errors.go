package coereg

import "errors"

var (
	errEmptyID           = errors.New("check id must not be empty")
	errUnknownCategory   = errors.New("category is not one of the fixed category tags")
	errNonPositiveWeight = errors.New("weight must be positive")
	errNilRunFunc        = errors.New("run function must not be nil")
	errDuplicateID       = errors.New("a check with this id is already registered")
)
