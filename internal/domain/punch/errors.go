package punch

import "errors"

var (
	ErrMalformedPunch = errors.New("punch has no timestamp")
	ErrPunchNotFound  = errors.New("punch not found")
)
