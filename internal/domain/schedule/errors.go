package schedule

import "errors"

var (
	ErrShiftEntryNotFound = errors.New("no shift calendar entry for this employee and date")
	ErrInvalidShiftEntry  = errors.New("shift entry ends before it starts")
)
