package validator

import (
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	LocalTimeLayout = "2006-01-02 15:04:05"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse(DateLayout, dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// IsValidMonth checks a 1-based calendar month number.
func IsValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// IsValidDateTime checks if a string is a valid timestamp.
// Accepts RFC3339 ("2024-01-15T10:30:00+07:00") or a zone-less "2024-01-15 10:30:00",
// the latter interpreted in loc.
func IsValidDateTime(dateTimeStr string, loc *time.Location) (time.Time, bool) {
	// Try RFC3339 format (ISO8601 with timezone)
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err == nil {
		return t, true
	}

	// Try RFC3339Nano format (with nanoseconds)
	t, err = time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	if loc == nil {
		loc = time.UTC
	}
	t, err = time.ParseInLocation(LocalTimeLayout, dateTimeStr, loc)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}
