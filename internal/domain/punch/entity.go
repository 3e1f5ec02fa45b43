package punch

import "time"

// Punch is a single raw clock event pulled from a time-clock device.
// Only Processed ever changes after the device sync inserts the row.
type Punch struct {
	ID         string
	EmployeeID string
	PunchedAt  time.Time
	DeviceID   string
	Processed  bool
	CreatedAt  time.Time
}

// IsMalformed reports whether the punch carries no usable instant.
func (p Punch) IsMalformed() bool {
	return p.PunchedAt.IsZero()
}

// IDs returns the ids of the given punches in order.
func IDs(punches []Punch) []string {
	ids := make([]string, 0, len(punches))
	for _, p := range punches {
		ids = append(ids, p.ID)
	}
	return ids
}
