package attendance

import "time"

// Processing policy. These are fixed and not tunable at runtime.
const (
	EarlyWindowHours          = 6
	LateWindowHours           = 6
	DefaultLookbackHours      = 24
	OvertimeThresholdMinutes  = 10
	QualifierThresholdMinutes = 30
)

type Policy struct {
	EarlyWindow        time.Duration
	LateWindow         time.Duration
	Lookback           time.Duration
	OvertimeThreshold  time.Duration
	QualifierThreshold time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		EarlyWindow:        EarlyWindowHours * time.Hour,
		LateWindow:         LateWindowHours * time.Hour,
		Lookback:           DefaultLookbackHours * time.Hour,
		OvertimeThreshold:  OvertimeThresholdMinutes * time.Minute,
		QualifierThreshold: QualifierThresholdMinutes * time.Minute,
	}
}
