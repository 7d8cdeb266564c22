package sensor

import "errors"

// Sentinel errors for gaze sources.
var (
	ErrSensorUnavailable = errors.New("gaze sensor unavailable")
)
