package config

import "errors"

var (
	// ErrInvalidConfig marks settings that loaded fine but cannot drive the
	// control loop, such as a scroll zone wider than half the viewport.
	ErrInvalidConfig = errors.New("eyeflow: invalid config")

	// ErrLoadConfig marks a YAML file or EYEFLOW_ environment that could not
	// be read or decoded.
	ErrLoadConfig = errors.New("eyeflow: load config failed")
)
