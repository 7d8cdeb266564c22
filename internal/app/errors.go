package service

import "errors"

// Sentinel errors for the session lifecycle.
var (
	ErrStopped        = errors.New("session not started")
	ErrNoRenderer     = errors.New("no renderer configured")
	ErrInvalidSetting = errors.New("invalid setting")
	ErrNoGazeReceiver = errors.New("session has no gaze broadcaster")
)
