package service

import (
	"fmt"
	"sync"
)

// DefaultScrollSpeed is the user scroll speed when nothing was chosen.
const DefaultScrollSpeed = 1.0

// Settings holds user preferences that outlive a single tracking session.
type Settings struct {
	mu          sync.RWMutex
	scrollSpeed float64
}

// NewSettings returns settings with the given scroll speed, or the default
// when speed is not positive.
func NewSettings(speed float64) *Settings {
	if speed <= 0 {
		speed = DefaultScrollSpeed
	}
	return &Settings{scrollSpeed: speed}
}

// ScrollSpeed returns the multiplier applied to the maximum scroll speed.
func (s *Settings) ScrollSpeed() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scrollSpeed
}

// SetScrollSpeed stores a new multiplier. It takes effect on the next Start.
func (s *Settings) SetScrollSpeed(v float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: scroll speed must be positive, got %v", ErrInvalidSetting, v)
	}
	s.mu.Lock()
	s.scrollSpeed = v
	s.mu.Unlock()
	return nil
}
