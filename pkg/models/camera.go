package models

import "strings"

// CameraState is the live session state shown to the operator.
type CameraState string

const (
	StateStopped CameraState = "stopped"
	StateRunning CameraState = "running"
	StatePaused  CameraState = "paused"
)

// ParseCameraState never fails: anything unrecognised is treated as stopped.
func ParseCameraState(s string) CameraState {
	switch CameraState(strings.ToLower(strings.TrimSpace(s))) {
	case StateRunning:
		return StateRunning
	case StatePaused:
		return StatePaused
	default:
		return StateStopped
	}
}

func (s CameraState) String() string {
	if s == "" {
		return string(StateStopped)
	}
	return string(s)
}

// CameraStatus is the connectivity of a single camera source.
type CameraStatus string

const (
	CameraOnline  CameraStatus = "online"
	CameraOffline CameraStatus = "offline"
	CameraIdle    CameraStatus = "idle"
)

// CameraDescriptor is one rotatable camera source with its current overlay data.
type CameraDescriptor struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Status       CameraStatus `json:"status"`
	CurrentEvent string       `json:"currentEvent,omitempty"`
	Severity     Severity     `json:"severity"`
	PersonCount  int          `json:"personCount"`
}

// RotationTimerState is the countdown shown next to the rotating feed. Values are seconds.
type RotationTimerState struct {
	CurrentIndex  int `json:"currentIndex"`
	TimeRemaining int `json:"timeRemaining"`
	ExtendedTime  int `json:"extendedTime"` // non-zero while rotation is held back by a threat
}

// Extended reports whether the countdown is currently running an extension.
func (t RotationTimerState) Extended() bool {
	return t.ExtendedTime > 0
}
