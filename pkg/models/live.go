package models

import "fmt"

// LiveStatus is the body of GET /api/live/status
type LiveStatus struct {
	Running  bool     `json:"running"`
	Paused   bool     `json:"paused"`
	FPS      *float64 `json:"fps,omitempty"`
	CameraID string   `json:"camera_id,omitempty"`
}

// Command is a transport action issued by the operator.
type Command string

const (
	CommandPlay    Command = "play"
	CommandPause   Command = "pause"
	CommandStop    Command = "stop"
	CommandRestart Command = "restart"
)

// ParseCommand accepts the four action names, plus "start" as an alias for play.
func ParseCommand(s string) (Command, error) {
	switch s {
	case "play", "start":
		return CommandPlay, nil
	case "pause":
		return CommandPause, nil
	case "stop":
		return CommandStop, nil
	case "restart":
		return CommandRestart, nil
	}
	return "", fmt.Errorf("unknown command %q (expected play, pause, stop or restart)", s)
}

// Implied is the camera state the command leads to once the backend applies it.
func (c Command) Implied() CameraState {
	switch c {
	case CommandPause:
		return StatePaused
	case CommandStop:
		return StateStopped
	default:
		return StateRunning
	}
}

// Pending is the value stored in the pending-command slot. Restart is held as play.
func (c Command) Pending() Command {
	if c == CommandRestart {
		return CommandPlay
	}
	return c
}

// Endpoint is the action segment of POST /api/live/{action}
func (c Command) Endpoint() string {
	if c == CommandPlay {
		return "start"
	}
	return string(c)
}
