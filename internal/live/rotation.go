package live

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sentry-console/internal/log"
	"sentry-console/pkg/models"
)

// Extension lengths in seconds, applied when the countdown expires on a threat.
const (
	CriticalExtension = 20
	HighExtension     = 10
)

func extensionFor(sev models.Severity) int {
	if sev == models.SeverityCritical {
		return CriticalExtension
	}
	return HighExtension
}

// ActiveCameras is the rotation set: online cameras, or every camera when none is online.
func ActiveCameras(cameras []models.CameraDescriptor) []models.CameraDescriptor {
	online := make([]models.CameraDescriptor, 0, len(cameras))
	for _, c := range cameras {
		if c.Status == models.CameraOnline {
			online = append(online, c)
		}
	}
	if len(online) > 0 {
		return online
	}
	out := make([]models.CameraDescriptor, len(cameras))
	copy(out, cameras)
	return out
}

// Scheduler rotates through the active cameras on a one-second countdown.
// It never changes the camera state itself; it only reacts to SetState.
type Scheduler struct {
	logger zerolog.Logger
	tick   time.Duration

	mu       sync.Mutex
	active   []models.CameraDescriptor
	interval int
	extend   bool
	state    models.CameraState
	timer    models.RotationTimerState

	changed chan struct{}
}

func NewScheduler(rotationInterval int, extendOnThreat bool) *Scheduler {
	if rotationInterval <= 0 {
		rotationInterval = 10
	}
	return &Scheduler{
		logger:   log.WithComponent("rotation"),
		tick:     time.Second,
		interval: rotationInterval,
		extend:   extendOnThreat,
		state:    models.StateStopped,
		timer:    models.RotationTimerState{TimeRemaining: rotationInterval},
		changed:  make(chan struct{}, 1),
	}
}

// Changes signals (coalesced) after every tick, navigation or camera-list update.
func (s *Scheduler) Changes() <-chan struct{} {
	return s.changed
}

func (s *Scheduler) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// resetLocked restarts the countdown and clears any extension.
func (s *Scheduler) resetLocked() {
	s.timer.TimeRemaining = s.interval
	s.timer.ExtendedTime = 0
}

// SetState feeds the reconciled camera state. Any non-running state resets the countdown.
func (s *Scheduler) SetState(state models.CameraState) {
	s.mu.Lock()
	s.state = state
	if state != models.StateRunning {
		s.resetLocked()
	}
	s.mu.Unlock()
	s.notify()
}

// SetCameras replaces the camera descriptors and wraps the current index into the new active set.
func (s *Scheduler) SetCameras(cameras []models.CameraDescriptor) {
	s.mu.Lock()
	s.active = ActiveCameras(cameras)
	switch n := len(s.active); {
	case n == 0:
		s.timer.CurrentIndex = 0
	case s.timer.CurrentIndex >= n || s.timer.CurrentIndex < 0:
		prev := s.timer.CurrentIndex
		s.timer.CurrentIndex = ((prev % n) + n) % n
		s.logger.Debug().Int("from", prev).Int("to", s.timer.CurrentIndex).Int("active", n).Msg("index wrapped after camera list change")
	}
	s.mu.Unlock()
	s.notify()
}

// SetInterval changes the rotation interval. A countdown longer than the new interval is cut short.
func (s *Scheduler) SetInterval(seconds int) {
	if seconds <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = seconds
	if s.state != models.StateRunning || (s.timer.ExtendedTime == 0 && s.timer.TimeRemaining > seconds) {
		s.timer.TimeRemaining = seconds
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Scheduler) SetExtendOnThreat(enabled bool) {
	s.mu.Lock()
	s.extend = enabled
	s.mu.Unlock()
}

// Tick applies one countdown step. It does nothing unless the camera is running
// and at least two cameras are active, and reports whether a step was taken.
func (s *Scheduler) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.active)
	if s.state != models.StateRunning || n < 2 {
		return false
	}

	if s.timer.TimeRemaining > 1 {
		s.timer.TimeRemaining--
		return true
	}

	current := s.active[s.timer.CurrentIndex]
	if s.extend && current.Severity.IsThreat() {
		ext := extensionFor(current.Severity)
		s.timer.TimeRemaining = ext
		s.timer.ExtendedTime = ext
		s.logger.Info().
			Str("camera", current.ID).
			Str("severity", string(current.Severity)).
			Int("extension", ext).
			Msg("rotation extended")
		return true
	}

	s.timer.CurrentIndex = (s.timer.CurrentIndex + 1) % n
	s.resetLocked()
	return true
}

// GoNext moves to the next active camera.
func (s *Scheduler) GoNext() {
	s.step(1)
}

// GoPrev moves to the previous active camera.
func (s *Scheduler) GoPrev() {
	s.step(-1)
}

func (s *Scheduler) step(delta int) {
	s.mu.Lock()
	if n := len(s.active); n > 0 {
		s.timer.CurrentIndex = ((s.timer.CurrentIndex+delta)%n + n) % n
	}
	s.resetLocked()
	s.mu.Unlock()
	s.notify()
}

// Select jumps to an index of the active set. Out-of-range indexes are ignored.
func (s *Scheduler) Select(idx int) bool {
	s.mu.Lock()
	if idx < 0 || idx >= len(s.active) {
		s.mu.Unlock()
		return false
	}
	s.timer.CurrentIndex = idx
	s.resetLocked()
	s.mu.Unlock()
	s.notify()
	return true
}

// SelectByID jumps to a camera by id. Only cameras in the active set are reachable.
func (s *Scheduler) SelectByID(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, c := range s.active {
		if c.ID == id {
			idx = i
			break
		}
	}
	s.mu.Unlock()
	if idx < 0 {
		return false
	}
	return s.Select(idx)
}

// Current returns the camera at the current index, if any.
func (s *Scheduler) Current() (models.CameraDescriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer.CurrentIndex < 0 || s.timer.CurrentIndex >= len(s.active) {
		return models.CameraDescriptor{}, false
	}
	return s.active[s.timer.CurrentIndex], true
}

func (s *Scheduler) Timer() models.RotationTimerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer
}

// Active returns a copy of the rotation set.
func (s *Scheduler) Active() []models.CameraDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CameraDescriptor, len(s.active))
	copy(out, s.active)
	return out
}

// Run drives Tick once per second until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if s.Tick() {
				s.notify()
			}
		}
	}
}
