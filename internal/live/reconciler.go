// Package live keeps the operator's view of the live session consistent: it reconciles
// locally issued commands against the polled backend state, dispatches those commands,
// and schedules camera rotation on top of the resulting state.
package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sentry-console/internal/log"
	"sentry-console/pkg/models"
)

// StatusSource is the authoritative live-status endpoint.
type StatusSource interface {
	GetLiveStatus(ctx context.Context) (*models.LiveStatus, error)
}

// Snapshot is the input of one reconciliation: the server payload (nil when absent)
// and the pending-command slot (empty when nothing is pending).
type Snapshot struct {
	Server  *models.LiveStatus
	Pending models.Command
}

// Resolve derives the camera state for one reconciliation cycle.
// A pending command always wins over the server payload.
func Resolve(s Snapshot) models.CameraState {
	if s.Pending != "" {
		return s.Pending.Implied()
	}
	switch {
	case s.Server == nil || !s.Server.Running:
		return models.StateStopped
	case s.Server.Paused:
		return models.StatePaused
	default:
		return models.StateRunning
	}
}

// ReconcilerStats counts poll outcomes since start.
type ReconcilerStats struct {
	Polls    uint64
	Failures uint64
	LastPoll time.Time
	LastErr  string
}

// Reconciler owns CameraState and the single pending-command slot.
type Reconciler struct {
	source   StatusSource
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	state   models.CameraState
	pending models.Command
	last    *models.LiveStatus
	stats   ReconcilerStats

	changed chan struct{}
}

func NewReconciler(source StatusSource, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = 1500 * time.Millisecond
	}
	return &Reconciler{
		source:   source,
		interval: interval,
		logger:   log.WithComponent("reconciler"),
		state:    models.StateStopped,
		changed:  make(chan struct{}, 1),
	}
}

// Changes signals (coalesced) whenever the camera state changes.
func (r *Reconciler) Changes() <-chan struct{} {
	return r.changed
}

func (r *Reconciler) notify() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

func (r *Reconciler) State() models.CameraState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Pending returns the command waiting to be confirmed, or "" if none.
func (r *Reconciler) Pending() models.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// LastStatus returns a copy of the last successfully polled payload.
func (r *Reconciler) LastStatus() *models.LiveStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil
	}
	cp := *r.last
	return &cp
}

func (r *Reconciler) Stats() ReconcilerStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Issue records a user command in the pending slot, overwriting any earlier one.
func (r *Reconciler) Issue(cmd models.Command) {
	r.mu.Lock()
	r.pending = cmd.Pending()
	r.mu.Unlock()
}

// SetOptimistic sets the camera state ahead of server confirmation.
func (r *Reconciler) SetOptimistic(state models.CameraState) {
	r.setState(state)
}

func (r *Reconciler) setState(state models.CameraState) {
	r.mu.Lock()
	prev := r.state
	r.state = state
	r.mu.Unlock()

	if prev != state {
		r.notify()
	}
}

// Apply runs one reconciliation against a freshly received payload. The pending slot is
// read at apply time, so a poll that was already in flight when a command was issued
// still defers to it. The slot is cleared unconditionally.
func (r *Reconciler) Apply(status *models.LiveStatus) models.CameraState {
	r.mu.Lock()
	next := Resolve(Snapshot{Server: status, Pending: r.pending})
	overridden := r.pending
	r.pending = ""
	if status != nil {
		cp := *status
		r.last = &cp
	}
	prev := r.state
	r.state = next
	r.mu.Unlock()

	if overridden != "" {
		r.logger.Debug().
			Str("pending", string(overridden)).
			Str("state", string(next)).
			Msg("pending command consumed")
	}
	if prev != next {
		r.logger.Info().
			Str("from", string(prev)).
			Str("to", string(next)).
			Msg("camera state changed")
		r.notify()
	}
	return next
}

// Poll performs one reconciliation cycle. A failed request leaves the state untouched.
func (r *Reconciler) Poll(ctx context.Context) error {
	status, err := r.source.GetLiveStatus(ctx)

	r.mu.Lock()
	r.stats.Polls++
	r.stats.LastPoll = time.Now()
	if err != nil {
		r.stats.Failures++
		r.stats.LastErr = err.Error()
	} else {
		r.stats.LastErr = ""
	}
	r.mu.Unlock()

	if err != nil {
		if !errors.Is(ctx.Err(), context.Canceled) {
			r.logger.Debug().Err(err).Msg("status poll failed, keeping current state")
		}
		return err
	}

	r.Apply(status)
	return nil
}

// Run polls immediately and then every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.pollOnce(ctx)
		}
	}
}

// pollOnce runs one cycle bounded by the polling interval.
func (r *Reconciler) pollOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()
	_ = r.Poll(ctx)
}
