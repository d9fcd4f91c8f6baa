// Package console wires the live-feed components together: commands flow through the
// dispatcher to the backend, the reconciler turns polled status into the camera state,
// the scheduler rotates the dashboard's cameras, and the transport follows the result.
package console

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sentry-console/internal/config"
	"sentry-console/internal/dashboard"
	"sentry-console/internal/live"
	"sentry-console/internal/log"
	"sentry-console/internal/stream"
	"sentry-console/pkg/models"
)

// Backend is everything the console needs from the surveillance API.
type Backend interface {
	live.StatusSource
	live.Commander
	dashboard.Source
	stream.Signaler
}

type Console struct {
	rec       *live.Reconciler
	dispatch  *live.Dispatcher
	sched     *live.Scheduler
	agg       *dashboard.Aggregator
	sink      *stream.FrameSink
	transport *stream.Transport
	logger    zerolog.Logger

	changed chan struct{}
}

func New(api Backend, s config.Settings) (*Console, error) {
	agg, err := dashboard.New(api, dashboard.Options{
		Interval:     s.DashboardInterval,
		Cameras:      s.Descriptors(),
		DismissedCap: s.DismissedCap,
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	rec := live.NewReconciler(api, s.StatusInterval)
	sched := live.NewScheduler(s.RotationInterval, s.ExtendOnThreat)
	sched.SetCameras(agg.Cameras())

	sink := stream.NewFrameSink()

	return &Console{
		rec:       rec,
		dispatch:  live.NewDispatcher(api, rec),
		sched:     sched,
		agg:       agg,
		sink:      sink,
		transport: stream.New(stream.Config{ICEServers: s.ICEServers}, api, sink),
		logger:    log.WithComponent("console"),
		changed:   make(chan struct{}, 1),
	}, nil
}

// WithPeerFactory replaces the WebRTC peer constructor used by the transport.
func (c *Console) WithPeerFactory(f stream.PeerFactory) *Console {
	c.transport.WithPeerFactory(f)
	return c
}

// Changes signals (coalesced) whenever anything in View may have changed.
func (c *Console) Changes() <-chan struct{} {
	return c.changed
}

func (c *Console) notify() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// Run starts every loop and blocks until ctx is done. It returns only after all loops
// have exited and the transport is closed.
func (c *Console) Run(ctx context.Context) error {
	c.logger.Info().Msg("console starting")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.rec.Run(gctx) })
	g.Go(func() error { return c.agg.Run(gctx) })
	g.Go(func() error { return c.sched.Run(gctx) })
	g.Go(func() error { return c.follow(gctx) })

	err := g.Wait()
	c.transport.Close()

	c.logger.Info().Msg("console stopped")
	return err
}

// follow propagates changes between components until ctx is done.
func (c *Console) follow(ctx context.Context) error {
	c.syncState(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.rec.Changes():
			c.syncState(ctx)
		case <-c.agg.Changes():
			c.sched.SetCameras(c.agg.Cameras())
			c.syncTransport(ctx)
		case <-c.sched.Changes():
			c.syncTransport(ctx)
		}
		c.notify()
	}
}

func (c *Console) syncState(ctx context.Context) {
	c.sched.SetState(c.rec.State())
	c.syncTransport(ctx)
}

// The stream is wanted while the camera is running and there is a camera to show.
func (c *Console) syncTransport(ctx context.Context) {
	_, ok := c.sched.Current()
	c.transport.SetEnabled(ctx, ok && c.rec.State() == models.StateRunning)
}

// Command dispatches a live command. The camera state changes optimistically even when
// the request fails; the returned error is informational.
func (c *Console) Command(ctx context.Context, cmd models.Command) error {
	err := c.dispatch.Dispatch(ctx, cmd)
	c.syncState(ctx)
	if cmd == models.CommandRestart {
		c.transport.Renegotiate(ctx)
	}
	c.notify()
	return err
}

func (c *Console) Next() {
	c.sched.GoNext()
}

func (c *Console) Prev() {
	c.sched.GoPrev()
}

func (c *Console) Select(idx int) bool {
	return c.sched.Select(idx)
}

func (c *Console) SelectByID(id string) bool {
	return c.sched.SelectByID(id)
}

func (c *Console) Dismiss(id string) {
	c.agg.Dismiss(id)
}

// ApplySettings takes the hot-reloadable subset of the settings.
func (c *Console) ApplySettings(s config.Settings) {
	c.sched.SetInterval(s.RotationInterval)
	c.sched.SetExtendOnThreat(s.ExtendOnThreat)
	c.logger.Info().
		Int("rotation_interval", s.RotationInterval).
		Bool("extend_on_threat", s.ExtendOnThreat).
		Msg("rotation settings reloaded")
}

// View is one snapshot of everything a renderer shows.
type View struct {
	State     models.CameraState        `json:"state"`
	Pending   models.Command            `json:"pending,omitempty"`
	Live      *models.LiveStatus        `json:"live,omitempty"`
	Timer     models.RotationTimerState `json:"timer"`
	Active    []models.CameraDescriptor `json:"active"`
	Current   *models.CameraDescriptor  `json:"current,omitempty"`
	Streaming bool                      `json:"streaming"`
	Ready     bool                      `json:"ready"`
	Stream    stream.SinkStats          `json:"stream"`
	Transport stream.TransportStats     `json:"transport"`
	Status    live.ReconcilerStats      `json:"status"`
	Dashboard dashboard.Snapshot        `json:"dashboard"`
	Polls     dashboard.AggregatorStats `json:"polls"`
	At        time.Time                 `json:"at"`
}

func (c *Console) View() View {
	v := View{
		State:     c.rec.State(),
		Pending:   c.rec.Pending(),
		Live:      c.rec.LastStatus(),
		Timer:     c.sched.Timer(),
		Active:    c.sched.Active(),
		Streaming: c.transport.Live(),
		Ready:     c.sink.Ready(),
		Stream:    c.sink.Stats(),
		Transport: c.transport.Stats(),
		Status:    c.rec.Stats(),
		Dashboard: c.agg.Snapshot(),
		Polls:     c.agg.Stats(),
		At:        time.Now(),
	}
	if cur, ok := c.sched.Current(); ok {
		v.Current = &cur
	}
	return v
}
