// Package dashboard polls the event feed and the summary counters and derives the
// timeline, the threat alerts and the per-camera overlay data from them.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sentry-console/internal/log"
	"sentry-console/pkg/models"
)

// DefaultCameraID is the camera an event is attributed to when it names none.
const DefaultCameraID = "LIVE"

// Source is the pair of backend feeds the aggregator joins.
type Source interface {
	GetEvents(ctx context.Context) ([]models.Event, error)
	GetSummary(ctx context.Context) (*models.Summary, error)
}

// Snapshot is one consistent view of the dashboard.
type Snapshot struct {
	Timeline  []models.TimelineEvent    `json:"timeline"`
	Alerts    []models.Alert            `json:"alerts"`
	Summary   models.Summary            `json:"summary"`
	Cameras   []models.CameraDescriptor `json:"cameras"`
	UpdatedAt time.Time                 `json:"updatedAt"`
	Healthy   bool                      `json:"healthy"` // last cycle succeeded
}

type Options struct {
	Interval     time.Duration
	Cameras      []models.CameraDescriptor
	DismissedCap int
}

// Aggregator owns the timeline, the alert list, the summary and the dismissed set.
type Aggregator struct {
	source   Source
	interval time.Duration
	logger   zerolog.Logger

	mu        sync.Mutex
	cameras   []models.CameraDescriptor
	timeline  []models.TimelineEvent
	summary   models.Summary
	dismissed *lru.Cache[string, struct{}]
	updatedAt time.Time
	seen      bool
	healthy   bool
	cycles    uint64
	failures  uint64

	changed chan struct{}
}

func New(source Source, opts Options) (*Aggregator, error) {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.DismissedCap <= 0 {
		opts.DismissedCap = 4096
	}
	dismissed, err := lru.New[string, struct{}](opts.DismissedCap)
	if err != nil {
		return nil, fmt.Errorf("dismissed set: %w", err)
	}

	cameras := make([]models.CameraDescriptor, len(opts.Cameras))
	copy(cameras, opts.Cameras)
	if len(cameras) == 0 {
		cameras = []models.CameraDescriptor{{ID: DefaultCameraID, Name: "Live Surveillance"}}
	}

	return &Aggregator{
		source:    source,
		interval:  opts.Interval,
		logger:    log.WithComponent("dashboard"),
		cameras:   cameras,
		dismissed: dismissed,
		changed:   make(chan struct{}, 1),
	}, nil
}

// Changes signals (coalesced) after every committed cycle and every dismissal.
func (a *Aggregator) Changes() <-chan struct{} {
	return a.changed
}

func (a *Aggregator) notify() {
	select {
	case a.changed <- struct{}{}:
	default:
	}
}

// BuildTimeline shapes raw events for display. Ids are "{index}-{time}", which is stable
// only as long as the backend keeps the order of its event list.
func BuildTimeline(events []models.Event) []models.TimelineEvent {
	out := make([]models.TimelineEvent, 0, len(events))
	for i, e := range events {
		camera := e.Camera
		if camera == "" {
			camera = DefaultCameraID
		}
		out = append(out, models.TimelineEvent{
			ID:          fmt.Sprintf("%d-%s", i, e.Time),
			Type:        e.Type,
			Severity:    models.ParseSeverity(e.Severity),
			Timestamp:   e.Time,
			CameraID:    camera,
			Description: e.Type,
		})
	}
	return out
}

// Alerts returns the threat-level entries of a timeline, skipping dismissed ids.
func Alerts(timeline []models.TimelineEvent, dismissed func(id string) bool) []models.Alert {
	out := make([]models.Alert, 0)
	for _, ev := range timeline {
		if !ev.Severity.IsThreat() {
			continue
		}
		if dismissed != nil && dismissed(ev.ID) {
			continue
		}
		out = append(out, models.Alert{
			ID:        ev.ID,
			Message:   ev.Type,
			Severity:  ev.Severity,
			Timestamp: ev.Timestamp,
			CameraID:  ev.CameraID,
		})
	}
	return out
}

// Poll fetches both feeds in parallel and commits only if both succeed.
func (a *Aggregator) Poll(ctx context.Context) error {
	var (
		events  []models.Event
		summary *models.Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = a.source.GetEvents(gctx)
		if err != nil {
			return fmt.Errorf("events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		summary, err = a.source.GetSummary(gctx)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		a.mu.Lock()
		a.cycles++
		a.failures++
		a.healthy = false
		a.mu.Unlock()
		if !errors.Is(ctx.Err(), context.Canceled) {
			a.logger.Warn().Err(err).Msg("dashboard poll failed, keeping previous data")
		}
		return err
	}

	a.commit(BuildTimeline(events), summary)
	return nil
}

func (a *Aggregator) commit(timeline []models.TimelineEvent, summary *models.Summary) {
	a.mu.Lock()
	a.cycles++
	a.timeline = timeline
	if summary != nil {
		a.summary = *summary
	} else {
		a.summary = models.Summary{}
	}
	a.updatedAt = time.Now()
	a.seen = true
	a.healthy = true
	a.mu.Unlock()

	a.logger.Debug().
		Int("events", len(timeline)).
		Int("people", a.Summary().PeopleTracked).
		Msg("dashboard updated")
	a.notify()
}

// Run polls immediately and then on every interval until ctx is done.
func (a *Aggregator) Run(ctx context.Context) error {
	a.pollOnce(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.pollOnce(ctx)
		}
	}
}

// pollOnce runs one cycle bounded by the polling interval.
func (a *Aggregator) pollOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.interval)
	defer cancel()
	_ = a.Poll(ctx)
}

// Dismiss hides an alert for the rest of the session. It is never sent to the backend.
func (a *Aggregator) Dismiss(id string) {
	if id == "" {
		return
	}
	a.mu.Lock()
	a.dismissed.Add(id, struct{}{})
	a.mu.Unlock()
	a.notify()
}

func (a *Aggregator) isDismissed(id string) bool {
	return a.dismissed.Contains(id)
}

// Alerts returns the visible alerts of the last committed cycle.
func (a *Aggregator) Alerts() []models.Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Alerts(a.timeline, a.isDismissed)
}

func (a *Aggregator) Summary() models.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary
}

// Cameras returns the camera descriptors with the overlay data of the last committed cycle.
func (a *Aggregator) Cameras() []models.CameraDescriptor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.camerasLocked(Alerts(a.timeline, a.isDismissed))
}

func (a *Aggregator) camerasLocked(alerts []models.Alert) []models.CameraDescriptor {
	out := make([]models.CameraDescriptor, len(a.cameras))
	for i, c := range a.cameras {
		c.Status = models.CameraIdle
		if a.seen {
			c.Status = models.CameraOnline
		}
		c.CurrentEvent = "Monitoring"
		c.Severity = models.SeverityNormal
		for _, al := range alerts {
			if al.CameraID == c.ID {
				c.CurrentEvent = al.Message
				c.Severity = al.Severity
				break
			}
		}
		c.PersonCount = 0
		if i == 0 {
			c.PersonCount = a.summary.PeopleTracked
		}
		out[i] = c
	}
	return out
}

// Snapshot returns the timeline, alerts, summary and cameras from one committed cycle.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	timeline := make([]models.TimelineEvent, len(a.timeline))
	copy(timeline, a.timeline)
	alerts := Alerts(a.timeline, a.isDismissed)

	return Snapshot{
		Timeline:  timeline,
		Alerts:    alerts,
		Summary:   a.summary,
		Cameras:   a.camerasLocked(alerts),
		UpdatedAt: a.updatedAt,
		Healthy:   a.healthy,
	}
}

// AggregatorStats counts poll cycles since start.
type AggregatorStats struct {
	Cycles    uint64
	Failures  uint64
	Dismissed int
}

func (a *Aggregator) Stats() AggregatorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AggregatorStats{Cycles: a.cycles, Failures: a.failures, Dismissed: a.dismissed.Len()}
}
