package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sentry-console/pkg/models"
)

type fakeSource struct {
	mu         sync.Mutex
	events     []models.Event
	summary    *models.Summary
	eventsErr  error
	summaryErr error
	hang       bool // GetEvents blocks until its context ends
}

func (f *fakeSource) GetEvents(ctx context.Context) ([]models.Event, error) {
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return append([]models.Event(nil), f.events...), nil
}

func (f *fakeSource) GetSummary(context.Context) (*models.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	if f.summary == nil {
		return nil, nil
	}
	cp := *f.summary
	return &cp, nil
}

func newAggregator(t *testing.T, src Source, opts Options) *Aggregator {
	t.Helper()
	a, err := New(src, opts)
	require.NoError(t, err)
	return a
}

func TestBuildTimeline(t *testing.T) {
	tl := BuildTimeline([]models.Event{
		{Time: "12:00:01", Type: "VIOLENCE", Severity: "CRITICAL", Camera: "CAM-2"},
		{Time: "12:00:02", Type: "LOITERING", Severity: ""},
		{Time: "12:00:03", Type: "WEAPON", Severity: "bogus"},
	})

	require.Len(t, tl, 3)
	assert.Equal(t, "0-12:00:01", tl[0].ID)
	assert.Equal(t, "CAM-2", tl[0].CameraID)
	assert.Equal(t, models.SeverityCritical, tl[0].Severity)
	assert.Equal(t, "VIOLENCE", tl[0].Description)

	assert.Equal(t, "1-12:00:02", tl[1].ID)
	assert.Equal(t, DefaultCameraID, tl[1].CameraID)
	assert.Equal(t, models.SeverityNormal, tl[1].Severity)
	assert.Equal(t, models.SeverityNormal, tl[2].Severity)

	assert.Empty(t, BuildTimeline(nil))
}

func TestAlertsAreThreatsOnly(t *testing.T) {
	tl := BuildTimeline([]models.Event{
		{Time: "t1", Type: "VIOLENCE", Severity: "CRITICAL"},
		{Time: "t2", Type: "CROWD", Severity: "MEDIUM"},
		{Time: "t3", Type: "BLACKLIST_FACE", Severity: "HIGH"},
		{Time: "t4", Type: "WALK", Severity: "LOW"},
	})

	alerts := Alerts(tl, nil)
	require.Len(t, alerts, 2)
	assert.Equal(t, "VIOLENCE", alerts[0].Message)
	assert.Equal(t, "2-t3", alerts[1].ID)

	alerts = Alerts(tl, func(id string) bool { return id == "0-t1" })
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
}

func TestPollCommitsBothFeeds(t *testing.T) {
	src := &fakeSource{
		events:  []models.Event{{Time: "t1", Type: "VIOLENCE", Severity: "CRITICAL"}},
		summary: &models.Summary{PeopleTracked: 3, ActiveThreats: 1},
	}
	a := newAggregator(t, src, Options{})

	before := a.Cameras()
	require.Len(t, before, 1)
	assert.Equal(t, models.CameraIdle, before[0].Status)
	assert.Equal(t, "Monitoring", before[0].CurrentEvent)

	require.NoError(t, a.Poll(context.Background()))

	snap := a.Snapshot()
	assert.True(t, snap.Healthy)
	assert.Len(t, snap.Timeline, 1)
	assert.Len(t, snap.Alerts, 1)
	assert.Equal(t, 3, snap.Summary.PeopleTracked)
	assert.False(t, snap.UpdatedAt.IsZero())

	require.Len(t, snap.Cameras, 1)
	live := snap.Cameras[0]
	assert.Equal(t, DefaultCameraID, live.ID)
	assert.Equal(t, models.CameraOnline, live.Status)
	assert.Equal(t, "VIOLENCE", live.CurrentEvent)
	assert.Equal(t, models.SeverityCritical, live.Severity)
	assert.Equal(t, 3, live.PersonCount)
}

func TestFailedFeedSkipsWholeCycle(t *testing.T) {
	src := &fakeSource{
		events:  []models.Event{{Time: "t1", Type: "A", Severity: "HIGH"}},
		summary: &models.Summary{PeopleTracked: 1},
	}
	a := newAggregator(t, src, Options{})
	require.NoError(t, a.Poll(context.Background()))

	src.mu.Lock()
	src.events = append(src.events, models.Event{Time: "t2", Type: "B", Severity: "CRITICAL"})
	src.summary = &models.Summary{PeopleTracked: 9}
	src.summaryErr = errors.New("HTTP 503")
	src.mu.Unlock()

	err := a.Poll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary")

	snap := a.Snapshot()
	assert.False(t, snap.Healthy)
	assert.Len(t, snap.Timeline, 1, "events from the failed cycle are not committed")
	assert.Equal(t, 1, snap.Summary.PeopleTracked)
	assert.Equal(t, models.CameraOnline, snap.Cameras[0].Status)

	stats := a.Stats()
	assert.Equal(t, uint64(2), stats.Cycles)
	assert.Equal(t, uint64(1), stats.Failures)
}

func TestMissingSummaryIsZero(t *testing.T) {
	a := newAggregator(t, &fakeSource{}, Options{})
	require.NoError(t, a.Poll(context.Background()))
	assert.Equal(t, models.Summary{}, a.Summary())
	assert.Empty(t, a.Alerts())
}

// A dismissed alert stays hidden across later cycles as long as its id is regenerated.
func TestDismissPersistsAcrossCycles(t *testing.T) {
	src := &fakeSource{
		events: []models.Event{
			{Time: "t1", Type: "VIOLENCE", Severity: "CRITICAL"},
			{Time: "t2", Type: "WEAPON", Severity: "HIGH"},
		},
	}
	a := newAggregator(t, src, Options{})
	require.NoError(t, a.Poll(context.Background()))
	require.Len(t, a.Alerts(), 2)

	a.Dismiss("0-t1")
	alerts := a.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "1-t2", alerts[0].ID)
	assert.Equal(t, "WEAPON", a.Cameras()[0].CurrentEvent)

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Poll(context.Background()))
		assert.Len(t, a.Alerts(), 1)
	}
	assert.Len(t, a.Snapshot().Timeline, 2, "dismissal does not touch the timeline")
}

func TestDismissedSetIsCapped(t *testing.T) {
	a := newAggregator(t, &fakeSource{}, Options{DismissedCap: 2})
	a.Dismiss("a")
	a.Dismiss("b")
	a.Dismiss("c")
	a.Dismiss("")

	assert.Equal(t, 2, a.Stats().Dismissed)
	assert.False(t, a.isDismissed("a"), "oldest dismissal evicted")
	assert.True(t, a.isDismissed("c"))
}

func TestCamerasMatchAlertsByID(t *testing.T) {
	src := &fakeSource{
		events: []models.Event{
			{Time: "t1", Type: "VIOLENCE", Severity: "HIGH", Camera: "GATE"},
		},
		summary: &models.Summary{PeopleTracked: 5},
	}
	a := newAggregator(t, src, Options{Cameras: []models.CameraDescriptor{
		{ID: "LOBBY", Name: "Lobby"},
		{ID: "GATE", Name: "Gate"},
	}})
	require.NoError(t, a.Poll(context.Background()))

	cams := a.Cameras()
	require.Len(t, cams, 2)
	assert.Equal(t, "Monitoring", cams[0].CurrentEvent)
	assert.Equal(t, 5, cams[0].PersonCount, "people count goes to the primary camera")
	assert.Equal(t, "VIOLENCE", cams[1].CurrentEvent)
	assert.Equal(t, models.SeverityHigh, cams[1].Severity)
	assert.Zero(t, cams[1].PersonCount)
}

func TestRunPollsUntilCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a := newAggregator(t, &fakeSource{summary: &models.Summary{}}, Options{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return a.Stats().Cycles >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRunBoundsHungPollByInterval(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a := newAggregator(t, &fakeSource{hang: true, summary: &models.Summary{}}, Options{Interval: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return a.Stats().Failures >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, a.Snapshot().Healthy)
	cancel()
	assert.NoError(t, <-done)
}
