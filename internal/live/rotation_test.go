package live

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sentry-console/pkg/models"
)

func cam(id string, status models.CameraStatus, sev models.Severity) models.CameraDescriptor {
	return models.CameraDescriptor{ID: id, Name: id, Status: status, Severity: sev}
}

func runningScheduler(interval int, extend bool, cams ...models.CameraDescriptor) *Scheduler {
	s := NewScheduler(interval, extend)
	s.SetCameras(cams)
	s.SetState(models.StateRunning)
	return s
}

func tickN(s *Scheduler, n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

func TestActiveCamerasPrefersOnline(t *testing.T) {
	a := cam("A", models.CameraOnline, models.SeverityNormal)
	b := cam("B", models.CameraOffline, models.SeverityNormal)

	active := ActiveCameras([]models.CameraDescriptor{a, b})
	require.Len(t, active, 1)
	assert.Equal(t, "A", active[0].ID)

	fallback := ActiveCameras([]models.CameraDescriptor{b, cam("C", models.CameraIdle, models.SeverityNormal)})
	assert.Len(t, fallback, 2, "no online camera falls back to the full list")

	assert.Empty(t, ActiveCameras(nil))
}

func TestOfflineCameraUnreachable(t *testing.T) {
	s := runningScheduler(10, true,
		cam("A", models.CameraOnline, models.SeverityNormal),
		cam("B", models.CameraOffline, models.SeverityNormal),
	)

	assert.False(t, s.SelectByID("B"))
	s.GoNext()
	s.GoPrev()
	tickN(s, 50)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "A", cur.ID)
}

func TestSingleCameraNeverTicks(t *testing.T) {
	s := runningScheduler(10, true, cam("LIVE", models.CameraOnline, models.SeverityNormal))

	for i := 0; i < 30; i++ {
		if i == 10 {
			s.SetCameras([]models.CameraDescriptor{cam("LIVE", models.CameraOnline, models.SeverityCritical)})
		}
		assert.False(t, s.Tick())
		assert.Equal(t, 10, s.Timer().TimeRemaining)
	}
}

func TestCountdownAdvances(t *testing.T) {
	s := runningScheduler(10, true,
		cam("A", models.CameraOnline, models.SeverityNormal),
		cam("B", models.CameraOnline, models.SeverityNormal),
	)

	tickN(s, 9)
	assert.Equal(t, 1, s.Timer().TimeRemaining)
	assert.Equal(t, 0, s.Timer().CurrentIndex)

	s.Tick()
	timer := s.Timer()
	assert.Equal(t, 1, timer.CurrentIndex)
	assert.Equal(t, 10, timer.TimeRemaining)
	assert.Zero(t, timer.ExtendedTime)

	tickN(s, 10)
	assert.Equal(t, 0, s.Timer().CurrentIndex, "wraps circularly")
}

func TestExtensionOnThreat(t *testing.T) {
	cases := []struct {
		sev       models.Severity
		remaining int
		extended  int
		index     int
	}{
		{models.SeverityCritical, 20, 20, 0},
		{models.SeverityHigh, 10, 10, 0},
		{models.SeverityMedium, 10, 0, 1},
		{models.SeverityNormal, 10, 0, 1},
	}
	for _, tc := range cases {
		t.Run(string(tc.sev), func(t *testing.T) {
			s := runningScheduler(10, true,
				cam("A", models.CameraOnline, tc.sev),
				cam("B", models.CameraOnline, models.SeverityNormal),
			)
			tickN(s, 10)

			timer := s.Timer()
			assert.Equal(t, tc.remaining, timer.TimeRemaining)
			assert.Equal(t, tc.extended, timer.ExtendedTime)
			assert.Equal(t, tc.index, timer.CurrentIndex)
		})
	}
}

func TestExtensionDisabled(t *testing.T) {
	s := runningScheduler(10, false,
		cam("A", models.CameraOnline, models.SeverityCritical),
		cam("B", models.CameraOnline, models.SeverityNormal),
	)
	tickN(s, 10)
	assert.Equal(t, 1, s.Timer().CurrentIndex)
	assert.Zero(t, s.Timer().ExtendedTime)
}

func TestExtensionRepeatsWhileThreatPersists(t *testing.T) {
	s := runningScheduler(10, true,
		cam("A", models.CameraOnline, models.SeverityCritical),
		cam("B", models.CameraOnline, models.SeverityNormal),
	)
	tickN(s, 10)
	require.Equal(t, 20, s.Timer().ExtendedTime)

	// Threat clears during the extension; the next expiry advances.
	s.SetCameras([]models.CameraDescriptor{
		cam("A", models.CameraOnline, models.SeverityNormal),
		cam("B", models.CameraOnline, models.SeverityNormal),
	})
	tickN(s, 20)
	timer := s.Timer()
	assert.Equal(t, 1, timer.CurrentIndex)
	assert.Zero(t, timer.ExtendedTime)
}

func TestManualNavigationResetsDuringExtension(t *testing.T) {
	s := runningScheduler(10, true,
		cam("A", models.CameraOnline, models.SeverityCritical),
		cam("B", models.CameraOnline, models.SeverityNormal),
		cam("C", models.CameraOnline, models.SeverityNormal),
	)
	tickN(s, 13)
	require.True(t, s.Timer().Extended())

	s.GoNext()
	timer := s.Timer()
	assert.Equal(t, 1, timer.CurrentIndex)
	assert.Equal(t, 10, timer.TimeRemaining)
	assert.Zero(t, timer.ExtendedTime)

	s.GoPrev()
	s.GoPrev()
	assert.Equal(t, 2, s.Timer().CurrentIndex)

	tickN(s, 4)
	assert.True(t, s.Select(0))
	assert.Equal(t, 10, s.Timer().TimeRemaining)
	assert.False(t, s.Select(3))
	assert.True(t, s.SelectByID("C"))
	assert.Equal(t, 2, s.Timer().CurrentIndex)
}

func TestNonRunningStateResets(t *testing.T) {
	for _, state := range []models.CameraState{models.StatePaused, models.StateStopped} {
		s := runningScheduler(10, true,
			cam("A", models.CameraOnline, models.SeverityHigh),
			cam("B", models.CameraOnline, models.SeverityNormal),
		)
		tickN(s, 12)
		require.True(t, s.Timer().Extended())

		s.SetState(state)
		timer := s.Timer()
		assert.Equal(t, 10, timer.TimeRemaining)
		assert.Zero(t, timer.ExtendedTime)

		assert.False(t, s.Tick(), "no ticking while %s", state)
		assert.Equal(t, 10, s.Timer().TimeRemaining)
	}
}

func TestIndexWrapsWhenListShrinks(t *testing.T) {
	s := runningScheduler(10, true,
		cam("A", models.CameraOnline, models.SeverityNormal),
		cam("B", models.CameraOnline, models.SeverityNormal),
		cam("C", models.CameraOnline, models.SeverityNormal),
	)
	require.True(t, s.Select(2))

	s.SetCameras([]models.CameraDescriptor{
		cam("A", models.CameraOnline, models.SeverityNormal),
		cam("B", models.CameraOnline, models.SeverityNormal),
		cam("C", models.CameraOffline, models.SeverityNormal),
	})
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 0, s.Timer().CurrentIndex)
	assert.Equal(t, "A", cur.ID)

	s.SetCameras(nil)
	_, ok = s.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Timer().CurrentIndex)
}

// The index stays in range whatever sequence of ticks, navigation and list changes happens.
func TestIndexAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	statuses := []models.CameraStatus{models.CameraOnline, models.CameraOffline, models.CameraIdle}
	severities := []models.Severity{models.SeverityNormal, models.SeverityHigh, models.SeverityCritical}

	randomCameras := func() []models.CameraDescriptor {
		n := 1 + rng.Intn(6)
		out := make([]models.CameraDescriptor, n)
		for i := range out {
			out[i] = cam(string(rune('A'+i)), statuses[rng.Intn(len(statuses))], severities[rng.Intn(len(severities))])
		}
		return out
	}

	s := runningScheduler(3, true, randomCameras()...)
	for i := 0; i < 5000; i++ {
		switch rng.Intn(7) {
		case 0:
			s.SetCameras(randomCameras())
		case 1:
			s.GoNext()
		case 2:
			s.GoPrev()
		case 3:
			s.Select(rng.Intn(8) - 1)
		case 4:
			s.SetState([]models.CameraState{models.StateRunning, models.StatePaused, models.StateStopped}[rng.Intn(3)])
		default:
			s.Tick()
		}

		n := len(s.Active())
		idx := s.Timer().CurrentIndex
		require.True(t, idx >= 0 && idx < n, "index %d out of range for %d cameras at step %d", idx, n, i)
		_, ok := s.Current()
		require.True(t, ok)
	}
}

func TestSetIntervalShortensCountdown(t *testing.T) {
	s := runningScheduler(10, true,
		cam("A", models.CameraOnline, models.SeverityNormal),
		cam("B", models.CameraOnline, models.SeverityNormal),
	)
	tickN(s, 2)
	s.SetInterval(5)
	assert.Equal(t, 5, s.Timer().TimeRemaining)

	tickN(s, 5)
	assert.Equal(t, 1, s.Timer().CurrentIndex)
	assert.Equal(t, 5, s.Timer().TimeRemaining)
}

func TestSchedulerRunTicks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := runningScheduler(10, true,
		cam("A", models.CameraOnline, models.SeverityNormal),
		cam("B", models.CameraOnline, models.SeverityNormal),
	)
	s.tick = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Timer().TimeRemaining < 10 || s.Timer().CurrentIndex == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
