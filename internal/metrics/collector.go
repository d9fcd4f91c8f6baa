// Package metrics exposes the console's live view as Prometheus metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sentry-console/internal/console"
	"sentry-console/pkg/models"
)

// ViewSource is anything that can produce a console view; *console.Console does.
type ViewSource interface {
	View() console.View
}

var (
	upDesc = prometheus.NewDesc(
		"sentry_up", "Was the last dashboard poll successful.", nil, nil,
	)
	cameraStateDesc = prometheus.NewDesc(
		"sentry_camera_state", "Live camera state (1 for the current state).", []string{"state"}, nil,
	)
	pendingDesc = prometheus.NewDesc(
		"sentry_pending_command", "Whether a command is awaiting confirmation.", []string{"command"}, nil,
	)
	fpsDesc = prometheus.NewDesc(
		"sentry_live_fps", "Frames per second reported by the backend pipeline.", nil, nil,
	)
	rotationRemainingDesc = prometheus.NewDesc(
		"sentry_rotation_remaining_seconds", "Seconds until the feed rotates.", nil, nil,
	)
	rotationExtendedDesc = prometheus.NewDesc(
		"sentry_rotation_extended_seconds", "Length of the current threat extension (0 if none).", nil, nil,
	)
	cameraUpDesc = prometheus.NewDesc(
		"sentry_camera_up", "Camera is online.", []string{"id", "name"}, nil,
	)
	cameraCurrentDesc = prometheus.NewDesc(
		"sentry_camera_current", "Camera is the one on screen.", []string{"id"}, nil,
	)
	cameraPeopleDesc = prometheus.NewDesc(
		"sentry_camera_people", "People tracked by the camera.", []string{"id"}, nil,
	)
	cameraSeverityDesc = prometheus.NewDesc(
		"sentry_camera_severity", "Severity rank of the camera's current event (0=NORMAL .. 4=CRITICAL).", []string{"id"}, nil,
	)
	alertsDesc = prometheus.NewDesc(
		"sentry_alerts", "Visible alerts grouped by severity.", []string{"severity"}, nil,
	)
	timelineDesc = prometheus.NewDesc(
		"sentry_timeline_events", "Events in the current timeline.", nil, nil,
	)
	summaryDesc = prometheus.NewDesc(
		"sentry_summary", "Dashboard summary counters.", []string{"counter"}, nil,
	)
	streamDesc = prometheus.NewDesc(
		"sentry_stream_up", "A WebRTC session is open (streaming) and has produced a frame (ready).", []string{"phase"}, nil,
	)
	framesDesc = prometheus.NewDesc(
		"sentry_stream_frames_total", "Video frames received on the current stream.", nil, nil,
	)
	bytesDesc = prometheus.NewDesc(
		"sentry_stream_bytes_total", "RTP payload bytes received on the current stream.", nil, nil,
	)
	sessionsDesc = prometheus.NewDesc(
		"sentry_stream_sessions_total", "WebRTC sessions by outcome.", []string{"outcome"}, nil,
	)
	pollsDesc = prometheus.NewDesc(
		"sentry_polls_total", "Backend polls by loop and outcome.", []string{"loop", "outcome"}, nil,
	)
	scrapeDurationDesc = prometheus.NewDesc(
		"sentry_scrape_duration_seconds", "Time taken to build the view.", nil, nil,
	)
)

// Collector reads the view on every scrape; it never calls the backend itself.
type Collector struct {
	Source ViewSource
	Mutex  sync.Mutex
}

func NewCollector(src ViewSource) *Collector {
	return &Collector{Source: src}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- upDesc
	ch <- cameraStateDesc
	ch <- pendingDesc
	ch <- fpsDesc
	ch <- rotationRemainingDesc
	ch <- rotationExtendedDesc
	ch <- cameraUpDesc
	ch <- cameraCurrentDesc
	ch <- cameraPeopleDesc
	ch <- cameraSeverityDesc
	ch <- alertsDesc
	ch <- timelineDesc
	ch <- summaryDesc
	ch <- streamDesc
	ch <- framesDesc
	ch <- bytesDesc
	ch <- sessionsDesc
	ch <- pollsDesc
	ch <- scrapeDurationDesc
}

func gauge(ch chan<- prometheus.Metric, desc *prometheus.Desc, v float64, labels ...string) {
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v, labels...)
}

func counter(ch chan<- prometheus.Metric, desc *prometheus.Desc, v uint64, labels ...string) {
	ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()
	start := time.Now()

	v := c.Source.View()
	dash := v.Dashboard

	gauge(ch, upDesc, boolValue(dash.Healthy))

	// 1. Live session
	for _, st := range []models.CameraState{models.StateStopped, models.StateRunning, models.StatePaused} {
		gauge(ch, cameraStateDesc, boolValue(v.State == st), string(st))
	}
	if v.Pending != "" {
		gauge(ch, pendingDesc, 1, string(v.Pending))
	}
	if v.Live != nil && v.Live.FPS != nil {
		gauge(ch, fpsDesc, *v.Live.FPS)
	}

	// 2. Rotation
	gauge(ch, rotationRemainingDesc, float64(v.Timer.TimeRemaining))
	gauge(ch, rotationExtendedDesc, float64(v.Timer.ExtendedTime))

	// 3. Cameras
	currentID := ""
	if v.Current != nil {
		currentID = v.Current.ID
	}
	for _, cam := range dash.Cameras {
		gauge(ch, cameraUpDesc, boolValue(cam.Status == models.CameraOnline), cam.ID, cam.Name)
		gauge(ch, cameraCurrentDesc, boolValue(cam.ID == currentID), cam.ID)
		gauge(ch, cameraPeopleDesc, float64(cam.PersonCount), cam.ID)
		gauge(ch, cameraSeverityDesc, float64(cam.Severity.Rank()), cam.ID)
	}

	// 4. Alerts and timeline
	alertCounts := map[models.Severity]float64{
		models.SeverityCritical: 0,
		models.SeverityHigh:     0,
	}
	for _, a := range dash.Alerts {
		alertCounts[a.Severity]++
	}
	for sev, cnt := range alertCounts {
		gauge(ch, alertsDesc, cnt, string(sev))
	}
	gauge(ch, timelineDesc, float64(len(dash.Timeline)))

	s := dash.Summary
	gauge(ch, summaryDesc, float64(s.ActiveCameras), "active_cameras")
	gauge(ch, summaryDesc, float64(s.TotalCameras), "total_cameras")
	gauge(ch, summaryDesc, float64(s.ActiveThreats), "active_threats")
	gauge(ch, summaryDesc, float64(s.PeopleTracked), "people_tracked")
	gauge(ch, summaryDesc, float64(s.EventsToday), "events_today")

	// 5. Stream
	gauge(ch, streamDesc, boolValue(v.Streaming), "streaming")
	gauge(ch, streamDesc, boolValue(v.Ready), "ready")
	counter(ch, framesDesc, v.Stream.Frames)
	counter(ch, bytesDesc, v.Stream.Bytes)
	counter(ch, sessionsDesc, v.Transport.Opened, "opened")
	counter(ch, sessionsDesc, v.Transport.Negotiated, "negotiated")
	counter(ch, sessionsDesc, v.Transport.Failed, "failed")

	// 6. Poll loops
	counter(ch, pollsDesc, v.Status.Polls-v.Status.Failures, "status", "ok")
	counter(ch, pollsDesc, v.Status.Failures, "status", "error")
	counter(ch, pollsDesc, v.Polls.Cycles-v.Polls.Failures, "dashboard", "ok")
	counter(ch, pollsDesc, v.Polls.Failures, "dashboard", "error")

	gauge(ch, scrapeDurationDesc, time.Since(start).Seconds())
}
