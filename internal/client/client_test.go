package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentry-console/pkg/models"
)

func newTestClient(t *testing.T, h http.Handler) *SentryClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(ClientConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestGetLiveStatus(t *testing.T) {
	api := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/live/status", r.URL.Path)
		_, _ = io.WriteString(w, `{"running":true,"paused":true,"fps":12.5,"camera_id":"LIVE"}`)
	}))

	status, err := api.GetLiveStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.True(t, status.Paused)
	require.NotNil(t, status.FPS)
	assert.InDelta(t, 12.5, *status.FPS, 0.001)
	assert.Equal(t, "LIVE", status.CameraID)
}

func TestGetLiveStatusMalformedBody(t *testing.T) {
	api := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))

	_, err := api.GetLiveStatus(context.Background())
	assert.Error(t, err)
}

func TestSendCommandPaths(t *testing.T) {
	var got []string
	api := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		got = append(got, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	for _, cmd := range []models.Command{models.CommandPlay, models.CommandPause, models.CommandStop, models.CommandRestart} {
		require.NoError(t, api.SendCommand(context.Background(), cmd))
	}
	assert.Equal(t, []string{"/api/live/start", "/api/live/pause", "/api/live/stop", "/api/live/restart"}, got)
}

func TestSendCommandErrorStatus(t *testing.T) {
	api := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "camera busy", http.StatusServiceUnavailable)
	}))

	err := api.SendCommand(context.Background(), models.CommandPause)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "camera busy")
	assert.True(t, IsTransient(err))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(&APIError{StatusCode: http.StatusNotFound}))
	assert.True(t, IsTransient(&APIError{StatusCode: http.StatusBadGateway}))
	assert.True(t, IsTransient(io.ErrUnexpectedEOF))
}

func TestGetEventsAndSummaryDefaults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/events", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"events":[{"time":"12:00:01","type":"FIGHT","severity":"CRITICAL","camera":"CAM-1"},{"time":"12:00:02","type":"WALK"}]}`)
	})
	mux.HandleFunc("/api/dashboard/summary", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"people_tracked":3}`)
	})
	api := newTestClient(t, mux)

	events, err := api.GetEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "CAM-1", events[0].Camera)
	assert.Empty(t, events[1].Severity)

	summary, err := api.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.PeopleTracked)
	assert.Zero(t, summary.TotalCameras)
}

func TestExchangeOffer(t *testing.T) {
	api := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/webrtc/offer", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var offer map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&offer))
		assert.Equal(t, "offer", offer["type"])
		assert.Equal(t, "v=0\r\n", offer["sdp"])

		_, _ = io.WriteString(w, `{"type":"answer","sdp":"v=0\r\n"}`)
	}))

	answer, err := api.ExchangeOffer(context.Background(), webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0\r\n"})
	require.NoError(t, err)
	assert.Equal(t, webrtc.SDPTypeAnswer, answer.Type)
}

func TestExchangeOfferRejectsEmptyAnswer(t *testing.T) {
	api := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"type":"answer","sdp":""}`)
	}))

	_, err := api.ExchangeOffer(context.Background(), webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0\r\n"})
	assert.Error(t, err)
}

func TestAddFaceMultipart(t *testing.T) {
	api := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/faces/add", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "alice", r.FormValue("name"))
		assert.Equal(t, "blacklist", r.FormValue("status"))

		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "face.jpg", hdr.Filename)
		assert.Equal(t, "jpegbytes", string(body))
		w.WriteHeader(http.StatusCreated)
	}))

	err := api.AddFace(context.Background(), "alice", models.FaceBlacklist, strings.NewReader("jpegbytes"), "face.jpg")
	require.NoError(t, err)
}

func TestUpdateAndDeleteFace(t *testing.T) {
	var calls []string
	api := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "whitelist", r.PostFormValue("status"))
		}
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, api.UpdateFaceStatus(context.Background(), "bob", models.FaceWhitelist))
	require.NoError(t, api.DeleteFace(context.Background(), "bob"))
	assert.Equal(t, []string{"POST /api/faces/bob/status", "DELETE /api/faces/bob"}, calls)
}

func TestUploadVideoAndJobStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze/upload", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "transformer", r.FormValue("mode"))
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "clip.mp4", hdr.Filename)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"processing","file":"clip.mp4"}`)
	})
	mux.HandleFunc("/api/sota/status", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"progress":42,"status":"processing","file":"clip.mp4"}`)
	})
	mux.HandleFunc("/api/offline/status", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"progress":100,"status":"complete"}`)
	})
	api := newTestClient(t, mux)

	ack, err := api.UploadVideo(context.Background(), models.ModeTransformer, strings.NewReader("mp4"), "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "processing", ack.Status)

	sota, err := api.GetJobStatus(context.Background(), models.ModeTransformer)
	require.NoError(t, err)
	assert.InDelta(t, 42, sota.Progress, 0.001)
	assert.False(t, sota.Done())

	pose, err := api.GetJobStatus(context.Background(), models.ModePose)
	require.NoError(t, err)
	assert.True(t, pose.Done())
}

func TestListReports(t *testing.T) {
	api := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"rpt-001","name":"live.pdf","mode":"LIVE","eventCount":12,"criticalCount":2}]`)
	}))

	reports, err := api.ListReports(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "rpt-001", reports[0].ID)
	assert.Equal(t, 2, reports[0].CriticalCount)
}
