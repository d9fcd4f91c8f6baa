package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverityDefaultsToNormal(t *testing.T) {
	assert.Equal(t, SeverityCritical, ParseSeverity("critical"))
	assert.Equal(t, SeverityHigh, ParseSeverity(" HIGH "))
	assert.Equal(t, SeverityNormal, ParseSeverity(""))
	assert.Equal(t, SeverityNormal, ParseSeverity("catastrophic"))
}

func TestCommandImpliedState(t *testing.T) {
	assert.Equal(t, StateRunning, CommandPlay.Implied())
	assert.Equal(t, StatePaused, CommandPause.Implied())
	assert.Equal(t, StateStopped, CommandStop.Implied())
	assert.Equal(t, StateRunning, CommandRestart.Implied())

	assert.Equal(t, CommandPlay, CommandRestart.Pending())
	assert.Equal(t, "start", CommandPlay.Endpoint())
	assert.Equal(t, "restart", CommandRestart.Endpoint())
}

func TestParseCommandRejectsUnknown(t *testing.T) {
	c, err := ParseCommand("start")
	require.NoError(t, err)
	assert.Equal(t, CommandPlay, c)

	_, err = ParseCommand("rewind")
	assert.Error(t, err)
}

func TestParseCameraStateNeverUnknown(t *testing.T) {
	assert.Equal(t, StateRunning, ParseCameraState("RUNNING"))
	assert.Equal(t, StateStopped, ParseCameraState(""))
	assert.Equal(t, StateStopped, ParseCameraState("buffering"))
	assert.Equal(t, "stopped", CameraState("").String())
}

func TestFaceListAcceptsBothShapes(t *testing.T) {
	var bare FaceListResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"alice","status":"blacklist"}]`), &bare))
	require.Len(t, bare.Faces, 1)
	assert.Equal(t, FaceBlacklist, bare.Faces[0].Status)

	var wrapped FaceListResponse
	require.NoError(t, json.Unmarshal([]byte(`{"faces":[{"name":"bob","status":"whitelist"}]}`), &wrapped))
	require.Len(t, wrapped.Faces, 1)
	assert.Equal(t, "bob", wrapped.Faces[0].Name)

	var empty ReportListResponse
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Empty(t, empty.Reports)
}

func TestLiveStatusOptionalFields(t *testing.T) {
	var s LiveStatus
	require.NoError(t, json.Unmarshal([]byte(`{"running":true,"paused":false}`), &s))
	assert.True(t, s.Running)
	assert.Nil(t, s.FPS)
	assert.Empty(t, s.CameraID)
}
