// Package stream negotiates the receive-only WebRTC session that carries the live feed
// and hands the incoming media to a Sink.
package stream

import (
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

// MediaStream groups the remote tracks that share a stream id.
type MediaStream struct {
	ID          string
	Synthesized bool // the remote side sent no stream id, so one was made up locally
	Tracks      []*webrtc.TrackRemote
}

// Sink renders a stream. Attach replaces whatever was attached before.
type Sink interface {
	Attach(stream *MediaStream)
	Detach()
}

// groupTrack adds a track to the stream it belongs to. Some server-side stacks send tracks
// without a stream id; those get a synthesized stream so they still render.
func groupTrack(streams map[string]*MediaStream, streamID string, track *webrtc.TrackRemote) *MediaStream {
	synthesized := false
	if streamID == "" {
		streamID = "local-" + uuid.NewString()
		synthesized = true
	}

	s, ok := streams[streamID]
	if !ok {
		s = &MediaStream{ID: streamID, Synthesized: synthesized}
		streams[streamID] = s
	}
	s.Tracks = append(s.Tracks, track)
	return s
}
