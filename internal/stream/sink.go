package stream

import (
	"sync"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"sentry-console/internal/log"
)

// SinkStats describes what the sink has received since the current stream was attached.
type SinkStats struct {
	StreamID    string
	Synthesized bool
	Packets     uint64
	Frames      uint64
	Bytes       uint64
	FirstFrame  time.Time
}

// FrameSink consumes RTP from the attached video tracks and reports when the first complete
// frame arrives. Until Ready is true a renderer should show a "connecting" placeholder.
type FrameSink struct {
	logger zerolog.Logger

	mu     sync.Mutex
	gen    uint64
	stream *MediaStream
	ready  bool
	stats  SinkStats

	reading map[*webrtc.TrackRemote]bool

	wg sync.WaitGroup
}

func NewFrameSink() *FrameSink {
	return &FrameSink{logger: log.WithComponent("sink")}
}

// Attach starts reading a stream. Attaching the stream that is already attached only starts
// readers for tracks added to it since.
func (s *FrameSink) Attach(stream *MediaStream) {
	s.mu.Lock()
	if stream != s.stream {
		s.gen++
		s.stream = stream
		s.ready = false
		s.stats = SinkStats{StreamID: stream.ID, Synthesized: stream.Synthesized}
		s.reading = make(map[*webrtc.TrackRemote]bool)
	}
	gen := s.gen
	fresh := s.claimLocked(stream.Tracks)
	s.mu.Unlock()

	s.logger.Info().
		Str("stream", stream.ID).
		Bool("synthesized", stream.Synthesized).
		Int("tracks", len(stream.Tracks)).
		Int("new", len(fresh)).
		Msg("stream attached")

	for _, track := range fresh {
		if track.Kind() != webrtc.RTPCodecTypeVideo {
			continue
		}
		tr := track
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.consume(gen, func() (*rtp.Packet, error) {
				pkt, _, err := tr.ReadRTP()
				return pkt, err
			})
		}()
	}
}

// claimLocked marks tracks as read and returns the ones that had no reader yet.
func (s *FrameSink) claimLocked(tracks []*webrtc.TrackRemote) []*webrtc.TrackRemote {
	var fresh []*webrtc.TrackRemote
	for _, tr := range tracks {
		if tr == nil || s.reading[tr] {
			continue
		}
		s.reading[tr] = true
		fresh = append(fresh, tr)
	}
	return fresh
}

// Detach drops the current stream and waits for its readers to exit.
// The owning peer connection must already be closed so that pending reads return.
func (s *FrameSink) Detach() {
	s.mu.Lock()
	s.gen++
	s.stream = nil
	s.ready = false
	s.reading = nil
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *FrameSink) consume(gen uint64, read func() (*rtp.Packet, error)) {
	for {
		pkt, err := read()
		if err != nil {
			return
		}
		if !s.record(gen, pkt) {
			return
		}
	}
}

// record accounts one packet; false means the stream it came from is no longer attached.
func (s *FrameSink) record(gen uint64, pkt *rtp.Packet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	s.stats.Packets++
	s.stats.Bytes += uint64(len(pkt.Payload))

	// The marker bit closes a video frame.
	if pkt.Marker {
		s.stats.Frames++
		if !s.ready {
			s.ready = true
			s.stats.FirstFrame = time.Now()
			s.logger.Info().Str("stream", s.stats.StreamID).Msg("first frame received")
		}
	}
	return true
}

// Attached reports whether a stream is currently attached.
func (s *FrameSink) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream != nil
}

// Ready reports whether the attached stream has produced a complete frame.
func (s *FrameSink) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *FrameSink) Stats() SinkStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
