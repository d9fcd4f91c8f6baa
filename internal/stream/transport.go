package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"sentry-console/internal/log"
)

// Signaler exchanges the local offer for the backend's answer.
type Signaler interface {
	ExchangeOffer(ctx context.Context, offer webrtc.SessionDescription) (webrtc.SessionDescription, error)
}

// PeerConnection is the subset of *webrtc.PeerConnection the transport drives,
// plus a gathering-complete signal.
type PeerConnection interface {
	AddTransceiverFromKind(kind webrtc.RTPCodecType, init ...webrtc.RTPTransceiverInit) (*webrtc.RTPTransceiver, error)
	OnTrack(f func(*webrtc.TrackRemote, *webrtc.RTPReceiver))
	CreateOffer(options *webrtc.OfferOptions) (webrtc.SessionDescription, error)
	SetLocalDescription(desc webrtc.SessionDescription) error
	LocalDescription() *webrtc.SessionDescription
	SetRemoteDescription(desc webrtc.SessionDescription) error
	// GatheringComplete must be obtained before SetLocalDescription.
	GatheringComplete() <-chan struct{}
	Close() error
}

// PeerFactory creates a peer connection for one session.
type PeerFactory func(cfg webrtc.Configuration) (PeerConnection, error)

type pionPeer struct {
	*webrtc.PeerConnection
}

func (p pionPeer) GatheringComplete() <-chan struct{} {
	return webrtc.GatheringCompletePromise(p.PeerConnection)
}

// NewPionPeer is the default PeerFactory.
func NewPionPeer(cfg webrtc.Configuration) (PeerConnection, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	return pionPeer{pc}, nil
}

type Config struct {
	ICEServers []string // e.g. stun:stun.l.google.com:19302
}

// Handle owns one negotiated peer connection.
type Handle struct {
	ID string

	pc     PeerConnection
	sink   Sink
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	closed    bool
	streams   map[string]*MediaStream
	closeOnce sync.Once
	closeErr  error
}

func (h *Handle) onTrack(track *webrtc.TrackRemote, streamID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.sink.Attach(groupTrack(h.streams, streamID, track))
}

// close tears the session down. Safe to call repeatedly; the connection is closed once.
func (h *Handle) close() error {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()

		h.cancel()
		h.closeErr = h.pc.Close()
		h.sink.Detach()
		<-h.done
	})
	return h.closeErr
}

// Transport keeps at most one live Handle, following the enabled flag.
type Transport struct {
	cfg      Config
	signaler Signaler
	sink     Sink
	newPeer  PeerFactory
	logger   zerolog.Logger

	mu      sync.Mutex
	enabled bool
	closed  bool
	handle  *Handle

	opened     atomic.Uint64
	negotiated atomic.Uint64
	failed     atomic.Uint64
}

func New(cfg Config, signaler Signaler, sink Sink) *Transport {
	return &Transport{
		cfg:      cfg,
		signaler: signaler,
		sink:     sink,
		newPeer:  NewPionPeer,
		logger:   log.WithComponent("transport"),
	}
}

// WithPeerFactory replaces the peer connection constructor.
func (t *Transport) WithPeerFactory(f PeerFactory) *Transport {
	t.newPeer = f
	return t
}

// SetEnabled opens a session on a false→true change and tears it down on true→false.
// Repeating the current value is a no-op, and so is any call after Close.
func (t *Transport) SetEnabled(ctx context.Context, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || enabled == t.enabled {
		return
	}
	t.enabled = enabled

	t.teardownLocked()
	if enabled {
		t.openLocked(ctx)
	}
}

// Renegotiate replaces the live session (if enabled) with a fresh one.
func (t *Transport) Renegotiate(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || !t.enabled {
		return
	}
	t.teardownLocked()
	t.openLocked(ctx)
}

// Close tears down any live session. A closed transport never opens another one.
func (t *Transport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	t.enabled = false
	t.teardownLocked()
}

func (t *Transport) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Live reports whether a session handle currently exists.
func (t *Transport) Live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle != nil
}

// TransportStats counts session lifecycle outcomes.
type TransportStats struct {
	Opened     uint64
	Negotiated uint64
	Failed     uint64
}

func (t *Transport) Stats() TransportStats {
	return TransportStats{
		Opened:     t.opened.Load(),
		Negotiated: t.negotiated.Load(),
		Failed:     t.failed.Load(),
	}
}

func (t *Transport) teardownLocked() {
	if t.handle == nil {
		return
	}
	h := t.handle
	t.handle = nil

	if err := h.close(); err != nil {
		t.logger.Warn().Err(err).Str("handle", h.ID).Msg("peer connection close failed")
		return
	}
	t.logger.Info().Str("handle", h.ID).Msg("session closed")
}

// openLocked starts a session. Negotiation keeps the caller's values but not its deadline:
// the session lives until teardown cancels it.
func (t *Transport) openLocked(parent context.Context) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	h := &Handle{
		ID:      uuid.NewString(),
		sink:    t.sink,
		cancel:  cancel,
		done:    make(chan struct{}),
		streams: make(map[string]*MediaStream),
	}

	servers := make([]webrtc.ICEServer, 0, len(t.cfg.ICEServers))
	for _, url := range t.cfg.ICEServers {
		servers = append(servers, webrtc.ICEServer{URLs: []string{url}})
	}

	pc, err := t.newPeer(webrtc.Configuration{ICEServers: servers})
	if err != nil {
		cancel()
		t.failed.Add(1)
		t.logger.Error().Err(err).Msg("create peer connection failed")
		return
	}
	h.pc = pc

	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	}); err != nil {
		cancel()
		_ = pc.Close()
		t.failed.Add(1)
		t.logger.Error().Err(err).Msg("add video transceiver failed")
		return
	}

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if track == nil {
			h.onTrack(nil, "")
			return
		}
		t.logger.Info().
			Str("handle", h.ID).
			Str("kind", track.Kind().String()).
			Str("stream", track.StreamID()).
			Msg("track received")
		h.onTrack(track, track.StreamID())
	})

	t.handle = h
	t.opened.Add(1)
	t.logger.Info().Str("handle", h.ID).Msg("session opened")

	go t.negotiate(ctx, h)
}

func (t *Transport) negotiate(ctx context.Context, h *Handle) {
	defer close(h.done)

	if err := t.exchange(ctx, h); err != nil {
		if ctx.Err() != nil {
			t.logger.Debug().Str("handle", h.ID).Msg("negotiation abandoned")
			return
		}
		t.failed.Add(1)
		t.logger.Error().Err(err).Str("handle", h.ID).Msg("signaling failed, stream not attached")
		return
	}

	t.negotiated.Add(1)
	t.logger.Info().Str("handle", h.ID).Msg("remote description applied")
}

func (t *Transport) exchange(ctx context.Context, h *Handle) error {
	offer, err := h.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}

	gathered := h.pc.GatheringComplete()
	if err := h.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}

	// An offer sent before gathering completes carries an incomplete candidate list.
	select {
	case <-gathered:
	case <-ctx.Done():
		return ctx.Err()
	}

	local := h.pc.LocalDescription()
	if local == nil {
		return errors.New("no local description after gathering")
	}

	answer, err := t.signaler.ExchangeOffer(ctx, *local)
	if err != nil {
		return fmt.Errorf("exchange offer: %w", err)
	}

	if err := h.pc.SetRemoteDescription(answer); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	return nil
}
