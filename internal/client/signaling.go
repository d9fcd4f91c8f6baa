package client

import (
	"context"
	"errors"

	"github.com/pion/webrtc/v4"
)

// ExchangeOffer posts the local session description and returns the backend's answer.
func (c *SentryClient) ExchangeOffer(ctx context.Context, offer webrtc.SessionDescription) (webrtc.SessionDescription, error) {
	var answer webrtc.SessionDescription

	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(offer).
		ForceContentType("application/json").
		SetResult(&answer).
		Post("/api/webrtc/offer")

	if err != nil {
		return webrtc.SessionDescription{}, err
	}

	if resp.IsError() {
		return webrtc.SessionDescription{}, newAPIError("webrtc offer", resp)
	}

	if answer.SDP == "" {
		return webrtc.SessionDescription{}, errors.New("webrtc offer: answer has no sdp")
	}

	return answer, nil
}
