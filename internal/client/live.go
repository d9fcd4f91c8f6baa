package client

import (
	"context"

	"sentry-console/pkg/models"
)

// GetLiveStatus fetches the authoritative live session state.
func (c *SentryClient) GetLiveStatus(ctx context.Context) (*models.LiveStatus, error) {
	var status models.LiveStatus

	resp, err := c.HTTP.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&status).
		Get("/api/live/status")

	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, newAPIError("get live status", resp)
	}

	return &status, nil
}

// SendCommand posts a transport action. The response body is ignored beyond its status code.
func (c *SentryClient) SendCommand(ctx context.Context, cmd models.Command) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParam("action", cmd.Endpoint()).
		Post("/api/live/{action}")

	if err != nil {
		return err
	}

	if resp.IsError() {
		return newAPIError("live "+string(cmd), resp)
	}

	return nil
}
