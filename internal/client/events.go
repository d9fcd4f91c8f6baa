package client

import (
	"context"

	"sentry-console/pkg/models"
)

// GetEvents fetches the recent detection events used for the timeline and alerts.
func (c *SentryClient) GetEvents(ctx context.Context) ([]models.Event, error) {
	var respData models.EventListResponse

	resp, err := c.HTTP.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&respData).
		Get("/api/events")

	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, newAPIError("get events", resp)
	}

	return respData.Events, nil
}

// GetSummary fetches the aggregate dashboard counters. Missing fields decode as zero.
func (c *SentryClient) GetSummary(ctx context.Context) (*models.Summary, error) {
	var summary models.Summary

	resp, err := c.HTTP.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&summary).
		Get("/api/dashboard/summary")

	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, newAPIError("get dashboard summary", resp)
	}

	return &summary, nil
}
