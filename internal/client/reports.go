package client

import (
	"context"

	"sentry-console/pkg/models"
)

// ListReports fetches the generated incident reports
func (c *SentryClient) ListReports(ctx context.Context) ([]models.Report, error) {
	var respData models.ReportListResponse

	resp, err := c.HTTP.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&respData).
		Get("/api/reports")

	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, newAPIError("list reports", resp)
	}

	return respData.Reports, nil
}
