package client

import (
	"context"
	"io"

	"sentry-console/pkg/models"
)

// UploadVideo submits a recording for offline analysis.
func (c *SentryClient) UploadVideo(ctx context.Context, mode models.AnalysisMode, file io.Reader, filename string) (*models.UploadResponse, error) {
	var ack models.UploadResponse

	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{"mode": string(mode)}).
		SetFileReader("file", filename, file).
		SetResult(&ack).
		Post("/api/analyze/upload")

	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, newAPIError("upload video", resp)
	}

	return &ack, nil
}

// GetJobStatus reports the progress of the offline job for a mode.
// Pose jobs are tracked at /offline/status, transformer jobs at /sota/status.
func (c *SentryClient) GetJobStatus(ctx context.Context, mode models.AnalysisMode) (*models.JobStatus, error) {
	var status models.JobStatus

	path := "/api/offline/status"
	if mode == models.ModeTransformer {
		path = "/api/sota/status"
	}

	resp, err := c.HTTP.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&status).
		Get(path)

	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, newAPIError("get job status", resp)
	}

	return &status, nil
}
