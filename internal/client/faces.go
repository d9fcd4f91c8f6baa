package client

import (
	"context"
	"io"

	"sentry-console/pkg/models"
)

// ListFaces lists the face watch-list.
func (c *SentryClient) ListFaces(ctx context.Context) ([]models.Face, error) {
	var respData models.FaceListResponse

	resp, err := c.HTTP.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&respData).
		Get("/api/faces")

	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, newAPIError("list faces", resp)
	}

	return respData.Faces, nil
}

// AddFace registers a new face with its reference image (multipart: name, status, image).
func (c *SentryClient) AddFace(ctx context.Context, name string, status models.FaceStatus, image io.Reader, filename string) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"name":   name,
			"status": string(status),
		}).
		SetFileReader("image", filename, image).
		Post("/api/faces/add")

	if err != nil {
		return err
	}
	if resp.IsError() {
		return newAPIError("add face", resp)
	}

	return nil
}

// UpdateFaceStatus moves an existing entry between whitelist and blacklist.
func (c *SentryClient) UpdateFaceStatus(ctx context.Context, name string, status models.FaceStatus) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParam("name", name).
		SetFormData(map[string]string{"status": string(status)}).
		Post("/api/faces/{name}/status")

	if err != nil {
		return err
	}
	if resp.IsError() {
		return newAPIError("update face status", resp)
	}

	return nil
}

// DeleteFace removes a face by name
func (c *SentryClient) DeleteFace(ctx context.Context, name string) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParam("name", name).
		Delete("/api/faces/{name}")

	if err != nil {
		return err
	}
	if resp.IsError() {
		return newAPIError("delete face", resp)
	}

	return nil
}
