package models

import "fmt"

// AnalysisMode selects the offline pipeline a video is submitted to.
type AnalysisMode string

const (
	ModePose        AnalysisMode = "pose"        // pose-estimation pipeline
	ModeTransformer AnalysisMode = "transformer" // video transformer pipeline
)

func ParseAnalysisMode(s string) (AnalysisMode, error) {
	switch AnalysisMode(s) {
	case ModePose, ModeTransformer:
		return AnalysisMode(s), nil
	}
	return "", fmt.Errorf("invalid analysis mode %q (expected pose or transformer)", s)
}

const (
	JobIdle       = "idle"
	JobUploading  = "uploading"
	JobProcessing = "processing"
	JobComplete   = "complete"
	JobError      = "error"
)

// JobStatus is the body of GET /api/offline/status and /api/sota/status
type JobStatus struct {
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
	File     string  `json:"file,omitempty"`
}

// Done reports whether the job reached a terminal status.
func (j JobStatus) Done() bool {
	return j.Status == JobComplete || j.Status == JobError
}

// UploadResponse is whatever the backend acknowledges an upload with.
type UploadResponse struct {
	Status  string `json:"status,omitempty"`
	File    string `json:"file,omitempty"`
	Message string `json:"message,omitempty"`
}
