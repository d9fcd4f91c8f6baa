package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type FaceStatus string

const (
	FaceWhitelist FaceStatus = "whitelist"
	FaceBlacklist FaceStatus = "blacklist"
	FaceUnknown   FaceStatus = "unknown"
)

// ParseFaceStatus validates operator input; only whitelist and blacklist can be assigned.
func ParseFaceStatus(s string) (FaceStatus, error) {
	switch FaceStatus(s) {
	case FaceWhitelist, FaceBlacklist:
		return FaceStatus(s), nil
	}
	return "", fmt.Errorf("invalid face status %q (expected whitelist or blacklist)", s)
}

// Face is one watch-list entry.
type Face struct {
	Name     string     `json:"name"`
	Status   FaceStatus `json:"status"`
	LastSeen string     `json:"last_seen,omitempty"`
	ImageURL string     `json:"image_url,omitempty"`
}

// FaceListResponse decodes GET /api/faces, which is either a bare array or {"faces": [...]}.
type FaceListResponse struct {
	Faces []Face
}

func (r *FaceListResponse) UnmarshalJSON(data []byte) error {
	return decodeList(data, "faces", &r.Faces)
}

// decodeList accepts both `[...]` and `{"<key>": [...]}` bodies.
func decodeList[T any](data []byte, key string, out *[]T) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*out = nil
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}
	raw, ok := wrapper[key]
	if !ok {
		*out = nil
		return nil
	}
	return json.Unmarshal(raw, out)
}
