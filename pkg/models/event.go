package models

// EventListResponse wraps GET /api/events
type EventListResponse struct {
	Events []Event `json:"events"`
}

// Event is a raw detection event as reported by the backend.
type Event struct {
	Time     string `json:"time"`
	Type     string `json:"type"`     // e.g. "VIOLENCE", "BLACKLIST_FACE"
	Severity string `json:"severity"` // free-form, normalised with ParseSeverity
	Camera   string `json:"camera,omitempty"`
}

// TimelineEvent is an Event shaped for display, with a synthetic stable id.
type TimelineEvent struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Timestamp   string   `json:"timestamp"`
	CameraID    string   `json:"cameraId"`
	Description string   `json:"description,omitempty"`
}

// Alert is a threat-level timeline entry that the operator can dismiss.
type Alert struct {
	ID        string   `json:"id"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
	Timestamp string   `json:"timestamp"`
	CameraID  string   `json:"cameraId"`
}

// Summary is the body of GET /api/dashboard/summary
type Summary struct {
	ActiveCameras int `json:"active_cameras"`
	TotalCameras  int `json:"total_cameras"`
	ActiveThreats int `json:"active_threats"`
	PeopleTracked int `json:"people_tracked"`
	EventsToday   int `json:"events_today"`
}
