package models

// ReportListResponse decodes GET /api/reports (bare array or {"reports": [...]}).
type ReportListResponse struct {
	Reports []Report
}

func (r *ReportListResponse) UnmarshalJSON(data []byte) error {
	return decodeList(data, "reports", &r.Reports)
}

// Report is a generated incident report.
type Report struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Mode          string `json:"mode"` // LIVE, OFFLINE or POSE_OFFLINE
	EventCount    int    `json:"eventCount"`
	CriticalCount int    `json:"criticalCount"`
	Duration      string `json:"duration"`
	Summary       string `json:"summary,omitempty"`
	URL           string `json:"url,omitempty"`
}
