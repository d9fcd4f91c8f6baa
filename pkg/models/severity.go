package models

import "strings"

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityNormal   Severity = "NORMAL"
)

// ParseSeverity maps empty or unknown values to NORMAL.
func ParseSeverity(s string) Severity {
	switch v := Severity(strings.ToUpper(strings.TrimSpace(s))); v {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return v
	default:
		return SeverityNormal
	}
}

// IsThreat is true for the severities that raise alerts and extend rotation.
func (s Severity) IsThreat() bool {
	return s == SeverityCritical || s == SeverityHigh
}

// Rank orders severities, NORMAL being 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}
