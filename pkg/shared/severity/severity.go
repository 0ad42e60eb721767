// Package severity provides severity level definitions and the mapping from
// Nessus risk factors and CVSS scores onto them.
package severity

import (
	"strconv"
	"strings"
)

// Level represents a severity level for security findings.
type Level string

const (
	// Critical - Immediate action required.
	Critical Level = "critical"

	// High - Serious vulnerability that should be addressed urgently.
	High Level = "high"

	// Medium - Moderate risk.
	Medium Level = "medium"

	// Low - Minor issue.
	Low Level = "low"

	// Info - Informational finding. Nessus reports these with risk factor "None".
	Info Level = "info"

	// Unknown - Severity could not be determined.
	Unknown Level = "unknown"
)

// AllLevels returns all severity levels in order of priority (highest first).
func AllLevels() []Level {
	return []Level{Critical, High, Medium, Low, Info, Unknown}
}

// String returns the string representation of the severity level.
func (l Level) String() string {
	return string(l)
}

// Priority returns the numeric priority of the severity level.
// Higher numbers = higher priority.
func (l Level) Priority() int {
	switch l {
	case Critical:
		return 5
	case High:
		return 4
	case Medium:
		return 3
	case Low:
		return 2
	case Info:
		return 1
	default:
		return 0
	}
}

// IsAtLeast returns true if this severity is at least as high as the other.
func (l Level) IsAtLeast(other Level) bool {
	return l.Priority() >= other.Priority()
}

// FromString normalizes a risk factor string to a Level.
// Nessus exports use Critical, High, Medium, Low and None.
func FromString(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL", "CRIT":
		return Critical
	case "HIGH":
		return High
	case "MEDIUM", "MODERATE", "MED":
		return Medium
	case "LOW":
		return Low
	case "INFO", "INFORMATIONAL", "NONE":
		return Info
	default:
		return Unknown
	}
}

// FromCVSS converts a CVSS score (0.0-10.0) to a severity level.
// Based on CVSS v3.0 severity ratings:
//   - 9.0-10.0: Critical
//   - 7.0-8.9: High
//   - 4.0-6.9: Medium
//   - 0.1-3.9: Low
//   - 0.0: Info
func FromCVSS(score float64) Level {
	switch {
	case score >= 9.0:
		return Critical
	case score >= 7.0:
		return High
	case score >= 4.0:
		return Medium
	case score > 0:
		return Low
	default:
		return Info
	}
}

// FromRisk resolves the level of a finding from its risk factor, falling back
// to the CVSS base score text when the risk factor is not recognised.
func FromRisk(risk, cvss string) Level {
	if level := FromString(risk); level != Unknown {
		return level
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(cvss), 64)
	if err != nil || score < 0 || score > 10 {
		return Unknown
	}
	return FromCVSS(score)
}

// CountBySeverity counts findings by severity level.
type CountBySeverity struct {
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
	Low      int `json:"low" yaml:"low"`
	Info     int `json:"info" yaml:"info"`
	Unknown  int `json:"unknown" yaml:"unknown"`
	Total    int `json:"total" yaml:"total"`
}

// Increment increases the count for the given severity.
func (c *CountBySeverity) Increment(level Level) {
	c.Total++
	switch level {
	case Critical:
		c.Critical++
	case High:
		c.High++
	case Medium:
		c.Medium++
	case Low:
		c.Low++
	case Info:
		c.Info++
	default:
		c.Unknown++
	}
}

// HighestSeverity returns the highest severity level that has a non-zero count.
func (c *CountBySeverity) HighestSeverity() Level {
	if c.Critical > 0 {
		return Critical
	}
	if c.High > 0 {
		return High
	}
	if c.Medium > 0 {
		return Medium
	}
	if c.Low > 0 {
		return Low
	}
	if c.Info > 0 {
		return Info
	}
	return Unknown
}
