// Copyright (C) 2025 skillgate-dev
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package dtos

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// IsValid reports whether the severity is one of the known values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

type RiskLevel string

const (
	RiskLevelUnknown  RiskLevel = "unknown"
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// rank encodes the total order low < medium < high < critical.
// unknown ranks below everything and acts as the identity for MaxRiskLevel.
func (r RiskLevel) rank() int {
	switch r {
	case RiskLevelLow:
		return 1
	case RiskLevelMedium:
		return 2
	case RiskLevelHigh:
		return 3
	case RiskLevelCritical:
		return 4
	default:
		return 0
	}
}

// MaxRiskLevel returns the more severe of two risk levels. unknown is the
// identity element: it is only returned when both inputs are unknown.
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if a == RiskLevelUnknown || a == "" {
		if b == "" {
			return RiskLevelUnknown
		}
		return b
	}
	if b == RiskLevelUnknown || b == "" {
		return a
	}
	if b.rank() > a.rank() {
		return b
	}
	return a
}

type FindingSource string

const (
	FindingSourcePattern FindingSource = "pattern"
	FindingSourceAI      FindingSource = "ai"
)

// Finding is one detected security issue. Immutable once created.
type Finding struct {
	ID             string        `json:"id"`
	Category       string        `json:"category"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Severity       Severity      `json:"severity"`
	Source         FindingSource `json:"source"`
	File           string        `json:"file,omitempty"`
	Line           int           `json:"line,omitempty"`
	CodeSnippet    string        `json:"codeSnippet,omitempty"`
	Recommendation string        `json:"recommendation,omitempty"`
}

// FindingSummary counts findings per severity.
type FindingSummary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

func (s FindingSummary) Total() int {
	return s.Critical + s.High + s.Medium + s.Low + s.Info
}

func SummarizeFindings(findings []Finding) FindingSummary {
	var summary FindingSummary
	for _, finding := range findings {
		switch finding.Severity {
		case SeverityCritical:
			summary.Critical++
		case SeverityHigh:
			summary.High++
		case SeverityMedium:
			summary.Medium++
		case SeverityLow:
			summary.Low++
		case SeverityInfo:
			summary.Info++
		}
	}
	return summary
}
