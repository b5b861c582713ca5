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

import "time"

// SecurityReportDTO is one pattern-scan run over one package version.
// Never mutated after creation - a re-analysis creates a new report.
type SecurityReportDTO struct {
	Findings  []Finding      `json:"findings"`
	Summary   FindingSummary `json:"summary"`
	Score     int            `json:"score"`
	RiskLevel RiskLevel      `json:"riskLevel"`
	CreatedAt time.Time      `json:"createdAt"`
}

// AISecurityReportDTO is structurally parallel to SecurityReportDTO but
// sourced from the reasoning-model adapter.
type AISecurityReportDTO struct {
	Findings        []Finding      `json:"findings"`
	Summary         FindingSummary `json:"summary"`
	RiskLevel       RiskLevel      `json:"riskLevel"`
	Confidence      int            `json:"confidence"`
	Recommendations []string       `json:"recommendations"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// CombinedAssessment merges a pattern-scan report and an AI report. It is
// computed on demand and never persisted.
type CombinedAssessment struct {
	RiskLevel        RiskLevel      `json:"riskLevel"`
	PatternRiskLevel RiskLevel      `json:"patternRiskLevel"`
	AIRiskLevel      RiskLevel      `json:"aiRiskLevel"`
	Findings         []Finding      `json:"findings"`
	Summary          FindingSummary `json:"summary"`
}

// RequiresWarning reports whether the marketplace has to render a download
// warning. unknown counts as warning-worthy: an analysis failure must never
// be rendered as safe.
func (c CombinedAssessment) RequiresWarning() bool {
	switch c.RiskLevel {
	case RiskLevelHigh, RiskLevelCritical, RiskLevelUnknown:
		return true
	}
	return false
}
