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

// Package risk reconciles the independently computed pattern-scan and AI
// risk assessments into one combined assessment.
package risk

import "github.com/skillgate-dev/skillgate/dtos"

// Merge concatenates both finding lists, recomputes the summary over the
// union and takes the more severe of the two risk levels. unknown is the
// identity: it only survives when it is the only value present. The merge
// is commutative and idempotent on the risk level and is recomputed on
// every call - whichever report is the latest persisted one wins.
func Merge(pattern dtos.SecurityReportDTO, ai dtos.AISecurityReportDTO) dtos.CombinedAssessment {
	findings := make([]dtos.Finding, 0, len(pattern.Findings)+len(ai.Findings))
	findings = append(findings, pattern.Findings...)
	findings = append(findings, ai.Findings...)

	return dtos.CombinedAssessment{
		RiskLevel:        dtos.MaxRiskLevel(pattern.RiskLevel, ai.RiskLevel),
		PatternRiskLevel: normalize(pattern.RiskLevel),
		AIRiskLevel:      normalize(ai.RiskLevel),
		Findings:         findings,
		Summary:          dtos.SummarizeFindings(findings),
	}
}

// normalize maps an absent assessment, e.g. an AI report that never
// materialized, onto the explicit unknown level.
func normalize(l dtos.RiskLevel) dtos.RiskLevel {
	if l == "" {
		return dtos.RiskLevelUnknown
	}
	return l
}
