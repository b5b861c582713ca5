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

package risk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/risk"
)

func patternReport(level dtos.RiskLevel, findings ...dtos.Finding) dtos.SecurityReportDTO {
	return dtos.SecurityReportDTO{
		Findings:  findings,
		Summary:   dtos.SummarizeFindings(findings),
		RiskLevel: level,
	}
}

func aiReport(level dtos.RiskLevel, findings ...dtos.Finding) dtos.AISecurityReportDTO {
	return dtos.AISecurityReportDTO{
		Findings:  findings,
		Summary:   dtos.SummarizeFindings(findings),
		RiskLevel: level,
	}
}

func TestMergeTakesTheMoreSevereLevel(t *testing.T) {
	cases := []struct {
		pattern  dtos.RiskLevel
		ai       dtos.RiskLevel
		expected dtos.RiskLevel
	}{
		{dtos.RiskLevelLow, dtos.RiskLevelLow, dtos.RiskLevelLow},
		{dtos.RiskLevelLow, dtos.RiskLevelMedium, dtos.RiskLevelMedium},
		{dtos.RiskLevelMedium, dtos.RiskLevelHigh, dtos.RiskLevelHigh},
		{dtos.RiskLevelCritical, dtos.RiskLevelLow, dtos.RiskLevelCritical},
		{dtos.RiskLevelLow, dtos.RiskLevelCritical, dtos.RiskLevelCritical},
	}

	for _, tc := range cases {
		t.Run(string(tc.pattern)+"_"+string(tc.ai), func(t *testing.T) {
			combined := risk.Merge(patternReport(tc.pattern), aiReport(tc.ai))
			assert.Equal(t, tc.expected, combined.RiskLevel)
			assert.Equal(t, tc.pattern, combined.PatternRiskLevel)
			assert.Equal(t, tc.ai, combined.AIRiskLevel)
		})
	}
}

func TestMergeIsCommutativeOnTheRiskLevel(t *testing.T) {
	levels := []dtos.RiskLevel{
		dtos.RiskLevelUnknown,
		dtos.RiskLevelLow,
		dtos.RiskLevelMedium,
		dtos.RiskLevelHigh,
		dtos.RiskLevelCritical,
	}

	for _, a := range levels {
		for _, b := range levels {
			ab := risk.Merge(patternReport(a), aiReport(b))
			ba := risk.Merge(patternReport(b), aiReport(a))
			assert.Equal(t, ab.RiskLevel, ba.RiskLevel, "%s vs %s", a, b)
		}
	}
}

func TestMergeUnknownIsTheIdentity(t *testing.T) {
	combined := risk.Merge(patternReport(dtos.RiskLevelMedium), aiReport(dtos.RiskLevelUnknown))
	assert.Equal(t, dtos.RiskLevelMedium, combined.RiskLevel)

	combined = risk.Merge(patternReport(dtos.RiskLevelUnknown), aiReport(dtos.RiskLevelUnknown))
	assert.Equal(t, dtos.RiskLevelUnknown, combined.RiskLevel)
}

func TestMergeTreatsAnAbsentAIReportAsUnknown(t *testing.T) {
	// zero-value report, the AI stage never produced anything
	combined := risk.Merge(patternReport(dtos.RiskLevelHigh), dtos.AISecurityReportDTO{})

	assert.Equal(t, dtos.RiskLevelHigh, combined.RiskLevel)
	assert.Equal(t, dtos.RiskLevelUnknown, combined.AIRiskLevel)
	assert.True(t, combined.RequiresWarning())
}

func TestMergeUnionsFindingsAndRecomputesTheSummary(t *testing.T) {
	patternFinding := dtos.Finding{
		ID:       "finding-1",
		Category: "Credentials",
		Title:    "Hardcoded Secret",
		Severity: dtos.SeverityCritical,
		Source:   dtos.FindingSourcePattern,
	}
	aiFinding := dtos.Finding{
		ID:       "ai-1",
		Category: "Obfuscation",
		Title:    "Obfuscated payload",
		Severity: dtos.SeverityHigh,
		Source:   dtos.FindingSourceAI,
	}

	combined := risk.Merge(
		patternReport(dtos.RiskLevelCritical, patternFinding),
		aiReport(dtos.RiskLevelHigh, aiFinding),
	)

	assert.Len(t, combined.Findings, 2)
	assert.Equal(t, 1, combined.Summary.Critical)
	assert.Equal(t, 1, combined.Summary.High)
	assert.Equal(t, 2, combined.Summary.Total())
}

func TestMergeIsRecomputedNotCached(t *testing.T) {
	first := risk.Merge(patternReport(dtos.RiskLevelCritical), aiReport(dtos.RiskLevelLow))
	assert.Equal(t, dtos.RiskLevelCritical, first.RiskLevel)

	// a fresh pattern report replaces the old verdict entirely
	second := risk.Merge(patternReport(dtos.RiskLevelLow), aiReport(dtos.RiskLevelLow))
	assert.Equal(t, dtos.RiskLevelLow, second.RiskLevel)
}
