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

package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillgate-dev/skillgate/database/models"
	"github.com/skillgate-dev/skillgate/dtos"
)

func securityReportRow(t *testing.T, versionID uuid.UUID, level dtos.RiskLevel, score int) models.SecurityReport {
	t.Helper()
	row, err := models.NewSecurityReport(versionID, dtos.SecurityReportDTO{
		Score:     score,
		RiskLevel: level,
	})
	require.NoError(t, err)
	return row
}

func aiReportRow(t *testing.T, versionID uuid.UUID, level dtos.RiskLevel) models.AISecurityReport {
	t.Helper()
	row, err := models.NewAISecurityReport(versionID, dtos.AISecurityReportDTO{
		RiskLevel:  level,
		Confidence: 80,
	})
	require.NoError(t, err)
	return row
}

func TestLatestCombinedTakesTheWorseDetectorVerdict(t *testing.T) {
	versionID := uuid.New()
	reports := &fakeSecurityReportRepository{}
	aiRepo := &fakeAIReportRepository{}

	pattern := securityReportRow(t, versionID, dtos.RiskLevelCritical, 10)
	reports.latest = &pattern
	// a stale low AI verdict cannot soften a critical pattern verdict
	ai := aiReportRow(t, versionID, dtos.RiskLevelLow)
	aiRepo.latest = &ai

	service := NewReportService(reports, aiRepo)
	combined, err := service.LatestCombined(versionID)

	require.NoError(t, err)
	assert.Equal(t, dtos.RiskLevelCritical, combined.RiskLevel)
	assert.Equal(t, dtos.RiskLevelLow, combined.AIRiskLevel)
	assert.True(t, combined.RequiresWarning())
}

func TestLatestCombinedTreatsAMissingAIReportAsUnknown(t *testing.T) {
	versionID := uuid.New()
	reports := &fakeSecurityReportRepository{}
	pattern := securityReportRow(t, versionID, dtos.RiskLevelLow, 100)
	reports.latest = &pattern

	service := NewReportService(reports, &fakeAIReportRepository{})
	combined, err := service.LatestCombined(versionID)

	require.NoError(t, err)
	assert.Equal(t, dtos.RiskLevelLow, combined.RiskLevel)
	assert.Equal(t, dtos.RiskLevelUnknown, combined.AIRiskLevel)
}

func TestLatestCombinedWithoutAnyReportsIsUnknown(t *testing.T) {
	service := NewReportService(&fakeSecurityReportRepository{}, &fakeAIReportRepository{})

	combined, err := service.LatestCombined(uuid.New())

	require.NoError(t, err)
	assert.Equal(t, dtos.RiskLevelUnknown, combined.RiskLevel)
	// never render an unassessed version as safe
	assert.True(t, combined.RequiresWarning())
}
