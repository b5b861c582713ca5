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
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/risk"
	"github.com/skillgate-dev/skillgate/shared"
)

type reportService struct {
	securityReportRepository   shared.SecurityReportRepository
	aiSecurityReportRepository shared.AISecurityReportRepository
}

func NewReportService(securityReportRepository shared.SecurityReportRepository, aiSecurityReportRepository shared.AISecurityReportRepository) *reportService {
	return &reportService{
		securityReportRepository:   securityReportRepository,
		aiSecurityReportRepository: aiSecurityReportRepository,
	}
}

func (s *reportService) LatestSecurityReport(skillVersionID uuid.UUID) (dtos.SecurityReportDTO, error) {
	report, err := s.securityReportRepository.LatestBySkillVersionID(skillVersionID)
	if err != nil {
		return dtos.SecurityReportDTO{}, err
	}
	return report.ToDTO(), nil
}

func (s *reportService) LatestAISecurityReport(skillVersionID uuid.UUID) (dtos.AISecurityReportDTO, error) {
	report, err := s.aiSecurityReportRepository.LatestBySkillVersionID(skillVersionID)
	if err != nil {
		return dtos.AISecurityReportDTO{}, err
	}
	return report.ToDTO(), nil
}

// LatestCombined merges the latest persisted report of each detector,
// recomputed on every call. A detector without any persisted report
// contributes unknown: a version mid-pipeline or with a failed analysis
// shows a warning, never a silently clean verdict.
func (s *reportService) LatestCombined(skillVersionID uuid.UUID) (dtos.CombinedAssessment, error) {
	var pattern dtos.SecurityReportDTO
	patternRow, err := s.securityReportRepository.LatestBySkillVersionID(skillVersionID)
	switch {
	case err == nil:
		pattern = patternRow.ToDTO()
	case errors.Is(err, gorm.ErrRecordNotFound):
		pattern.RiskLevel = dtos.RiskLevelUnknown
	default:
		return dtos.CombinedAssessment{}, err
	}

	var ai dtos.AISecurityReportDTO
	aiRow, err := s.aiSecurityReportRepository.LatestBySkillVersionID(skillVersionID)
	switch {
	case err == nil:
		ai = aiRow.ToDTO()
	case errors.Is(err, gorm.ErrRecordNotFound):
		ai.RiskLevel = dtos.RiskLevelUnknown
	default:
		return dtos.CombinedAssessment{}, err
	}

	return risk.Merge(pattern, ai), nil
}
