// Copyright 2025 skillgate-dev.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package models

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/skillgate-dev/skillgate/dtos"
	"gorm.io/datatypes"
)

// AISecurityReport is structurally parallel to SecurityReport but sourced
// from the reasoning-model adapter. A version has at most one active AI
// report: the latest row by creation time wins, older rows are history.
type AISecurityReport struct {
	ID              uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SkillVersionID  uuid.UUID      `json:"skillVersionId" gorm:"not null;type:uuid;index;"`
	Findings        datatypes.JSON `json:"findings" gorm:"type:jsonb;default:'[]';"`
	Summary         datatypes.JSON `json:"summary" gorm:"type:jsonb;default:'{}';"`
	RiskLevel       dtos.RiskLevel `json:"riskLevel" gorm:"type:text;not null;default:'unknown';"`
	Confidence      int            `json:"confidence" gorm:"not null;default:0;"`
	Recommendations datatypes.JSON `json:"recommendations" gorm:"type:jsonb;default:'[]';"`
	CreatedAt       time.Time      `json:"createdAt"`

	SkillVersion SkillVersion `json:"-" gorm:"foreignKey:SkillVersionID;constraint:OnDelete:CASCADE;"`
}

func (r AISecurityReport) TableName() string {
	return "ai_security_reports"
}

func (r *AISecurityReport) GetFindings() []dtos.Finding {
	var findings []dtos.Finding
	if len(r.Findings) == 0 {
		return findings
	}
	if err := json.Unmarshal(r.Findings, &findings); err != nil {
		slog.Error("could not unmarshal ai report findings", "err", err, "reportId", r.ID)
		return nil
	}
	return findings
}

func (r *AISecurityReport) GetSummary() dtos.FindingSummary {
	var summary dtos.FindingSummary
	if len(r.Summary) == 0 {
		return summary
	}
	if err := json.Unmarshal(r.Summary, &summary); err != nil {
		slog.Error("could not unmarshal ai report summary", "err", err, "reportId", r.ID)
	}
	return summary
}

func (r *AISecurityReport) GetRecommendations() []string {
	var recommendations []string
	if len(r.Recommendations) == 0 {
		return recommendations
	}
	if err := json.Unmarshal(r.Recommendations, &recommendations); err != nil {
		slog.Error("could not unmarshal ai report recommendations", "err", err, "reportId", r.ID)
		return nil
	}
	return recommendations
}

func (r *AISecurityReport) ToDTO() dtos.AISecurityReportDTO {
	return dtos.AISecurityReportDTO{
		Findings:        r.GetFindings(),
		Summary:         r.GetSummary(),
		RiskLevel:       r.RiskLevel,
		Confidence:      r.Confidence,
		Recommendations: r.GetRecommendations(),
		CreatedAt:       r.CreatedAt,
	}
}

// NewAISecurityReport builds the persistence model from an adapter result.
func NewAISecurityReport(skillVersionID uuid.UUID, report dtos.AISecurityReportDTO) (AISecurityReport, error) {
	findings, err := json.Marshal(report.Findings)
	if err != nil {
		return AISecurityReport{}, err
	}
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return AISecurityReport{}, err
	}
	recommendations, err := json.Marshal(report.Recommendations)
	if err != nil {
		return AISecurityReport{}, err
	}
	return AISecurityReport{
		SkillVersionID:  skillVersionID,
		Findings:        findings,
		Summary:         summary,
		RiskLevel:       report.RiskLevel,
		Confidence:      report.Confidence,
		Recommendations: recommendations,
	}, nil
}
