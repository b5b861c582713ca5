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

// SecurityReport is one pattern-scan run over one skill version. Reports are
// append-only: re-analysis creates a new row and the marketplace always
// reads the latest one by creation time.
type SecurityReport struct {
	ID             uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SkillVersionID uuid.UUID      `json:"skillVersionId" gorm:"not null;type:uuid;index;"`
	Findings       datatypes.JSON `json:"findings" gorm:"type:jsonb;default:'[]';"`
	Summary        datatypes.JSON `json:"summary" gorm:"type:jsonb;default:'{}';"`
	Score          int            `json:"score" gorm:"not null;default:0;"`
	RiskLevel      dtos.RiskLevel `json:"riskLevel" gorm:"type:text;not null;default:'unknown';"`
	CreatedAt      time.Time      `json:"createdAt"`

	SkillVersion SkillVersion `json:"-" gorm:"foreignKey:SkillVersionID;constraint:OnDelete:CASCADE;"`
}

func (r SecurityReport) TableName() string {
	return "security_reports"
}

func (r *SecurityReport) GetFindings() []dtos.Finding {
	var findings []dtos.Finding
	if len(r.Findings) == 0 {
		return findings
	}
	if err := json.Unmarshal(r.Findings, &findings); err != nil {
		slog.Error("could not unmarshal report findings", "err", err, "reportId", r.ID)
		return nil
	}
	return findings
}

func (r *SecurityReport) GetSummary() dtos.FindingSummary {
	var summary dtos.FindingSummary
	if len(r.Summary) == 0 {
		return summary
	}
	if err := json.Unmarshal(r.Summary, &summary); err != nil {
		slog.Error("could not unmarshal report summary", "err", err, "reportId", r.ID)
	}
	return summary
}

func (r *SecurityReport) ToDTO() dtos.SecurityReportDTO {
	return dtos.SecurityReportDTO{
		Findings:  r.GetFindings(),
		Summary:   r.GetSummary(),
		Score:     r.Score,
		RiskLevel: r.RiskLevel,
		CreatedAt: r.CreatedAt,
	}
}

// NewSecurityReport builds the persistence model from a scan outcome.
func NewSecurityReport(skillVersionID uuid.UUID, report dtos.SecurityReportDTO) (SecurityReport, error) {
	findings, err := json.Marshal(report.Findings)
	if err != nil {
		return SecurityReport{}, err
	}
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return SecurityReport{}, err
	}
	return SecurityReport{
		SkillVersionID: skillVersionID,
		Findings:       findings,
		Summary:        summary,
		Score:          report.Score,
		RiskLevel:      report.RiskLevel,
	}, nil
}
