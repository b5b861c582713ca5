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

package repositories

import (
	"github.com/google/uuid"
	"github.com/skillgate-dev/skillgate/database/models"
	"github.com/skillgate-dev/skillgate/shared"
)

type securityReportRepository struct {
	db shared.DB
	*GormRepository[uuid.UUID, models.SecurityReport]
}

func NewSecurityReportRepository(db shared.DB) *securityReportRepository {
	return &securityReportRepository{
		db:             db,
		GormRepository: newGormRepository[uuid.UUID, models.SecurityReport](db),
	}
}

var _ shared.SecurityReportRepository = &securityReportRepository{}

// LatestBySkillVersionID returns the most recently created report for the
// version. Ordering by creation time makes replacement last-write-wins by
// completion, not by trigger order.
func (r *securityReportRepository) LatestBySkillVersionID(skillVersionID uuid.UUID) (models.SecurityReport, error) {
	var report models.SecurityReport
	err := r.db.Where("skill_version_id = ?", skillVersionID).
		Order("created_at DESC").
		First(&report).Error
	return report, err
}

type aiSecurityReportRepository struct {
	db shared.DB
	*GormRepository[uuid.UUID, models.AISecurityReport]
}

func NewAISecurityReportRepository(db shared.DB) *aiSecurityReportRepository {
	return &aiSecurityReportRepository{
		db:             db,
		GormRepository: newGormRepository[uuid.UUID, models.AISecurityReport](db),
	}
}

var _ shared.AISecurityReportRepository = &aiSecurityReportRepository{}

func (r *aiSecurityReportRepository) LatestBySkillVersionID(skillVersionID uuid.UUID) (models.AISecurityReport, error) {
	var report models.AISecurityReport
	err := r.db.Where("skill_version_id = ?", skillVersionID).
		Order("created_at DESC").
		First(&report).Error
	return report, err
}
