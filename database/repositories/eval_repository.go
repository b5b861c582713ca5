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
	"errors"

	"github.com/google/uuid"
	"github.com/skillgate-dev/skillgate/database/models"
	"github.com/skillgate-dev/skillgate/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type evalJobRepository struct {
	db shared.DB
	*GormRepository[uuid.UUID, models.EvalJob]
}

func NewEvalJobRepository(db shared.DB) *evalJobRepository {
	return &evalJobRepository{
		db:             db,
		GormRepository: newGormRepository[uuid.UUID, models.EvalJob](db),
	}
}

var _ shared.EvalJobRepository = &evalJobRepository{}

func (r *evalJobRepository) LatestBySkillVersionID(skillVersionID uuid.UUID) (models.EvalJob, error) {
	var job models.EvalJob
	err := r.db.Where("skill_version_id = ?", skillVersionID).
		Order("created_at DESC").
		First(&job).Error
	return job, err
}

// ClaimNextPending picks the oldest highest-priority PENDING job with
// FOR UPDATE SKIP LOCKED, so concurrent workers never claim the same job,
// and moves it to RUNNING inside the same transaction.
func (r *evalJobRepository) ClaimNextPending() (*models.EvalJob, error) {
	var job models.EvalJob

	err := r.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", models.EvalJobStatusPending).
			Order("priority DESC, created_at ASC").
			First(&job).Error
		if err != nil {
			return err
		}

		job.Status = models.EvalJobStatusRunning
		job.Attempts++
		return tx.Save(&job).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &job, nil
}

type evalResultRepository struct {
	db shared.DB
	*GormRepository[uuid.UUID, models.EvalResult]
}

func NewEvalResultRepository(db shared.DB) *evalResultRepository {
	return &evalResultRepository{
		db:             db,
		GormRepository: newGormRepository[uuid.UUID, models.EvalResult](db),
	}
}

var _ shared.EvalResultRepository = &evalResultRepository{}

// ListByJobID returns the job's results in test declaration order.
func (r *evalResultRepository) ListByJobID(jobID uuid.UUID) ([]models.EvalResult, error) {
	var results []models.EvalResult
	err := r.db.Where("eval_job_id = ?", jobID).
		Order("test_index ASC").
		Find(&results).Error
	return results, err
}
