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

// Package evalqueue holds the durable evaluation queue: jobs live as rows
// in postgres, workers claim them with SKIP LOCKED, and a LISTEN/NOTIFY
// wakeup keeps latency low without making the ticker fallback load-bearing
// for correctness.
package evalqueue

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/skillgate-dev/skillgate/database"
	"github.com/skillgate-dev/skillgate/database/models"
	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/shared"
)

type QueueService struct {
	evalJobRepository shared.EvalJobRepository
	broker            shared.PubSubBroker
}

func NewQueueService(evalJobRepository shared.EvalJobRepository, broker shared.PubSubBroker) *QueueService {
	return &QueueService{
		evalJobRepository: evalJobRepository,
		broker:            broker,
	}
}

// Enqueue persists a PENDING job and wakes the worker pool. The job row is
// the source of truth: a failed notify only costs latency until the next
// poll tick, a failed insert is returned to the caller. This is the one
// place in the pipeline where an error is not swallowed, a job that was
// never persisted would silently keep a version's tests from running.
func (s *QueueService) Enqueue(skillVersionID uuid.UUID, testCases []dtos.TestCase, packagePath string) (uuid.UUID, error) {
	job := models.EvalJob{
		SkillVersionID: skillVersionID,
		Status:         models.EvalJobStatusPending,
		PackagePath:    packagePath,
	}
	if err := job.SetTestCases(testCases); err != nil {
		return uuid.Nil, errors.Wrap(err, "could not encode test cases")
	}

	if err := s.evalJobRepository.Create(nil, &job); err != nil {
		return uuid.Nil, errors.Wrap(err, "could not persist eval job")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.broker.Publish(ctx, database.NewSimpleMessage(database.EvalJobEnqueued, map[string]any{
		"jobId": job.ID.String(),
	})); err != nil {
		slog.Warn("could not notify eval workers, job will be picked up by the next poll", "jobId", job.ID, "err", err)
	}

	return job.ID, nil
}
