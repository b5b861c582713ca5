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

type EvalJobStatus string

const (
	EvalJobStatusPending   EvalJobStatus = "PENDING"
	EvalJobStatusRunning   EvalJobStatus = "RUNNING"
	EvalJobStatusCompleted EvalJobStatus = "COMPLETED"
	EvalJobStatusFailed    EvalJobStatus = "FAILED"
)

// EvalJob is one queued evaluation for one skill version. Status transitions
// are append-only: PENDING -> RUNNING -> COMPLETED|FAILED, never backwards.
// Re-running evaluation creates a new job, old jobs and their results stay
// as history.
type EvalJob struct {
	Model
	SkillVersionID uuid.UUID      `json:"skillVersionId" gorm:"not null;type:uuid;index;"`
	Status         EvalJobStatus  `json:"status" gorm:"type:text;not null;default:'PENDING';"`
	Priority       int            `json:"priority" gorm:"not null;default:0;"`
	TestCases      datatypes.JSON `json:"-" gorm:"type:jsonb;default:'[]';"`
	PackagePath    string         `json:"packagePath" gorm:"type:text;default:'';"`
	Attempts       int            `json:"attempts" gorm:"not null;default:0;"`
	Error          *string        `json:"error,omitempty" gorm:"type:text;"`
	StartedAt      *time.Time     `json:"startedAt,omitempty"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`

	SkillVersion SkillVersion `json:"-" gorm:"foreignKey:SkillVersionID;constraint:OnDelete:CASCADE;"`
}

func (j EvalJob) TableName() string {
	return "eval_jobs"
}

func (j *EvalJob) GetTestCases() []dtos.TestCase {
	var testCases []dtos.TestCase
	if len(j.TestCases) == 0 {
		return testCases
	}
	if err := json.Unmarshal(j.TestCases, &testCases); err != nil {
		slog.Error("could not unmarshal eval job test cases", "err", err, "jobId", j.ID)
		return nil
	}
	return testCases
}

func (j *EvalJob) SetTestCases(testCases []dtos.TestCase) error {
	data, err := json.Marshal(testCases)
	if err != nil {
		return err
	}
	j.TestCases = data
	return nil
}

// EvalResult is one outcome of one test case within one evaluation job.
// TestIndex preserves the declaration order of the test cases.
type EvalResult struct {
	ID         uuid.UUID       `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EvalJobID  uuid.UUID       `json:"evalJobId" gorm:"not null;type:uuid;index;uniqueIndex:idx_eval_result_order;"`
	TestIndex  int             `json:"testIndex" gorm:"not null;uniqueIndex:idx_eval_result_order;"`
	TestName   string          `json:"testName" gorm:"not null;type:text;"`
	Status     dtos.TestStatus `json:"status" gorm:"type:text;not null;"`
	Output     string          `json:"output" gorm:"type:text;default:'';"`
	DurationMs int64           `json:"durationMs" gorm:"not null;default:0;"`
	CreatedAt  time.Time       `json:"createdAt"`

	EvalJob EvalJob `json:"-" gorm:"foreignKey:EvalJobID;constraint:OnDelete:CASCADE;"`
}

func (r EvalResult) TableName() string {
	return "eval_results"
}

func (r *EvalResult) ToDTO() dtos.TestResult {
	return dtos.TestResult{
		TestName:   r.TestName,
		Status:     r.Status,
		Output:     r.Output,
		DurationMs: r.DurationMs,
	}
}
