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

package shared

import (
	"context"

	"github.com/google/uuid"
	"github.com/skillgate-dev/skillgate/database/models"
	"github.com/skillgate-dev/skillgate/dtos"
)

type SkillRepository interface {
	Create(tx DB, skill *models.Skill) error
	Read(id uuid.UUID) (models.Skill, error)
	ReadBySlug(slug string) (models.Skill, error)
	All() ([]models.Skill, error)
}

type SkillVersionRepository interface {
	Create(tx DB, version *models.SkillVersion) error
	Save(tx DB, version *models.SkillVersion) error
	Read(id uuid.UUID) (models.SkillVersion, error)
	ReadBySkillAndVersion(skillID uuid.UUID, version string) (models.SkillVersion, error)
	GetDB(tx DB) DB
}

type SecurityReportRepository interface {
	Create(tx DB, report *models.SecurityReport) error
	LatestBySkillVersionID(skillVersionID uuid.UUID) (models.SecurityReport, error)
}

type AISecurityReportRepository interface {
	Create(tx DB, report *models.AISecurityReport) error
	LatestBySkillVersionID(skillVersionID uuid.UUID) (models.AISecurityReport, error)
}

type EvalJobRepository interface {
	Create(tx DB, job *models.EvalJob) error
	Save(tx DB, job *models.EvalJob) error
	Read(id uuid.UUID) (models.EvalJob, error)
	LatestBySkillVersionID(skillVersionID uuid.UUID) (models.EvalJob, error)
	// ClaimNextPending atomically moves the oldest highest-priority PENDING
	// job to RUNNING and returns it. Returns nil when no job is claimable.
	ClaimNextPending() (*models.EvalJob, error)
}

type EvalResultRepository interface {
	Create(tx DB, result *models.EvalResult) error
	ListByJobID(jobID uuid.UUID) ([]models.EvalResult, error)
}

type AuditEventRepository interface {
	Create(tx DB, event *models.AuditEvent) error
}

// PatternScanner applies the rule catalog to a package's file list.
// Deterministic: identical input bytes always yield the identical report.
type PatternScanner interface {
	Scan(files []dtos.PackageFile) dtos.SecurityReportDTO
}

// AIAnalyzer sends the package contents to the external reasoning model and
// maps its structured response onto the common finding shape. Best effort:
// a failure yields an unknown-risk report plus a recoverable error.
type AIAnalyzer interface {
	Analyze(ctx context.Context, files []dtos.PackageFile) (dtos.AISecurityReportDTO, error)
}

// EvalQueue schedules sandboxed test-case execution for a skill version.
// Enqueue errors are the one error class the pipeline does not swallow.
type EvalQueue interface {
	Enqueue(skillVersionID uuid.UUID, testCases []dtos.TestCase, packagePath string) (uuid.UUID, error)
}

// SandboxRunner executes one test case in an isolated, resource-capped,
// network-disabled environment.
type SandboxRunner interface {
	RunTestCase(ctx context.Context, packagePath string, testCase dtos.TestCase) dtos.TestResult
}

type PipelineService interface {
	// TriggerProcessing starts the trust pipeline for the version in the
	// background and returns immediately.
	TriggerProcessing(version models.SkillVersion)
	// ProcessVersion runs the pipeline synchronously. It always terminates
	// with the version in processing_complete; stage failures become
	// processing notes, never errors.
	ProcessVersion(version models.SkillVersion)
	// Reanalyze re-runs scan and AI analysis for an already processed
	// version and records an audit event for the actor.
	Reanalyze(version models.SkillVersion, actor string)
}

type ReportService interface {
	LatestSecurityReport(skillVersionID uuid.UUID) (dtos.SecurityReportDTO, error)
	LatestAISecurityReport(skillVersionID uuid.UUID) (dtos.AISecurityReportDTO, error)
	// LatestCombined merges the latest persisted report of each detector.
	// Recomputed on every call, never cached.
	LatestCombined(skillVersionID uuid.UUID) (dtos.CombinedAssessment, error)
}
