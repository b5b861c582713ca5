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
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skillgate-dev/skillgate/database/models"
	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/shared"
	"github.com/skillgate-dev/skillgate/utils"
)

type fakeVersionRepository struct {
	saved []models.SkillVersion
}

func (r *fakeVersionRepository) Create(_ shared.DB, version *models.SkillVersion) error { return nil }
func (r *fakeVersionRepository) Save(_ shared.DB, version *models.SkillVersion) error {
	r.saved = append(r.saved, *version)
	return nil
}
func (r *fakeVersionRepository) Read(id uuid.UUID) (models.SkillVersion, error) {
	return models.SkillVersion{}, gorm.ErrRecordNotFound
}
func (r *fakeVersionRepository) ReadBySkillAndVersion(skillID uuid.UUID, version string) (models.SkillVersion, error) {
	return models.SkillVersion{}, gorm.ErrRecordNotFound
}
func (r *fakeVersionRepository) GetDB(tx shared.DB) shared.DB { return tx }

func (r *fakeVersionRepository) lastState() models.ProcessingState {
	if len(r.saved) == 0 {
		return ""
	}
	return r.saved[len(r.saved)-1].ProcessingState
}

type fakeSecurityReportRepository struct {
	created   []models.SecurityReport
	latest    *models.SecurityReport
	createErr error
}

func (r *fakeSecurityReportRepository) Create(_ shared.DB, report *models.SecurityReport) error {
	if r.createErr != nil {
		return r.createErr
	}
	report.CreatedAt = time.Now()
	r.created = append(r.created, *report)
	return nil
}

func (r *fakeSecurityReportRepository) LatestBySkillVersionID(uuid.UUID) (models.SecurityReport, error) {
	if r.latest == nil {
		return models.SecurityReport{}, gorm.ErrRecordNotFound
	}
	return *r.latest, nil
}

type fakeAIReportRepository struct {
	created []models.AISecurityReport
	latest  *models.AISecurityReport
}

func (r *fakeAIReportRepository) Create(_ shared.DB, report *models.AISecurityReport) error {
	report.CreatedAt = time.Now()
	r.created = append(r.created, *report)
	return nil
}

func (r *fakeAIReportRepository) LatestBySkillVersionID(uuid.UUID) (models.AISecurityReport, error) {
	if r.latest == nil {
		return models.AISecurityReport{}, gorm.ErrRecordNotFound
	}
	return *r.latest, nil
}

type fakeAuditRepository struct {
	events []models.AuditEvent
}

func (r *fakeAuditRepository) Create(_ shared.DB, event *models.AuditEvent) error {
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeAuditRepository) actions() []string {
	return utils.Map(r.events, func(e models.AuditEvent) string { return e.Action })
}

type fakeScanner struct {
	report dtos.SecurityReportDTO
}

func (s *fakeScanner) Scan([]dtos.PackageFile) dtos.SecurityReportDTO { return s.report }

type fakeAnalyzer struct {
	report dtos.AISecurityReportDTO
	err    error
}

func (a *fakeAnalyzer) Analyze(context.Context, []dtos.PackageFile) (dtos.AISecurityReportDTO, error) {
	return a.report, a.err
}

type fakeQueue struct {
	enqueued []uuid.UUID
	err      error
}

func (q *fakeQueue) Enqueue(skillVersionID uuid.UUID, _ []dtos.TestCase, _ string) (uuid.UUID, error) {
	if q.err != nil {
		return uuid.Nil, q.err
	}
	q.enqueued = append(q.enqueued, skillVersionID)
	return uuid.New(), nil
}

type pipelineFixture struct {
	versions *fakeVersionRepository
	reports  *fakeSecurityReportRepository
	aiRepo   *fakeAIReportRepository
	audit    *fakeAuditRepository
	scanner  *fakeScanner
	analyzer *fakeAnalyzer
	queue    *fakeQueue
	service  shared.PipelineService
}

func newPipelineFixture() *pipelineFixture {
	f := &pipelineFixture{
		versions: &fakeVersionRepository{},
		reports:  &fakeSecurityReportRepository{},
		aiRepo:   &fakeAIReportRepository{},
		audit:    &fakeAuditRepository{},
		scanner: &fakeScanner{report: dtos.SecurityReportDTO{
			Score:     100,
			RiskLevel: dtos.RiskLevelLow,
		}},
		analyzer: &fakeAnalyzer{report: dtos.AISecurityReportDTO{
			RiskLevel:  dtos.RiskLevelLow,
			Confidence: 90,
		}},
		queue: &fakeQueue{},
	}
	f.service = NewPipelineService(
		f.versions, f.reports, f.aiRepo, f.audit,
		f.scanner, f.analyzer, f.queue,
		&utils.SyncFireAndForgetSynchronizer{},
	)
	return f
}

func newVersion(t *testing.T, testCases []dtos.TestCase) models.SkillVersion {
	t.Helper()
	version := models.SkillVersion{
		SkillID:         uuid.New(),
		Version:         "1.0.0",
		ProcessingState: models.ProcessingStateUploaded,
		PackagePath:     "/packages/p",
	}
	version.ID = uuid.New()
	require.NoError(t, version.SetFiles([]dtos.PackageFile{
		{Path: "SKILL.md", Content: "# skill", ContentType: dtos.ContentTypeMarkdown},
	}))
	require.NoError(t, version.SetTestCases(testCases))
	return version
}

func TestProcessVersionWalksAllStages(t *testing.T) {
	f := newPipelineFixture()
	version := newVersion(t, []dtos.TestCase{{Name: "smoke"}})

	f.service.ProcessVersion(version)

	assert.Len(t, f.reports.created, 1)
	assert.Len(t, f.aiRepo.created, 1)
	assert.Len(t, f.queue.enqueued, 1)
	assert.Equal(t, models.ProcessingStateComplete, f.versions.lastState())
	assert.Empty(t, f.versions.saved[len(f.versions.saved)-1].GetProcessingNotes())

	assert.Equal(t, []string{"stage-scan", "stage-ai-analysis", "stage-eval-queueing"}, f.audit.actions())
}

func TestProcessVersionSkipsEvalWithoutTestCases(t *testing.T) {
	f := newPipelineFixture()
	version := newVersion(t, nil)

	f.service.ProcessVersion(version)

	assert.Empty(t, f.queue.enqueued)
	assert.Equal(t, models.ProcessingStateComplete, f.versions.lastState())
}

func TestProcessVersionCompletesDespiteAIFailure(t *testing.T) {
	f := newPipelineFixture()
	f.analyzer.err = errors.New("model unreachable")
	f.analyzer.report = dtos.AISecurityReportDTO{RiskLevel: dtos.RiskLevelUnknown}
	version := newVersion(t, []dtos.TestCase{{Name: "smoke"}})

	f.service.ProcessVersion(version)

	assert.Equal(t, models.ProcessingStateComplete, f.versions.lastState())
	// the unknown-risk report is persisted so reads never see a clean gap
	require.Len(t, f.aiRepo.created, 1)
	assert.Equal(t, dtos.RiskLevelUnknown, f.aiRepo.created[0].RiskLevel)

	notes := f.versions.saved[len(f.versions.saved)-1].GetProcessingNotes()
	require.NotEmpty(t, notes)
	assert.Equal(t, "ai-analysis", notes[0].Stage)
}

func TestProcessVersionCompletesDespiteScanPersistenceFailure(t *testing.T) {
	f := newPipelineFixture()
	f.reports.createErr = errors.New("db down")
	version := newVersion(t, nil)

	f.service.ProcessVersion(version)

	assert.Equal(t, models.ProcessingStateComplete, f.versions.lastState())
	notes := f.versions.saved[len(f.versions.saved)-1].GetProcessingNotes()
	require.NotEmpty(t, notes)
	assert.Equal(t, "scan", notes[0].Stage)
}

func TestProcessVersionRecordsEnqueueFailure(t *testing.T) {
	f := newPipelineFixture()
	f.queue.err = errors.New("queue unavailable")
	version := newVersion(t, []dtos.TestCase{{Name: "smoke"}})

	f.service.ProcessVersion(version)

	assert.Equal(t, models.ProcessingStateComplete, f.versions.lastState())
	notes := f.versions.saved[len(f.versions.saved)-1].GetProcessingNotes()
	require.NotEmpty(t, notes)
	assert.Equal(t, "eval-queueing", notes[0].Stage)
}

func TestProcessVersionWithAnUnparseablePackage(t *testing.T) {
	f := newPipelineFixture()
	version := newVersion(t, nil)
	version.ParseError = utils.Ptr("zip: not a valid zip file")

	f.service.ProcessVersion(version)

	require.Len(t, f.reports.created, 1)
	report := f.reports.created[0].ToDTO()
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "Scan Error", report.Findings[0].Category)
	assert.Equal(t, dtos.SeverityCritical, report.Findings[0].Severity)
	assert.Equal(t, dtos.RiskLevelCritical, report.RiskLevel)
	assert.Equal(t, 0, report.Score)

	assert.Equal(t, models.ProcessingStateComplete, f.versions.lastState())
}

func TestReanalyzeRecordsAnAuditEventWithTheActor(t *testing.T) {
	f := newPipelineFixture()
	version := newVersion(t, nil)
	version.ProcessingState = models.ProcessingStateComplete

	f.service.Reanalyze(version, "security-team")

	require.NotEmpty(t, f.audit.events)
	assert.Equal(t, "reanalysis-triggered", f.audit.events[0].Action)
	assert.Equal(t, "security-team", f.audit.events[0].Actor)

	// a fresh report per detector, the version state is untouched
	assert.Len(t, f.reports.created, 1)
	assert.Len(t, f.aiRepo.created, 1)
	assert.Equal(t, models.ProcessingStateComplete, f.versions.lastState())
}

func TestTriggerProcessingRunsDetached(t *testing.T) {
	f := newPipelineFixture()
	version := newVersion(t, nil)

	f.service.TriggerProcessing(version)

	// the sync synchronizer runs inline, so the pipeline already finished
	assert.Equal(t, models.ProcessingStateComplete, f.versions.lastState())
}
