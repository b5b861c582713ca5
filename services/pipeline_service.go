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

// Package services holds the trust pipeline: the state machine every
// uploaded skill version walks through, and the read side assembling risk
// verdicts from persisted reports.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/skillgate-dev/skillgate/database/models"
	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/monitoring"
	"github.com/skillgate-dev/skillgate/scanner"
	"github.com/skillgate-dev/skillgate/shared"
	"github.com/skillgate-dev/skillgate/utils"
)

// aiAnalysisTimeout bounds the single model round trip per version.
const aiAnalysisTimeout = 5 * time.Minute

type pipelineService struct {
	skillVersionRepository     shared.SkillVersionRepository
	securityReportRepository   shared.SecurityReportRepository
	aiSecurityReportRepository shared.AISecurityReportRepository
	auditEventRepository       shared.AuditEventRepository
	scanner                    shared.PatternScanner
	analyzer                   shared.AIAnalyzer
	queue                      shared.EvalQueue
	synchronizer               utils.FireAndForgetSynchronizer
}

func NewPipelineService(
	skillVersionRepository shared.SkillVersionRepository,
	securityReportRepository shared.SecurityReportRepository,
	aiSecurityReportRepository shared.AISecurityReportRepository,
	auditEventRepository shared.AuditEventRepository,
	scanner shared.PatternScanner,
	analyzer shared.AIAnalyzer,
	queue shared.EvalQueue,
	synchronizer utils.FireAndForgetSynchronizer,
) *pipelineService {
	return &pipelineService{
		skillVersionRepository:     skillVersionRepository,
		securityReportRepository:   securityReportRepository,
		aiSecurityReportRepository: aiSecurityReportRepository,
		auditEventRepository:       auditEventRepository,
		scanner:                    scanner,
		analyzer:                   analyzer,
		queue:                      queue,
		synchronizer:               synchronizer,
	}
}

// TriggerProcessing runs the pipeline detached from the upload request.
// The caller gets its 202 before any analysis work starts.
func (s *pipelineService) TriggerProcessing(version models.SkillVersion) {
	s.synchronizer.FireAndForget(func() {
		s.ProcessVersion(version)
	})
}

// ProcessVersion walks the version through scan, AI analysis and eval
// queueing. Transitions are one-way. Every stage failure is recorded as a
// processing note and the walk continues: the version always ends in
// processing_complete, the marketplace never shows a skill stuck in
// progress.
func (s *pipelineService) ProcessVersion(version models.SkillVersion) {
	slog.Info("processing skill version", "skillVersionId", version.ID, "version", version.Version)

	files := version.GetFiles()

	s.runScanStage(&version, files)
	s.transition(&version, models.ProcessingStateScanned)

	s.runAIStage(&version, files)
	s.transition(&version, models.ProcessingStateAIAnalyzed)

	s.runEvalStage(&version)
	s.transition(&version, models.ProcessingStateEvalQueued)

	s.transition(&version, models.ProcessingStateComplete)
	slog.Info("skill version processed", "skillVersionId", version.ID, "notes", len(version.GetProcessingNotes()))
}

// Reanalyze re-runs scan and AI analysis for an already processed version.
// A slow stale run cannot win over a newer one: reads always take the
// latest persisted report per detector.
func (s *pipelineService) Reanalyze(version models.SkillVersion, actor string) {
	s.audit(actor, version, "reanalysis-triggered", 0, 0)

	s.synchronizer.FireAndForget(func() {
		files := version.GetFiles()
		s.runScanStage(&version, files)
		s.runAIStage(&version, files)
		s.save(&version)
	})
}

func (s *pipelineService) runScanStage(version *models.SkillVersion, files []dtos.PackageFile) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.RecoverAndAlert("scan stage panicked", fmt.Errorf("%v", r))
			version.AppendProcessingNote("scan", fmt.Sprintf("scan crashed: %v", r))
			s.audit("system", *version, "stage-scan", 0, 1)
		}
	}()

	var report dtos.SecurityReportDTO
	if version.ParseError != nil {
		// an unreadable package is maximally suspicious, never clean
		report = scanner.CorruptPackageReport(*version.ParseError)
		version.AppendProcessingNote("scan", fmt.Sprintf("package could not be parsed: %s", *version.ParseError))
	} else {
		report = s.scanner.Scan(files)
	}

	row, err := models.NewSecurityReport(version.ID, report)
	if err != nil {
		version.AppendProcessingNote("scan", fmt.Sprintf("could not encode scan report: %s", err))
		s.audit("system", *version, "stage-scan", 0, 1)
		return
	}
	if err := s.securityReportRepository.Create(nil, &row); err != nil {
		version.AppendProcessingNote("scan", fmt.Sprintf("could not persist scan report: %s", err))
		s.audit("system", *version, "stage-scan", 0, 1)
		return
	}

	s.audit("system", *version, "stage-scan", 1, 0)
}

func (s *pipelineService) runAIStage(version *models.SkillVersion, files []dtos.PackageFile) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.RecoverAndAlert("ai analysis stage panicked", fmt.Errorf("%v", r))
			version.AppendProcessingNote("ai-analysis", fmt.Sprintf("ai analysis crashed: %v", r))
			s.audit("system", *version, "stage-ai-analysis", 0, 1)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), aiAnalysisTimeout)
	defer cancel()

	// on failure the analyzer hands back an unknown-risk report, which is
	// persisted so the merged verdict shows a warning instead of "safe"
	report, err := s.analyzer.Analyze(ctx, files)
	if err != nil {
		version.AppendProcessingNote("ai-analysis", err.Error())
	}

	row, mapErr := models.NewAISecurityReport(version.ID, report)
	if mapErr != nil {
		version.AppendProcessingNote("ai-analysis", fmt.Sprintf("could not encode ai report: %s", mapErr))
		s.audit("system", *version, "stage-ai-analysis", 0, 1)
		return
	}
	if createErr := s.aiSecurityReportRepository.Create(nil, &row); createErr != nil {
		version.AppendProcessingNote("ai-analysis", fmt.Sprintf("could not persist ai report: %s", createErr))
		s.audit("system", *version, "stage-ai-analysis", 0, 1)
		return
	}

	if err != nil {
		s.audit("system", *version, "stage-ai-analysis", 0, 1)
		return
	}
	s.audit("system", *version, "stage-ai-analysis", 1, 0)
}

func (s *pipelineService) runEvalStage(version *models.SkillVersion) {
	testCases := version.GetTestCases()
	if len(testCases) == 0 {
		return
	}

	jobID, err := s.queue.Enqueue(version.ID, testCases, version.PackagePath)
	if err != nil {
		version.AppendProcessingNote("eval-queueing", fmt.Sprintf("could not enqueue evaluation: %s", err))
		s.audit("system", *version, "stage-eval-queueing", 0, 1)
		return
	}

	slog.Info("evaluation enqueued", "skillVersionId", version.ID, "jobId", jobID)
	s.audit("system", *version, "stage-eval-queueing", 1, 0)
}

func (s *pipelineService) transition(version *models.SkillVersion, state models.ProcessingState) {
	version.ProcessingState = state
	s.save(version)
}

func (s *pipelineService) save(version *models.SkillVersion) {
	if err := s.skillVersionRepository.Save(nil, version); err != nil {
		monitoring.Alert(fmt.Sprintf("could not save skill version %s", version.ID), err)
	}
}

func (s *pipelineService) audit(actor string, version models.SkillVersion, action string, processed, failed int) {
	event := models.AuditEvent{
		Actor:     actor,
		Scope:     fmt.Sprintf("skill-version/%s", version.ID),
		Action:    action,
		Processed: processed,
		Failed:    failed,
	}
	if err := s.auditEventRepository.Create(nil, &event); err != nil {
		slog.Warn("could not record audit event", "action", action, "skillVersionId", version.ID, "err", err)
	}
}
