// Copyright 2025 skillgate-dev.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package controllers

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/skillgate-dev/skillgate/database/models"
	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/shared"
	"github.com/skillgate-dev/skillgate/utils"
)

type SkillVersionController struct {
	skillVersionRepository shared.SkillVersionRepository
	evalJobRepository      shared.EvalJobRepository
	evalResultRepository   shared.EvalResultRepository
	pipelineService        shared.PipelineService
	reportService          shared.ReportService
}

func NewSkillVersionController(
	skillVersionRepository shared.SkillVersionRepository,
	evalJobRepository shared.EvalJobRepository,
	evalResultRepository shared.EvalResultRepository,
	pipelineService shared.PipelineService,
	reportService shared.ReportService,
) *SkillVersionController {
	return &SkillVersionController{
		skillVersionRepository: skillVersionRepository,
		evalJobRepository:      evalJobRepository,
		evalResultRepository:   evalResultRepository,
		pipelineService:        pipelineService,
		reportService:          reportService,
	}
}

// Create publishes a new version. The structural parser already ran in the
// marketplace front end: the body carries the extracted file list, the
// declared test cases and, for unreadable archives, the parse error. The
// trust pipeline runs detached, the caller gets a 202 right away.
func (c *SkillVersionController) Create(ctx shared.Context) error {
	skill := shared.GetSkill(ctx)

	type requestBody struct {
		Version     string             `json:"version" validate:"required,min=1,max=100"`
		PackagePath string             `json:"packagePath"`
		ParseError  *string            `json:"parseError,omitempty"`
		Files       []dtos.PackageFile `json:"files" validate:"dive"`
		TestCases   []dtos.TestCase    `json:"testCases" validate:"dive"`
	}

	var body requestBody
	if err := ctx.Bind(&body); err != nil {
		return err
	}
	if err := shared.V.Struct(body); err != nil {
		return echo.NewHTTPError(400, err.Error())
	}

	if _, err := c.skillVersionRepository.ReadBySkillAndVersion(skill.ID, body.Version); err == nil {
		return echo.NewHTTPError(409, fmt.Sprintf("version %s already exists", body.Version))
	}

	version := models.SkillVersion{
		SkillID:         skill.ID,
		Version:         body.Version,
		ProcessingState: models.ProcessingStateUploaded,
		PackagePath:     body.PackagePath,
		ParseError:      body.ParseError,
	}
	if err := version.SetFiles(body.Files); err != nil {
		return echo.NewHTTPError(400, "could not encode files").WithInternal(err)
	}
	if err := version.SetTestCases(body.TestCases); err != nil {
		return echo.NewHTTPError(400, "could not encode test cases").WithInternal(err)
	}

	if err := c.skillVersionRepository.Create(nil, &version); err != nil {
		return echo.NewHTTPError(500, "could not create skill version").WithInternal(err)
	}

	c.pipelineService.TriggerProcessing(version)

	return ctx.JSON(202, version)
}

func (c *SkillVersionController) Read(ctx shared.Context) error {
	return ctx.JSON(200, shared.GetSkillVersion(ctx))
}

// Reanalyze re-triggers scan and AI analysis. Allowed while a prior run is
// still in flight: reads always take the latest persisted report, a slow
// stale analysis cannot win.
func (c *SkillVersionController) Reanalyze(ctx shared.Context) error {
	version := shared.GetSkillVersion(ctx)

	c.pipelineService.Reanalyze(version, shared.GetActor(ctx))

	return ctx.JSON(202, map[string]string{"status": "reanalysis triggered"})
}

func (c *SkillVersionController) SecurityReport(ctx shared.Context) error {
	version := shared.GetSkillVersion(ctx)

	report, err := c.reportService.LatestSecurityReport(version.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(404, "no security report yet")
		}
		return echo.NewHTTPError(500, "could not read security report").WithInternal(err)
	}

	return ctx.JSON(200, report)
}

func (c *SkillVersionController) AISecurityReport(ctx shared.Context) error {
	version := shared.GetSkillVersion(ctx)

	report, err := c.reportService.LatestAISecurityReport(version.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(404, "no ai security report yet")
		}
		return echo.NewHTTPError(500, "could not read ai security report").WithInternal(err)
	}

	return ctx.JSON(200, report)
}

func (c *SkillVersionController) Risk(ctx shared.Context) error {
	version := shared.GetSkillVersion(ctx)

	combined, err := c.reportService.LatestCombined(version.ID)
	if err != nil {
		return echo.NewHTTPError(500, "could not compute combined assessment").WithInternal(err)
	}

	return ctx.JSON(200, combined)
}

// Download hands out the package location together with the risk headers
// the marketplace front end renders as a download warning. unknown counts
// as warning-worthy, an unassessed package is never presented as safe.
func (c *SkillVersionController) Download(ctx shared.Context) error {
	version := shared.GetSkillVersion(ctx)

	combined, err := c.reportService.LatestCombined(version.ID)
	if err != nil {
		return echo.NewHTTPError(500, "could not compute combined assessment").WithInternal(err)
	}

	ctx.Response().Header().Set("X-Security-Risk-Level", string(combined.RiskLevel))
	ctx.Response().Header().Set("X-Security-Warning", fmt.Sprintf("%t", combined.RequiresWarning()))

	return ctx.JSON(200, map[string]string{
		"packagePath": version.PackagePath,
	})
}

func (c *SkillVersionController) EvalJob(ctx shared.Context) error {
	version := shared.GetSkillVersion(ctx)

	job, err := c.evalJobRepository.LatestBySkillVersionID(version.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(404, "no evaluation job yet")
		}
		return echo.NewHTTPError(500, "could not read evaluation job").WithInternal(err)
	}

	return ctx.JSON(200, job)
}

func (c *SkillVersionController) EvalResults(ctx shared.Context) error {
	version := shared.GetSkillVersion(ctx)

	job, err := c.evalJobRepository.LatestBySkillVersionID(version.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(404, "no evaluation job yet")
		}
		return echo.NewHTTPError(500, "could not read evaluation job").WithInternal(err)
	}

	results, err := c.evalResultRepository.ListByJobID(job.ID)
	if err != nil {
		return echo.NewHTTPError(500, "could not read evaluation results").WithInternal(err)
	}

	return ctx.JSON(200, utils.Map(results, func(r models.EvalResult) dtos.TestResult {
		return r.ToDTO()
	}))
}
