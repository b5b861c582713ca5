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

package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillgate-dev/skillgate/database/models"
	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/shared"
)

type fakeReportService struct {
	combined dtos.CombinedAssessment
	err      error
}

func (f *fakeReportService) LatestSecurityReport(skillVersionID uuid.UUID) (dtos.SecurityReportDTO, error) {
	return dtos.SecurityReportDTO{}, f.err
}

func (f *fakeReportService) LatestAISecurityReport(skillVersionID uuid.UUID) (dtos.AISecurityReportDTO, error) {
	return dtos.AISecurityReportDTO{}, f.err
}

func (f *fakeReportService) LatestCombined(skillVersionID uuid.UUID) (dtos.CombinedAssessment, error) {
	return f.combined, f.err
}

type fakePipelineService struct {
	triggered  []models.SkillVersion
	reanalyzed []string
}

func (f *fakePipelineService) TriggerProcessing(version models.SkillVersion) {
	f.triggered = append(f.triggered, version)
}

func (f *fakePipelineService) ProcessVersion(version models.SkillVersion) {}

func (f *fakePipelineService) Reanalyze(version models.SkillVersion, actor string) {
	f.reanalyzed = append(f.reanalyzed, actor)
}

func downloadContext(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	shared.SetSkillVersion(ctx, models.SkillVersion{PackagePath: "/packages/demo-1.0.0.tar.gz"})
	return ctx, rec
}

func TestDownloadSetsRiskHeaders(t *testing.T) {
	e := echo.New()

	t.Run("critical risk carries a warning", func(t *testing.T) {
		ctx, rec := downloadContext(e)
		controller := NewSkillVersionController(nil, nil, nil, nil, &fakeReportService{
			combined: dtos.CombinedAssessment{RiskLevel: dtos.RiskLevelCritical},
		})

		require.NoError(t, controller.Download(ctx))

		assert.Equal(t, 200, rec.Code)
		assert.Equal(t, "critical", rec.Header().Get("X-Security-Risk-Level"))
		assert.Equal(t, "true", rec.Header().Get("X-Security-Warning"))
		assert.Contains(t, rec.Body.String(), "/packages/demo-1.0.0.tar.gz")
	})

	t.Run("low risk downloads without a warning", func(t *testing.T) {
		ctx, rec := downloadContext(e)
		controller := NewSkillVersionController(nil, nil, nil, nil, &fakeReportService{
			combined: dtos.CombinedAssessment{RiskLevel: dtos.RiskLevelLow},
		})

		require.NoError(t, controller.Download(ctx))

		assert.Equal(t, "low", rec.Header().Get("X-Security-Risk-Level"))
		assert.Equal(t, "false", rec.Header().Get("X-Security-Warning"))
	})

	t.Run("an unassessed version is never presented as safe", func(t *testing.T) {
		ctx, rec := downloadContext(e)
		controller := NewSkillVersionController(nil, nil, nil, nil, &fakeReportService{
			combined: dtos.CombinedAssessment{RiskLevel: dtos.RiskLevelUnknown},
		})

		require.NoError(t, controller.Download(ctx))

		assert.Equal(t, "unknown", rec.Header().Get("X-Security-Risk-Level"))
		assert.Equal(t, "true", rec.Header().Get("X-Security-Warning"))
	})
}

func TestReanalyzeUsesTheActorHeader(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Actor", "security-team")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	shared.SetSkillVersion(ctx, models.SkillVersion{Version: "1.0.0"})

	pipeline := &fakePipelineService{}
	controller := NewSkillVersionController(nil, nil, nil, pipeline, nil)

	require.NoError(t, controller.Reanalyze(ctx))

	assert.Equal(t, 202, rec.Code)
	assert.Equal(t, []string{"security-team"}, pipeline.reanalyzed)
}

func TestCreateRejectsInvalidBodies(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"version": ""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	shared.SetSkill(ctx, models.Skill{Slug: "demo"})

	controller := NewSkillVersionController(nil, nil, nil, &fakePipelineService{}, nil)

	err := controller.Create(ctx)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, 400, httpErr.Code)
}
