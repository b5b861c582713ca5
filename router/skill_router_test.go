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

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillgate-dev/skillgate/cmd/skillgate/api"
	"github.com/skillgate-dev/skillgate/controllers"
	"github.com/skillgate-dev/skillgate/middlewares"
)

func TestSkillRouterRegistersAllRoutes(t *testing.T) {
	srv := api.Server{Echo: middlewares.Server()}

	apiV1Router := NewAPIV1Router(srv, nil)
	NewSkillRouter(
		apiV1Router,
		controllers.NewSkillController(nil),
		controllers.NewSkillVersionController(nil, nil, nil, nil, nil),
		nil,
		nil,
	)

	registered := make(map[string]bool)
	for _, route := range srv.Echo.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /api/v1/health/",
		"POST /api/v1/skills/",
		"GET /api/v1/skills/",
		"GET /api/v1/skills/:skillSlug/",
		"POST /api/v1/skills/:skillSlug/versions/",
		"GET /api/v1/skills/:skillSlug/versions/:version/",
		"POST /api/v1/skills/:skillSlug/versions/:version/analysis/",
		"GET /api/v1/skills/:skillSlug/versions/:version/security-report/",
		"GET /api/v1/skills/:skillSlug/versions/:version/ai-security-report/",
		"GET /api/v1/skills/:skillSlug/versions/:version/risk/",
		"GET /api/v1/skills/:skillSlug/versions/:version/download/",
		"GET /api/v1/skills/:skillSlug/versions/:version/eval-job/",
		"GET /api/v1/skills/:skillSlug/versions/:version/eval-results/",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}
