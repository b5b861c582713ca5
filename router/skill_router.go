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
	"github.com/skillgate-dev/skillgate/controllers"
	"github.com/skillgate-dev/skillgate/middlewares"
	"github.com/skillgate-dev/skillgate/shared"
)

type SkillRouter struct {
	apiV1Router APIV1Router
}

func NewSkillRouter(
	apiV1Router APIV1Router,
	skillController *controllers.SkillController,
	skillVersionController *controllers.SkillVersionController,
	skillRepository shared.SkillRepository,
	skillVersionRepository shared.SkillVersionRepository,
) SkillRouter {
	skillsRouter := apiV1Router.Group.Group("/skills")
	skillsRouter.POST("/", skillController.Create)
	skillsRouter.GET("/", skillController.List)

	skillRouter := skillsRouter.Group("/:skillSlug", middlewares.SkillMiddleware(skillRepository))
	skillRouter.GET("/", skillController.Read)
	skillRouter.POST("/versions/", skillVersionController.Create)

	versionRouter := skillRouter.Group("/versions/:version", middlewares.SkillVersionMiddleware(skillVersionRepository))
	versionRouter.GET("/", skillVersionController.Read)
	versionRouter.POST("/analysis/", skillVersionController.Reanalyze)
	versionRouter.GET("/security-report/", skillVersionController.SecurityReport)
	versionRouter.GET("/ai-security-report/", skillVersionController.AISecurityReport)
	versionRouter.GET("/risk/", skillVersionController.Risk)
	versionRouter.GET("/download/", skillVersionController.Download)
	versionRouter.GET("/eval-job/", skillVersionController.EvalJob)
	versionRouter.GET("/eval-results/", skillVersionController.EvalResults)

	return SkillRouter{apiV1Router: apiV1Router}
}
