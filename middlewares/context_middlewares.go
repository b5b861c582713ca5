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

package middlewares

import (
	"github.com/labstack/echo/v4"

	"github.com/skillgate-dev/skillgate/shared"
)

// SkillMiddleware resolves the :skillSlug route param and stores the skill
// on the request context for the handlers underneath.
func SkillMiddleware(skillRepository shared.SkillRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			slug := shared.SanitizeParam(ctx.Param("skillSlug"))

			skill, err := skillRepository.ReadBySlug(slug)
			if err != nil {
				return echo.NewHTTPError(404, "could not find skill").WithInternal(err)
			}

			shared.SetSkill(ctx, skill)
			return next(ctx)
		}
	}
}

// SkillVersionMiddleware resolves the :version route param relative to the
// skill already stored on the context.
func SkillVersionMiddleware(skillVersionRepository shared.SkillVersionRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			skill := shared.GetSkill(ctx)
			version := shared.SanitizeParam(ctx.Param("version"))

			skillVersion, err := skillVersionRepository.ReadBySkillAndVersion(skill.ID, version)
			if err != nil {
				return echo.NewHTTPError(404, "could not find skill version").WithInternal(err)
			}

			shared.SetSkillVersion(ctx, skillVersion)
			return next(ctx)
		}
	}
}
