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
	"time"

	"github.com/labstack/echo/v4"

	"github.com/skillgate-dev/skillgate/cmd/skillgate/api"
	"github.com/skillgate-dev/skillgate/shared"
)

type APIV1Router struct {
	*echo.Group
}

func NewAPIV1Router(srv api.Server, db shared.DB) APIV1Router {
	apiV1Router := srv.Echo.Group("/api/v1")

	apiV1Router.GET("/health/", func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return echo.NewHTTPError(503, "database unavailable").WithInternal(err)
		}
		if err := sqlDB.PingContext(c.Request().Context()); err != nil {
			return echo.NewHTTPError(503, "database unavailable").WithInternal(err)
		}
		return c.JSON(200, map[string]string{
			"status": "ok",
			"uptime": time.Since(api.StartedAt).String(),
		})
	})

	return APIV1Router{Group: apiV1Router}
}
