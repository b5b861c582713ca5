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

package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/fx"

	"github.com/skillgate-dev/skillgate/aianalysis"
	"github.com/skillgate-dev/skillgate/cmd/skillgate/api"
	"github.com/skillgate-dev/skillgate/controllers"
	"github.com/skillgate-dev/skillgate/daemons"
	"github.com/skillgate-dev/skillgate/database"
	"github.com/skillgate-dev/skillgate/database/repositories"
	"github.com/skillgate-dev/skillgate/evalqueue"
	"github.com/skillgate-dev/skillgate/router"
	"github.com/skillgate-dev/skillgate/sandbox"
	"github.com/skillgate-dev/skillgate/scanner"
	"github.com/skillgate-dev/skillgate/services"
	"github.com/skillgate-dev/skillgate/shared"

	_ "github.com/lib/pq"
)

var release string // Will be filled at build time

func main() {
	shared.LoadConfig() // nolint: errcheck
	shared.InitLogger()

	if os.Getenv("ERROR_TRACKING_DSN") != "" {
		initSentry()

		defer func() {
			if err := recover(); err != nil {
				sentry.CurrentHub().Recover(err)
				// Wait for events to be sent to the server
				sentry.Flush(time.Second * 5)
			}
		}()
	}

	db, err := shared.DatabaseFactory()
	if err != nil {
		slog.Error(err.Error())
		panic(errors.New("failed to setup database connection"))
	}

	if os.Getenv("DISABLE_AUTOMIGRATE") != "true" {
		slog.Info("running database migrations...")
		if err := database.RunMigrationsWithDB(db); err != nil {
			slog.Error("failed to run database migrations", "error", err)
			panic(errors.New("failed to run database migrations"))
		}
	} else {
		slog.Info("automatic migrations disabled via DISABLE_AUTOMIGRATE=true")
	}

	fx.New(
		fx.Supply(db),
		fx.Provide(database.BrokerFactory),
		fx.Provide(api.NewServer),
		repositories.Module,
		scanner.Module,
		aianalysis.Module,
		sandbox.Module,
		evalqueue.Module,
		services.Module,
		controllers.Module,
		router.RouterModule,
		daemons.Module,

		// routers register their routes when constructed
		fx.Invoke(func(SkillRouter router.SkillRouter) {}),
	).Run()
}

func initSentry() {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "dev"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         os.Getenv("ERROR_TRACKING_DSN"),
		Environment: environment,
		Release:     release,

		Debug: environment == "dev",

		AttachStacktrace: true,

		SendDefaultPII: false,
	})
	if err != nil {
		slog.Error("failed to init error tracking", "err", err)
	}
}
