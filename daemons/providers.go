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

// Package daemons hooks the background workers into the application
// lifecycle so they start after the database connection is up and drain
// before shutdown.
package daemons

import (
	"context"

	"go.uber.org/fx"

	"github.com/skillgate-dev/skillgate/evalqueue"
	"github.com/skillgate-dev/skillgate/shared"
)

func registerBrokerShutdown(lc fx.Lifecycle, broker shared.PubSubBroker) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return broker.Close()
		},
	})
}

func registerEvalWorkerPool(lc fx.Lifecycle, pool *evalqueue.WorkerPool) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return pool.Start()
		},
		OnStop: func(ctx context.Context) error {
			return pool.Stop(ctx)
		},
	})
}

// The broker hook is registered first so the reverse-order shutdown stops
// the worker pool before its notification channel goes away.
var Module = fx.Options(
	fx.Invoke(registerBrokerShutdown),
	fx.Invoke(registerEvalWorkerPool),
)
