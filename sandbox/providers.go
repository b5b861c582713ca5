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

package sandbox

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/skillgate-dev/skillgate/shared"
)

// NewRunnerFromEnv picks the runner implementation based on SANDBOX_MODE.
func NewRunnerFromEnv() shared.SandboxRunner {
	config := ConfigFromEnv()
	if config.Mode == ModeProcess {
		slog.Warn("sandbox running in process mode, isolation is reduced")
		return NewProcessRunner(OSCommandExecutor{})
	}
	return NewContainerRunner(config, OSCommandExecutor{})
}

var Module = fx.Options(
	fx.Provide(NewRunnerFromEnv),
)
