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
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/skillgate-dev/skillgate/dtos"
)

// ProcessRunner executes test cases as plain subprocesses with a minimal
// environment and a scratch temp dir. It offers far weaker isolation than
// the container runner and exists for environments without a container
// runtime, such as CI and local development.
type ProcessRunner struct {
	executor CommandExecutor
}

func NewProcessRunner(executor CommandExecutor) *ProcessRunner {
	return &ProcessRunner{executor: executor}
}

func (r *ProcessRunner) RunTestCase(ctx context.Context, packagePath string, testCase dtos.TestCase) dtos.TestResult {
	runCtx, cancel := context.WithTimeout(ctx, testCase.Timeout()+teardownGrace)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "skillgate-eval-")
	if err != nil {
		return evaluate(testCase, ExecResult{}, err, 0)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			slog.Warn("could not remove sandbox temp dir", "dir", tmpDir, "err", err)
		}
	}()

	// minimal env: no secrets from the daemon process leak into the skill
	env := []string{
		"PATH=/usr/local/bin:/usr/bin:/bin",
		"HOME=" + tmpDir,
		"TMPDIR=" + tmpDir,
	}

	start := time.Now()
	result, err := r.executor.Run(runCtx, "/bin/sh", []string{filepath.Join(packagePath, entrypoint)}, testCase.Input, env, packagePath)
	return evaluate(testCase, result, err, time.Since(start))
}
