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
	"time"

	"github.com/google/uuid"

	"github.com/skillgate-dev/skillgate/dtos"
)

// ContainerRunner executes each test case in its own throwaway container
// via the docker CLI. No network, read-only root filesystem, a writable
// tmpfs and hard memory/cpu/pid caps.
type ContainerRunner struct {
	config   Config
	executor CommandExecutor
}

func NewContainerRunner(config Config, executor CommandExecutor) *ContainerRunner {
	return &ContainerRunner{config: config, executor: executor}
}

func (r *ContainerRunner) RunTestCase(ctx context.Context, packagePath string, testCase dtos.TestCase) dtos.TestResult {
	containerName := "skillgate-eval-" + uuid.NewString()

	// the container is torn down no matter how the run ends
	defer r.teardown(containerName)

	runCtx, cancel := context.WithTimeout(ctx, testCase.Timeout()+teardownGrace)
	defer cancel()

	args := []string{
		"run",
		"--rm",
		"--name", containerName,
		"--network=none",
		"--read-only",
		"--tmpfs", "/tmp:rw,size=64m",
		"--memory", r.config.Memory,
		"--cpus", r.config.CPUs,
		"--pids-limit", r.config.PidsLimit,
		"-i",
		"-v", packagePath + ":/skill:ro",
		"-w", "/skill",
		r.config.Image,
		"/bin/sh", "/skill/" + entrypoint,
	}

	start := time.Now()
	result, err := r.executor.Run(runCtx, "docker", args, testCase.Input, nil, "")
	return evaluate(testCase, result, err, time.Since(start))
}

// teardown force-removes the container. docker run --rm already cleans up
// on normal exit; this catches the timeout and crash paths where the CLI
// was killed before it could.
func (r *ContainerRunner) teardown(containerName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.executor.Run(ctx, "docker", []string{"rm", "-f", containerName}, "", nil, ""); err != nil {
		slog.Warn("could not remove sandbox container", "container", containerName, "err", err)
	}
}
