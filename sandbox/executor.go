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

// Package sandbox executes declared skill test cases in isolated,
// resource-capped, network-disabled environments. The container runner is
// the primary implementation; the process runner exists for environments
// without a container runtime.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// ExecResult is the raw outcome of one command execution. Output holds
// combined stdout and stderr.
type ExecResult struct {
	Output   string
	ExitCode int
	// TimedOut is set when the context deadline killed the process.
	TimedOut bool
}

// CommandExecutor abstracts os/exec so runners can be tested without
// spawning real processes or containers.
type CommandExecutor interface {
	Run(ctx context.Context, name string, args []string, stdin string, env []string, dir string) (ExecResult, error)
}

// OSCommandExecutor runs commands via os/exec. The context deadline is the
// hard wall-clock limit: exec.CommandContext kills the process when it
// expires.
type OSCommandExecutor struct{}

func (OSCommandExecutor) Run(ctx context.Context, name string, args []string, stdin string, env []string, dir string) (ExecResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	if env != nil {
		cmd.Env = env
	}
	cmd.Dir = dir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()

	result := ExecResult{
		Output:   output.String(),
		TimedOut: ctx.Err() == context.DeadlineExceeded,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// the process never started
		return result, err
	}

	return result, nil
}
