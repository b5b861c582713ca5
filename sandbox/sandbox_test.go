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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/utils"
)

type recordedCall struct {
	name  string
	args  []string
	stdin string
	env   []string
	dir   string
}

type fakeExecutor struct {
	result ExecResult
	err    error

	calls []recordedCall
}

func (f *fakeExecutor) Run(_ context.Context, name string, args []string, stdin string, env []string, dir string) (ExecResult, error) {
	f.calls = append(f.calls, recordedCall{name: name, args: args, stdin: stdin, env: env, dir: dir})
	return f.result, f.err
}

func TestContainerRunnerPassesOnMatchingOutput(t *testing.T) {
	executor := &fakeExecutor{result: ExecResult{Output: "hello\n", ExitCode: 0}}
	runner := NewContainerRunner(ConfigFromEnv(), executor)

	result := runner.RunTestCase(context.Background(), "/packages/my-skill", dtos.TestCase{
		Name:           "greets",
		Input:          "world",
		ExpectedOutput: utils.Ptr("hello"),
	})

	assert.Equal(t, dtos.TestStatusPassed, result.Status)
	assert.Equal(t, "greets", result.TestName)

	// docker run followed by the unconditional teardown
	require.Len(t, executor.calls, 2)
	run := executor.calls[0]
	assert.Equal(t, "docker", run.name)
	assert.Contains(t, run.args, "--network=none")
	assert.Contains(t, run.args, "--read-only")
	assert.Contains(t, run.args, "/packages/my-skill:/skill:ro")
	assert.Contains(t, run.args, "/skill/run.sh")
	assert.Equal(t, "world", run.stdin)

	teardown := executor.calls[1]
	assert.Equal(t, []string{"rm", "-f", run.args[3]}, teardown.args)
}

func TestContainerRunnerTearsDownAfterAStartFailure(t *testing.T) {
	executor := &fakeExecutor{err: errors.New("docker daemon not running")}
	runner := NewContainerRunner(ConfigFromEnv(), executor)

	result := runner.RunTestCase(context.Background(), "/packages/my-skill", dtos.TestCase{Name: "t"})

	assert.Equal(t, dtos.TestStatusError, result.Status)
	assert.Contains(t, result.Output, "sandbox start failed")
	assert.Len(t, executor.calls, 2)
}

func TestRunnerReportsErrorOnNonZeroExit(t *testing.T) {
	executor := &fakeExecutor{result: ExecResult{Output: "boom", ExitCode: 2}}
	runner := NewProcessRunner(executor)

	result := runner.RunTestCase(context.Background(), t.TempDir(), dtos.TestCase{Name: "t"})

	assert.Equal(t, dtos.TestStatusError, result.Status)
	assert.Equal(t, "boom", result.Output)
}

func TestRunnerReportsErrorOnTimeout(t *testing.T) {
	executor := &fakeExecutor{result: ExecResult{Output: "partial", TimedOut: true}}
	runner := NewProcessRunner(executor)

	result := runner.RunTestCase(context.Background(), t.TempDir(), dtos.TestCase{Name: "t", TimeoutSeconds: 1})

	assert.Equal(t, dtos.TestStatusError, result.Status)
	assert.Contains(t, result.Output, "timed out after 1s")
}

func TestRunnerFailsOnExactOutputMismatch(t *testing.T) {
	executor := &fakeExecutor{result: ExecResult{Output: "goodbye"}}
	runner := NewProcessRunner(executor)

	result := runner.RunTestCase(context.Background(), t.TempDir(), dtos.TestCase{
		Name:           "t",
		ExpectedOutput: utils.Ptr("hello"),
	})

	assert.Equal(t, dtos.TestStatusFailed, result.Status)
}

func TestRunnerRequiresEveryExpectedPattern(t *testing.T) {
	executor := &fakeExecutor{result: ExecResult{Output: "alpha beta"}}
	runner := NewProcessRunner(executor)

	result := runner.RunTestCase(context.Background(), t.TempDir(), dtos.TestCase{
		Name:             "t",
		ExpectedPatterns: []string{"alpha", "gamma"},
	})

	assert.Equal(t, dtos.TestStatusFailed, result.Status)

	result = runner.RunTestCase(context.Background(), t.TempDir(), dtos.TestCase{
		Name:             "t",
		ExpectedPatterns: []string{"alpha", "beta"},
	})

	assert.Equal(t, dtos.TestStatusPassed, result.Status)
}

func TestRunnerPassesWithoutExpectationsOnCleanExit(t *testing.T) {
	executor := &fakeExecutor{result: ExecResult{Output: "whatever"}}
	runner := NewProcessRunner(executor)

	result := runner.RunTestCase(context.Background(), t.TempDir(), dtos.TestCase{Name: "t"})

	assert.Equal(t, dtos.TestStatusPassed, result.Status)
}

func TestProcessRunnerUsesAMinimalEnvironment(t *testing.T) {
	t.Setenv("AI_API_KEY", "super-secret")

	executor := &fakeExecutor{result: ExecResult{}}
	runner := NewProcessRunner(executor)

	runner.RunTestCase(context.Background(), t.TempDir(), dtos.TestCase{Name: "t"})

	require.Len(t, executor.calls, 1)
	for _, kv := range executor.calls[0].env {
		assert.NotContains(t, kv, "super-secret")
	}
	assert.Contains(t, executor.calls[0].env[0], "PATH=")
}
