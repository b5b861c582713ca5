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
	"fmt"
	"strings"
	"time"

	"github.com/skillgate-dev/skillgate/dtos"
)

// maxOutputBytes caps how much captured output is persisted per test.
const maxOutputBytes = 64 * 1024

// evaluate assigns the test status. ERROR covers everything where the
// sandbox or process itself misbehaved, FAILED covers a clean run whose
// output did not meet the expectations, everything else is PASSED.
func evaluate(testCase dtos.TestCase, result ExecResult, startErr error, duration time.Duration) dtos.TestResult {
	out := result.Output
	if len(out) > maxOutputBytes {
		out = out[:maxOutputBytes]
	}

	testResult := dtos.TestResult{
		TestName:   testCase.Name,
		Output:     out,
		DurationMs: duration.Milliseconds(),
	}

	switch {
	case startErr != nil:
		testResult.Status = dtos.TestStatusError
		testResult.Output = fmt.Sprintf("sandbox start failed: %s", startErr)
	case result.TimedOut:
		testResult.Status = dtos.TestStatusError
		testResult.Output = fmt.Sprintf("timed out after %s\n%s", testCase.Timeout(), out)
	case result.ExitCode != 0:
		testResult.Status = dtos.TestStatusError
	case !outputMatches(testCase, out):
		testResult.Status = dtos.TestStatusFailed
	default:
		testResult.Status = dtos.TestStatusPassed
	}

	return testResult
}

// outputMatches checks the declared expectations. expectedOutput is an
// exact match on the trimmed output, every expectedPattern has to appear
// as a substring. A test without expectations passes on exit code alone.
func outputMatches(testCase dtos.TestCase, output string) bool {
	if testCase.ExpectedOutput != nil && strings.TrimSpace(output) != strings.TrimSpace(*testCase.ExpectedOutput) {
		return false
	}
	for _, pattern := range testCase.ExpectedPatterns {
		if !strings.Contains(output, pattern) {
			return false
		}
	}
	return true
}
