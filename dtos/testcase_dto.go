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

package dtos

import "time"

const defaultTestTimeout = 30 * time.Second

// TestCase is declared by the package author. ExpectedOutput is an
// exact-match assertion, ExpectedPatterns are substring assertions which
// all have to be present in the sandbox output.
type TestCase struct {
	Name             string   `json:"name" validate:"required"`
	Input            string   `json:"input"`
	ExpectedOutput   *string  `json:"expectedOutput,omitempty"`
	ExpectedPatterns []string `json:"expectedPatterns,omitempty"`
	TimeoutSeconds   int      `json:"timeout,omitempty" validate:"gte=0,lte=600"`
}

// Timeout returns the declared per-test timeout, defaulting to 30s.
func (t TestCase) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return defaultTestTimeout
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

type TestStatus string

const (
	TestStatusPassed  TestStatus = "PASSED"
	TestStatusFailed  TestStatus = "FAILED"
	TestStatusSkipped TestStatus = "SKIPPED"
	TestStatusError   TestStatus = "ERROR"
)

// TestResult is one outcome of one test case within one evaluation job.
// Immutable once created.
type TestResult struct {
	TestName   string     `json:"testName"`
	Status     TestStatus `json:"status"`
	Output     string     `json:"output"`
	DurationMs int64      `json:"durationMs"`
}
