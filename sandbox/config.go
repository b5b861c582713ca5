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
	"os"
	"time"
)

// entrypoint is the script every skill package has to ship for its test
// cases to be runnable.
const entrypoint = "run.sh"

// teardownGrace is added to the per-test timeout to give the runtime a
// moment to deliver the kill before the hard deadline fires.
const teardownGrace = 5 * time.Second

type Mode string

const (
	ModeContainer Mode = "container"
	ModeProcess   Mode = "process"
)

type Config struct {
	Mode Mode
	// container resource caps
	Image     string
	Memory    string
	CPUs      string
	PidsLimit string
}

// ConfigFromEnv reads SANDBOX_MODE, SANDBOX_IMAGE, SANDBOX_MEMORY,
// SANDBOX_CPUS and SANDBOX_PIDS_LIMIT with container-mode defaults.
func ConfigFromEnv() Config {
	mode := ModeContainer
	if os.Getenv("SANDBOX_MODE") == string(ModeProcess) {
		mode = ModeProcess
	}
	return Config{
		Mode:      mode,
		Image:     envOr("SANDBOX_IMAGE", "alpine:3.20"),
		Memory:    envOr("SANDBOX_MEMORY", "256m"),
		CPUs:      envOr("SANDBOX_CPUS", "0.5"),
		PidsLimit: envOr("SANDBOX_PIDS_LIMIT", "128"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
