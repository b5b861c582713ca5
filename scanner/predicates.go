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

package scanner

import (
	"regexp"
	"strings"
)

// predicateFunc inspects one line. Predicates cover the checks that need
// two conditions on the same line, which a single substring or regex cannot
// express cleanly.
type predicateFunc func(line string) bool

var downloaderRe = regexp.MustCompile(`\b(curl|wget)\b`)
var shellSinkRe = regexp.MustCompile(`\|\s*(sudo\s+)?(ba)?sh\b|\|\s*zsh\b|\|\s*python3?\b`)
var base64DecodeRe = regexp.MustCompile(`base64\s+(-d|--decode)|atob\s*\(|b64decode\s*\(`)
var execSinkRe = regexp.MustCompile(`\|\s*(ba)?sh\b|\beval\b|\bexec\b|\bsource\b`)
var envReadRe = regexp.MustCompile(`\$\{?[A-Z_]{3,}\}?|printenv|os\.environ|process\.env`)
var networkSinkRe = regexp.MustCompile(`\b(curl|wget|nc|ncat)\b[^\n]*https?://|https?://[^\s]+\?[^\s]*=`)

// predicates is the registry the catalog refers to by name.
var predicates = map[string]predicateFunc{
	// a downloader on the same line as a pipe into a shell
	"curl-pipe-shell": func(line string) bool {
		return downloaderRe.MatchString(line) && shellSinkRe.MatchString(line)
	},
	// a base64 decode feeding an execution sink
	"base64-decode-exec": func(line string) bool {
		return base64DecodeRe.MatchString(line) && execSinkRe.MatchString(line)
	},
	// an environment read on the same line as an outbound request
	"env-to-network": func(line string) bool {
		return envReadRe.MatchString(line) && networkSinkRe.MatchString(line) &&
			!strings.HasPrefix(strings.TrimSpace(line), "#")
	},
}

// LookupPredicate returns the named predicate, or false when the catalog
// references an unknown one.
func LookupPredicate(name string) (predicateFunc, bool) {
	p, ok := predicates[name]
	return p, ok
}
