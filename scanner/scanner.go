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

// Package scanner implements the deterministic, rule-based pattern scan
// over a skill package's file list. The rule catalog is data, the scanner
// is a table-driven evaluator over it.
package scanner

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/skillgate-dev/skillgate/dtos"
)

const maxSnippetLength = 200

type compiledRule struct {
	Rule
	regex     *regexp.Regexp
	predicate predicateFunc
}

type Scanner struct {
	policy   ScorePolicy
	compiled []compiledRule
}

// New compiles the catalog once. A rule that neither carries a pattern, a
// valid regex nor a known predicate is a configuration error.
func New(catalog Catalog, policy ScorePolicy) (*Scanner, error) {
	compiled := make([]compiledRule, 0, len(catalog.Rules))
	for _, rule := range catalog.Rules {
		c := compiledRule{Rule: rule}
		switch {
		case rule.Pattern != "":
		case rule.Regex != "":
			re, err := regexp.Compile(rule.Regex)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid regex in rule %s", rule.ID)
			}
			c.regex = re
		case rule.Predicate != "":
			p, ok := LookupPredicate(rule.Predicate)
			if !ok {
				return nil, errors.Errorf("unknown predicate %q in rule %s", rule.Predicate, rule.ID)
			}
			c.predicate = p
		default:
			return nil, errors.Errorf("rule %s has no matcher", rule.ID)
		}
		compiled = append(compiled, c)
	}

	return &Scanner{policy: policy, compiled: compiled}, nil
}

// Scan applies the full catalog to every text file. Deterministic: files in
// input order, rules in catalog order, no randomness, no external calls.
func (s *Scanner) Scan(files []dtos.PackageFile) dtos.SecurityReportDTO {
	var findings []dtos.Finding

	for _, file := range files {
		if isBinary(file) {
			continue
		}
		class, ok := classify(file)
		if !ok {
			continue
		}

		lines := strings.Split(file.Content, "\n")
		for _, rule := range s.compiled {
			if !rule.appliesTo(class) {
				continue
			}
			for _, m := range rule.match(lines) {
				findings = append(findings, dtos.Finding{
					ID:             fmt.Sprintf("finding-%d", len(findings)+1),
					Category:       rule.Category,
					Title:          rule.Name,
					Description:    rule.Description,
					Severity:       rule.Severity,
					Source:         dtos.FindingSourcePattern,
					File:           file.Path,
					Line:           m.line,
					CodeSnippet:    m.snippet,
					Recommendation: rule.Recommendation,
				})
				if !rule.PerMatch {
					break
				}
			}
		}
	}

	summary := dtos.SummarizeFindings(findings)
	score := s.policy.Score(summary)

	return dtos.SecurityReportDTO{
		Findings:  findings,
		Summary:   summary,
		Score:     score,
		RiskLevel: s.policy.RiskLevelForScore(score),
		CreatedAt: time.Now(),
	}
}

// CorruptPackageReport is the outcome for a package whose archive could not
// be opened or parsed. A scanner that cannot see the contents is maximally
// suspicious, never clean: exactly one critical finding, risk level
// critical regardless of the score policy.
func CorruptPackageReport(reason string) dtos.SecurityReportDTO {
	findings := []dtos.Finding{{
		ID:             "finding-1",
		Category:       "Scan Error",
		Title:          "Package could not be scanned",
		Description:    fmt.Sprintf("The package archive could not be read: %s", reason),
		Severity:       dtos.SeverityCritical,
		Source:         dtos.FindingSourcePattern,
		Recommendation: "Re-upload the package with a readable archive.",
	}}

	return dtos.SecurityReportDTO{
		Findings:  findings,
		Summary:   dtos.SummarizeFindings(findings),
		Score:     0,
		RiskLevel: dtos.RiskLevelCritical,
		CreatedAt: time.Now(),
	}
}

type match struct {
	line    int
	snippet string
}

func (r compiledRule) match(lines []string) []match {
	var matches []match
	for i, line := range lines {
		hit := false
		switch {
		case r.Pattern != "":
			hit = strings.Contains(line, r.Pattern)
		case r.regex != nil:
			hit = r.regex.MatchString(line)
		case r.predicate != nil:
			hit = r.predicate(line)
		}
		if hit {
			matches = append(matches, match{line: i + 1, snippet: snippet(line)})
		}
	}
	return matches
}

func snippet(line string) string {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) > maxSnippetLength {
		return trimmed[:maxSnippetLength]
	}
	return trimmed
}

var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".webp": true, ".pdf": true, ".zip": true, ".tar": true, ".gz": true,
	".xz": true, ".bz2": true, ".7z": true, ".exe": true, ".dll": true,
	".so": true, ".dylib": true, ".wasm": true, ".bin": true, ".woff": true,
	".woff2": true, ".ttf": true, ".mp3": true, ".mp4": true,
}

// ReviewableFiles filters a package down to the markdown and script files
// the rule classes cover. Binaries and unclassified data files are dropped,
// the same way Scan skips them.
func ReviewableFiles(files []dtos.PackageFile) []dtos.PackageFile {
	reviewable := make([]dtos.PackageFile, 0, len(files))
	for _, file := range files {
		if isBinary(file) {
			continue
		}
		if _, ok := classify(file); !ok {
			continue
		}
		reviewable = append(reviewable, file)
	}
	return reviewable
}

// isBinary is a heuristic: known binary extension, or a NUL byte within the
// first 8000 bytes.
func isBinary(file dtos.PackageFile) bool {
	if binaryExtensions[strings.ToLower(filepath.Ext(file.Path))] {
		return true
	}
	probe := file.Content
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return strings.ContainsRune(probe, '\x00')
}

var scriptExtensions = map[string]bool{
	".sh": true, ".bash": true, ".zsh": true, ".py": true, ".rb": true,
	".js": true, ".mjs": true, ".cjs": true, ".ts": true, ".pl": true,
	".ps1": true, ".bat": true, ".cmd": true, ".php": true,
}

var mdExtensions = map[string]bool{
	".md": true, ".markdown": true, ".mdx": true, ".txt": true, ".rst": true,
}

// classify assigns a file to one of the two rule classes. The structural
// parser's content type wins; the extension is the fallback. Files that fit
// neither class (data files, configs) are not scanned.
func classify(file dtos.PackageFile) (FileClass, bool) {
	switch file.ContentType {
	case dtos.ContentTypeMarkdown:
		return FileClassMD, true
	case dtos.ContentTypeScript:
		return FileClassScripts, true
	}

	ext := strings.ToLower(filepath.Ext(file.Path))
	if mdExtensions[ext] {
		return FileClassMD, true
	}
	if scriptExtensions[ext] {
		return FileClassScripts, true
	}
	return "", false
}
