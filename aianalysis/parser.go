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
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/skillgate-dev/skillgate/dtos"
)

//go:embed response_schema.json
var responseSchemaJSON string

var (
	schemaOnce     sync.Once
	responseSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(responseSchemaJSON))
		if err != nil {
			schemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("response_schema.json", doc); err != nil {
			schemaErr = err
			return
		}
		responseSchema, schemaErr = compiler.Compile("response_schema.json")
	})
	return responseSchema, schemaErr
}

type modelFinding struct {
	Category       string        `json:"category"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Severity       dtos.Severity `json:"severity"`
	File           string        `json:"file"`
	Line           int           `json:"line"`
	CodeSnippet    string        `json:"codeSnippet"`
	Recommendation string        `json:"recommendation"`
}

type modelResponse struct {
	RiskLevel       dtos.RiskLevel `json:"riskLevel"`
	Confidence      int            `json:"confidence"`
	Findings        []modelFinding `json:"findings"`
	Recommendations []string       `json:"recommendations"`
}

// ParseResponse turns a raw model reply into a report. The reply has to be
// a JSON object matching the embedded schema, optionally wrapped in a
// markdown code fence. Anything else is a parse error.
func ParseResponse(raw string) (dtos.AISecurityReportDTO, error) {
	raw = stripCodeFence(raw)

	schema, err := compiledSchema()
	if err != nil {
		return dtos.AISecurityReportDTO{}, errors.Wrap(err, "could not compile response schema")
	}

	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return dtos.AISecurityReportDTO{}, errors.Wrap(err, "model reply is not valid json")
	}
	if err := schema.Validate(instance); err != nil {
		return dtos.AISecurityReportDTO{}, errors.Wrap(err, "model reply does not match the response schema")
	}

	var parsed modelResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return dtos.AISecurityReportDTO{}, errors.Wrap(err, "could not unmarshal model reply")
	}

	findings := make([]dtos.Finding, 0, len(parsed.Findings))
	for i, f := range parsed.Findings {
		findings = append(findings, dtos.Finding{
			ID:             fmt.Sprintf("ai-finding-%d", i+1),
			Category:       f.Category,
			Title:          f.Title,
			Description:    f.Description,
			Severity:       f.Severity,
			Source:         dtos.FindingSourceAI,
			File:           f.File,
			Line:           f.Line,
			CodeSnippet:    f.CodeSnippet,
			Recommendation: f.Recommendation,
		})
	}

	return dtos.AISecurityReportDTO{
		Findings:        findings,
		Summary:         dtos.SummarizeFindings(findings),
		RiskLevel:       parsed.RiskLevel,
		Confidence:      parsed.Confidence,
		Recommendations: parsed.Recommendations,
		CreatedAt:       time.Now(),
	}, nil
}

// stripCodeFence removes a surrounding ```json ... ``` fence. Models wrap
// JSON in fences even when told not to.
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}

	raw = strings.TrimPrefix(raw, "```")
	if idx := strings.Index(raw, "\n"); idx >= 0 {
		// drop the language tag line
		raw = raw[idx+1:]
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}
