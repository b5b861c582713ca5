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
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/scanner"
)

// CompletionClient is what the analyzer needs from the model transport.
// Satisfied by *Client, replaced by a fake in tests.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
	ModelID() string
}

type Analyzer struct {
	client  CompletionClient
	catalog scanner.Catalog
}

func NewAnalyzer(client CompletionClient, catalog scanner.Catalog) *Analyzer {
	return &Analyzer{client: client, catalog: catalog}
}

// Analyze runs one semantic review over the package. On any failure it
// returns an unknown-risk report together with the error: the caller
// records the failure and keeps going, and the unknown level makes the
// combined assessment render a warning instead of a false "safe".
func (a *Analyzer) Analyze(ctx context.Context, files []dtos.PackageFile) (dtos.AISecurityReportDTO, error) {
	prompt := BuildPrompt(files, a.catalog)

	raw, err := a.client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return unknownReport(), errors.Wrap(err, "ai analysis request failed")
	}

	report, err := ParseResponse(raw)
	if err != nil {
		slog.Warn("discarding unparseable ai analysis reply", "model", a.client.ModelID(), "err", err)
		return unknownReport(), errors.Wrap(err, "ai analysis reply could not be parsed")
	}

	return report, nil
}

func unknownReport() dtos.AISecurityReportDTO {
	return dtos.AISecurityReportDTO{
		Findings:  []dtos.Finding{},
		RiskLevel: dtos.RiskLevelUnknown,
		CreatedAt: time.Now(),
	}
}
