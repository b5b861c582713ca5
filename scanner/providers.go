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
	"log/slog"
	"os"

	"go.uber.org/fx"

	"github.com/skillgate-dev/skillgate/shared"
)

// CatalogFromEnv loads the rule catalog, overlaying operator rules from
// SCANNER_RULES_FILE when set.
func CatalogFromEnv() Catalog {
	path := os.Getenv("SCANNER_RULES_FILE")
	if path == "" {
		return DefaultCatalog()
	}

	catalog, err := LoadCatalogFile(path)
	if err != nil {
		slog.Error("could not load scanner rules file, falling back to the built-in catalog", "path", path, "err", err)
		return DefaultCatalog()
	}
	slog.Info("loaded operator scanner rules", "path", path, "rules", len(catalog.Rules))
	return catalog
}

func newScanner(catalog Catalog) (*Scanner, error) {
	return New(catalog, DefaultScorePolicy())
}

var Module = fx.Options(
	fx.Provide(CatalogFromEnv),
	fx.Provide(fx.Annotate(newScanner, fx.As(new(shared.PatternScanner)))),
)
