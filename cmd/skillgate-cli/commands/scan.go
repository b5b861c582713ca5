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

package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/scanner"
)

func NewScanCommand() *cobra.Command {
	scanCmd := cobra.Command{
		Use:   "scan <directory>",
		Short: "Scan a local skill package for security findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rulesFile, _ := cmd.Flags().GetString("rules")

			catalog := scanner.DefaultCatalog()
			if rulesFile != "" {
				var err error
				catalog, err = scanner.LoadCatalogFile(rulesFile)
				if err != nil {
					return errors.Wrap(err, "could not load rules file")
				}
			}

			files, err := collectPackageFiles(args[0])
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return errors.Errorf("no files found in %s", args[0])
			}

			s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
			s.Suffix = fmt.Sprintf(" Scanning %d files", len(files))
			s.Start()

			sc, err := scanner.New(catalog, scanner.DefaultScorePolicy())
			if err != nil {
				s.Stop()
				return err
			}
			report := sc.Scan(files)
			s.Stop()

			output, _ := cmd.Flags().GetString("output")
			if output == "yaml" {
				encoded, err := yaml.Marshal(report)
				if err != nil {
					return errors.Wrap(err, "could not encode report")
				}
				fmt.Fprint(cmd.OutOrStdout(), string(encoded))
			} else {
				printReport(cmd, report)
			}

			if report.RiskLevel == dtos.RiskLevelCritical || report.RiskLevel == dtos.RiskLevelHigh {
				os.Exit(1)
			}
			return nil
		},
	}
	scanCmd.Flags().String("rules", "", "path to a yaml rules file overlaying the builtin catalog")
	scanCmd.Flags().StringP("output", "o", "text", "output format: text or yaml")
	return &scanCmd
}

func collectPackageFiles(dir string) ([]dtos.PackageFile, error) {
	var files []dtos.PackageFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "could not read %s", path)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, dtos.PackageFile{
			Path:        filepath.ToSlash(rel),
			Content:     string(content),
			ContentType: classify(rel),
		})
		return nil
	})
	return files, err
}

func classify(path string) dtos.ContentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return dtos.ContentTypeMarkdown
	case ".sh", ".bash":
		return dtos.ContentTypeScript
	default:
		return dtos.ContentTypeOther
	}
}

func printReport(cmd *cobra.Command, report dtos.SecurityReportDTO) {
	out := cmd.OutOrStdout()

	for _, finding := range report.Findings {
		fmt.Fprintf(out, "[%s] %s: %s\n", strings.ToUpper(string(finding.Severity)), finding.Category, finding.Title)
		if finding.File != "" {
			fmt.Fprintf(out, "        %s:%d\n", finding.File, finding.Line)
		}
		if finding.Recommendation != "" {
			fmt.Fprintf(out, "        recommendation: %s\n", finding.Recommendation)
		}
	}

	fmt.Fprintf(out, "\nfindings: %d critical, %d high, %d medium, %d low\n",
		report.Summary.Critical, report.Summary.High, report.Summary.Medium, report.Summary.Low)
	fmt.Fprintf(out, "score: %d/100\n", report.Score)
	fmt.Fprintf(out, "risk level: %s\n", report.RiskLevel)
}
