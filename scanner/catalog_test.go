package scanner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/scanner"
)

const overlayRules = `
rules:
  - id: credentials-hardcoded-secret
    category: Credentials
    name: Hardcoded credential
    severity: low
    appliesTo: [scripts]
    pattern: "password ="
  - id: org-internal-hostname
    category: SSRF
    name: Internal hostname reference
    severity: medium
    appliesTo: [md, scripts]
    pattern: "corp.internal"
`

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadCatalogFileOverlaysDefaults(t *testing.T) {
	catalog, err := scanner.LoadCatalogFile(writeRulesFile(t, overlayRules))
	require.NoError(t, err)

	defaults := scanner.DefaultCatalog()
	assert.Len(t, catalog.Rules, len(defaults.Rules)+1)

	var replaced, added *scanner.Rule
	for i := range catalog.Rules {
		switch catalog.Rules[i].ID {
		case "credentials-hardcoded-secret":
			replaced = &catalog.Rules[i]
		case "org-internal-hostname":
			added = &catalog.Rules[i]
		}
	}

	require.NotNil(t, replaced)
	assert.Equal(t, dtos.SeverityLow, replaced.Severity)
	assert.Equal(t, "password =", replaced.Pattern)

	require.NotNil(t, added)
	assert.Equal(t, []scanner.FileClass{scanner.FileClassMD, scanner.FileClassScripts}, added.AppliesTo)
}

func TestLoadCatalogFileRejectsMissingFile(t *testing.T) {
	_, err := scanner.LoadCatalogFile("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestOverlayedCatalogStillCompiles(t *testing.T) {
	catalog, err := scanner.LoadCatalogFile(writeRulesFile(t, overlayRules))
	require.NoError(t, err)

	s, err := scanner.New(catalog, scanner.DefaultScorePolicy())
	require.NoError(t, err)

	report := s.Scan([]dtos.PackageFile{
		{Path: "notes.md", Content: "see corp.internal for details\n", ContentType: dtos.ContentTypeMarkdown},
	})
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "Internal hostname reference", report.Findings[0].Title)
}
