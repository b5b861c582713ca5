package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/scanner"
)

func TestScoreAppliesPerSeverityPenalties(t *testing.T) {
	policy := scanner.DefaultScorePolicy()

	// 100 - 25 - 2*15 - 8 - 3
	score := policy.Score(dtos.FindingSummary{Critical: 1, High: 2, Medium: 1, Low: 1})
	assert.Equal(t, 34, score)
}

func TestScoreClampsToZero(t *testing.T) {
	policy := scanner.DefaultScorePolicy()

	assert.Equal(t, 0, policy.Score(dtos.FindingSummary{Critical: 5}))
}

func TestScoreIgnoresInfoFindings(t *testing.T) {
	policy := scanner.DefaultScorePolicy()

	assert.Equal(t, 100, policy.Score(dtos.FindingSummary{Info: 7}))
}

func TestRiskLevelThresholds(t *testing.T) {
	policy := scanner.DefaultScorePolicy()

	tests := []struct {
		score    int
		expected dtos.RiskLevel
	}{
		{100, dtos.RiskLevelLow},
		{90, dtos.RiskLevelLow},
		{89, dtos.RiskLevelMedium},
		{70, dtos.RiskLevelMedium},
		{69, dtos.RiskLevelHigh},
		{50, dtos.RiskLevelHigh},
		{49, dtos.RiskLevelCritical},
		{0, dtos.RiskLevelCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, policy.RiskLevelForScore(tt.score), "score %d", tt.score)
	}
}
