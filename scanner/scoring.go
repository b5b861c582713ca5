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

import "github.com/skillgate-dev/skillgate/dtos"

// ScorePolicy holds the per-severity penalties and the score-to-risk-level
// thresholds. Both are configuration data so organizations can adjust the
// policy without a redeploy.
type ScorePolicy struct {
	CriticalPenalty int `mapstructure:"criticalPenalty" yaml:"criticalPenalty"`
	HighPenalty     int `mapstructure:"highPenalty" yaml:"highPenalty"`
	MediumPenalty   int `mapstructure:"mediumPenalty" yaml:"mediumPenalty"`
	LowPenalty      int `mapstructure:"lowPenalty" yaml:"lowPenalty"`

	// score >= LowThreshold -> low, >= MediumThreshold -> medium,
	// >= HighThreshold -> high, below -> critical
	LowThreshold    int `mapstructure:"lowThreshold" yaml:"lowThreshold"`
	MediumThreshold int `mapstructure:"mediumThreshold" yaml:"mediumThreshold"`
	HighThreshold   int `mapstructure:"highThreshold" yaml:"highThreshold"`
}

func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		CriticalPenalty: 25,
		HighPenalty:     15,
		MediumPenalty:   8,
		LowPenalty:      3,

		LowThreshold:    90,
		MediumThreshold: 70,
		HighThreshold:   50,
	}
}

// Score reduces a finding summary to 0..100. Penalties apply once per
// finding, info findings are free.
func (p ScorePolicy) Score(summary dtos.FindingSummary) int {
	score := 100 -
		p.CriticalPenalty*summary.Critical -
		p.HighPenalty*summary.High -
		p.MediumPenalty*summary.Medium -
		p.LowPenalty*summary.Low

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// RiskLevelForScore is a pure, monotone step function of the score.
func (p ScorePolicy) RiskLevelForScore(score int) dtos.RiskLevel {
	switch {
	case score >= p.LowThreshold:
		return dtos.RiskLevelLow
	case score >= p.MediumThreshold:
		return dtos.RiskLevelMedium
	case score >= p.HighThreshold:
		return dtos.RiskLevelHigh
	default:
		return dtos.RiskLevelCritical
	}
}
