package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoveragePercent(t *testing.T) {
	tests := []struct {
		covered, missed float64
		want            string
	}{
		{0, 0, "0%"},
		{8, 2, "80% (8/10)"},
		{2, 1, "66.67% (2/3)"},
		{1, 2, "33.33% (1/3)"},
		{0, 5, "0% (0/5)"},
		{5, 0, "100% (5/5)"},
		{1, 7, "12.5% (1/8)"},
		{999, 1, "99.9% (999/1000)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CoveragePercent(tt.covered, tt.missed), "covered=%v missed=%v", tt.covered, tt.missed)
	}
}

func TestCoveragePercentZeroOnlyWhenEmpty(t *testing.T) {
	for covered := 0.0; covered < 5; covered++ {
		for missed := 0.0; missed < 5; missed++ {
			got := CoveragePercent(covered, missed)
			if covered+missed == 0 {
				assert.Equal(t, "0%", got)
			} else {
				assert.NotEqual(t, "0%", got)
			}
		}
	}
}

func TestCoverageRatio(t *testing.T) {
	assert.Equal(t, 0.0, CoverageRatio(0, 0))
	assert.InDelta(t, 80.0, CoverageRatio(8, 2), 1e-9)
}

func TestSumCounters(t *testing.T) {
	files := []FileCoverage{
		{Path: "a", Counters: map[CounterType]CounterCoverage{LineCounter: {Covered: 1, Missed: 1}}},
		{Path: "b", Counters: map[CounterType]CounterCoverage{LineCounter: {Covered: 9, Missed: 89}}},
	}
	covered, missed := SumCounters(files, LineCounter)
	assert.Equal(t, 10.0, covered)
	assert.Equal(t, 90.0, missed)

	covered, missed = SumCounters(files, MethodCounter)
	assert.Zero(t, covered)
	assert.Zero(t, missed)
}
