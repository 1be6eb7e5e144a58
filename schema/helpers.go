package schema

import (
	"fmt"
	"math"
	"strconv"
)

// CoveragePercent formats a covered/missed pair as "<pct>% (<covered>/<total>)".
// The percentage is rounded to two decimals and printed without trailing zeros,
// so 8 of 10 renders as "80% (8/10)". A zero total renders as "0%".
func CoveragePercent(covered, missed float64) string {
	total := covered + missed
	if total == 0 {
		return "0%"
	}
	pct := math.Round(covered/total*10000) / 100
	return fmt.Sprintf("%s%% (%s/%s)", formatNumber(pct), formatCount(covered), formatCount(total))
}

// CoverageRatio returns covered/(covered+missed) as a percentage, or 0 for a zero total.
func CoverageRatio(covered, missed float64) float64 {
	total := covered + missed
	if total == 0 {
		return 0
	}
	return covered / total * 100
}

// formatNumber prints a float with the shortest representation that round-trips.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatCount prints counter sums as integers; fractional sums keep their decimals.
func formatCount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return formatNumber(v)
}

// SumCounters adds the covered/missed values of the given counter type across files.
func SumCounters(files []FileCoverage, counterType CounterType) (covered, missed float64) {
	for _, f := range files {
		c := f.Counters[counterType]
		covered += c.Covered
		missed += c.Missed
	}
	return covered, missed
}
