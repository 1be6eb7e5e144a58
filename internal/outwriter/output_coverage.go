package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeCoverageTables prints the human-readable tables with grade labels.
func writeCoverageTables(result schema.CoverageResult, cfg *contract.Config, w io.Writer) error {
	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}

	total := tablewriter.NewWriter(w)
	total.Header([]string{"Type", "Coverage", "Label"})
	total.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	var rows [][]string
	for _, r := range result.Total {
		rows = append(rows, []string{string(r.Type), r.Coverage, label(r.Covered, r.Missed)})
	}
	if err := total.Bulk(rows); err != nil {
		return err
	}
	if err := total.Render(); err != nil {
		return err
	}

	if len(result.ChangedFiles) == 0 {
		_, err := fmt.Fprintln(w, "No changed files with coverage data.")
		return err
	}

	maxPathWidth := GetMaxTablePathWidth(cfg)
	headers := []string{"Path"}
	for _, t := range schema.ChangedFileCounterTypes {
		headers = append(headers, string(t))
	}
	headers = append(headers, "Label")

	files := tablewriter.NewWriter(w)
	files.Header(headers)
	files.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	rows = nil
	for _, f := range result.ChangedFiles {
		row := []string{contract.TruncatePath(f.Path, maxPathWidth)}
		for _, t := range schema.ChangedFileCounterTypes {
			row = append(row, f.Counters[t].Coverage)
		}
		line := f.Counters[schema.LineCounter]
		row = append(row, label(line.Covered, line.Missed))
		rows = append(rows, row)
	}
	if len(result.ChangedFiles) > 1 {
		row := []string{"Summary"}
		for _, t := range schema.ChangedFileCounterTypes {
			covered, missed := schema.SumCounters(result.ChangedFiles, t)
			row = append(row, schema.CoveragePercent(covered, missed))
		}
		covered, missed := schema.SumCounters(result.ChangedFiles, schema.LineCounter)
		row = append(row, label(covered, missed))
		rows = append(rows, row)
	}
	if err := files.Bulk(rows); err != nil {
		return err
	}
	return files.Render()
}

// writeJSONCoverage writes the result as indented JSON.
func writeJSONCoverage(w io.Writer, result schema.CoverageResult) error {
	if result.Total == nil {
		result.Total = []schema.TotalCoverageRow{}
	}
	return writeJSON(w, result)
}

// writeCSVCoverage writes one row per scope and counter type.
// Total rows have the scope "total" and an empty path.
func writeCSVCoverage(w io.Writer, result schema.CoverageResult) error {
	header := []string{"scope", "path", "type", "covered", "missed", "coverage"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range result.Total {
			if err := cw.Write(csvRow("total", "", r.Type, r.Covered, r.Missed, r.Coverage)); err != nil {
				return err
			}
		}
		for _, f := range result.ChangedFiles {
			for _, t := range schema.ChangedFileCounterTypes {
				c := f.Counters[t]
				if err := cw.Write(csvRow("file", f.Path, t, c.Covered, c.Missed, c.Coverage)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func csvRow(scope, path string, t schema.CounterType, covered, missed float64, coverage string) []string {
	return []string{
		scope,
		path,
		string(t),
		strconv.FormatFloat(covered, 'f', -1, 64),
		strconv.FormatFloat(missed, 'f', -1, 64),
		coverage,
	}
}
