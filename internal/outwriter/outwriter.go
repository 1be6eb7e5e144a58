// Package outwriter renders coverage results as markdown, text tables, JSON or CSV.
package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/schema"
)

// WriteCoverage outputs the coverage result, dispatching on the configured output format.
func WriteCoverage(result schema.CoverageResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONCoverage(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVCoverage(w, result)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.TextOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCoverageTables(result, cfg, w)
		}, "Wrote table")
	default:
		return PrintComment(RenderComment(result.Total, result.ChangedFiles), cfg)
	}
	return nil
}

// PrintComment writes an already rendered comment to stdout or the configured output file.
func PrintComment(body string, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		_, err := io.WriteString(w, body)
		return err
	}, "Wrote markdown")
}
