package outwriter

import (
	"strings"

	"github.com/huangsam/covpost/schema"
)

// RenderComment renders the pull request comment: the total coverage table and,
// when files is non-empty, the changed-file table. More than one file adds a bold
// Summary row computed from the summed counters.
func RenderComment(total []schema.TotalCoverageRow, files []schema.FileCoverage) string {
	var sb strings.Builder
	writeTotalTable(&sb, total)
	if len(files) > 0 {
		sb.WriteString("\n<br>\n\n")
		writeChangedFilesTable(&sb, files)
	}
	return sb.String()
}

func writeTotalTable(sb *strings.Builder, total []schema.TotalCoverageRow) {
	sb.WriteString("## Total Test Coverage:\n")
	writeRow(sb, "Type", "Coverage")
	writeRow(sb, "---", "---")
	for _, row := range total {
		writeRow(sb, string(row.Type), row.Coverage)
	}
}

func writeChangedFilesTable(sb *strings.Builder, files []schema.FileCoverage) {
	multiple := len(files) > 1
	sb.WriteString("## Changed File")
	if multiple {
		sb.WriteString("s")
	}
	sb.WriteString(" Coverage:\n")

	header := []string{"File name"}
	divider := []string{"---"}
	for _, t := range schema.ChangedFileCounterTypes {
		header = append(header, string(t))
		divider = append(divider, "---")
	}
	writeRow(sb, header...)
	writeRow(sb, divider...)

	for _, f := range files {
		cells := []string{f.Path}
		for _, t := range schema.ChangedFileCounterTypes {
			cells = append(cells, f.Counters[t].Coverage)
		}
		writeRow(sb, cells...)
	}

	if multiple {
		cells := []string{"**Summary**"}
		for _, t := range schema.ChangedFileCounterTypes {
			covered, missed := schema.SumCounters(files, t)
			cells = append(cells, "**"+schema.CoveragePercent(covered, missed)+"**")
		}
		writeRow(sb, cells...)
	}
}

func writeRow(sb *strings.Builder, cells ...string) {
	sb.WriteString("|")
	sb.WriteString(strings.Join(cells, "|"))
	sb.WriteString("|\n")
}
