package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter renders one row per test stage.
type TableFormatter struct{}

func (f *TableFormatter) Write(w io.Writer, data interface{}) error {
	report, ok := toReport(data).(Report)
	if !ok {
		return fmt.Errorf("table output does not support %T", data)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"STAGE", "RESULT", "COVERAGE", "FILE"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	table.Append(stageRow("backend", report.Backend))
	table.Append(stageRow("frontend", report.Frontend))
	table.Render()

	_, err := fmt.Fprintf(w, "\nDuration: %ds\n", report.DurationSeconds)
	return err
}

func stageRow(name string, s StageReport) []string {
	coverage := s.Coverage
	if coverage == "" {
		coverage = "-"
	}
	return []string{name, passedLabel(s.Passed), coverage, s.CoverageFile}
}

func passedLabel(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}
