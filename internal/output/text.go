package output

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/soarcollab/sandbox-runner/internal/runner"
)

const rule = "=================================================="

// TextFormatter prints the human summary of a test run. Decorate adds
// status emoji and is meant for terminals.
type TextFormatter struct {
	Decorate bool
}

func (f *TextFormatter) Write(w io.Writer, data interface{}) error {
	var res runner.TestResults
	switch v := data.(type) {
	case runner.TestResults:
		res = v
	case *runner.TestResults:
		if v == nil {
			return nil
		}
		res = *v
	default:
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}

	var b strings.Builder
	b.WriteString("\n" + rule + "\n")
	b.WriteString("Test Summary:\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Backend: %s\n", f.status(res.BackendPassed))
	fmt.Fprintf(&b, "Frontend: %s\n", f.status(res.FrontendPassed))
	fmt.Fprintf(&b, "Duration: %ds\n", int64(math.Round(res.Duration.Seconds())))
	b.WriteString(rule + "\n")

	if res.BackendCoverage != "" || res.FrontendCoverage != "" {
		b.WriteString("\n")
	}
	if res.BackendCoverage != "" {
		b.WriteString(f.coverageLine("Backend", res.BackendCoverageFile))
	}
	if res.FrontendCoverage != "" {
		b.WriteString(f.coverageLine("Frontend", res.FrontendCoverageFile))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TextFormatter) status(passed bool) string {
	switch {
	case passed && f.Decorate:
		return "✅ PASSED"
	case passed:
		return "PASSED"
	case f.Decorate:
		return "❌ FAILED"
	default:
		return "FAILED"
	}
}

func (f *TextFormatter) coverageLine(stage, file string) string {
	prefix := ""
	if f.Decorate {
		prefix = "📊 "
	}
	if file != "" {
		return fmt.Sprintf("%s%s coverage report downloaded: %s\n", prefix, stage, file)
	}
	return fmt.Sprintf("%s%s coverage report downloaded\n", prefix, stage)
}

// WriteError reports a failed operation, e.g. "❌ Test execution failed: ...".
func WriteError(w io.Writer, action string, err error) {
	fmt.Fprintf(w, "❌ %s failed: %v\n", action, err)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// NewSummaryFormatter returns the formatter for format, decorating the text
// summary when w is a terminal.
func NewSummaryFormatter(format Format, w io.Writer) Formatter {
	if format == FormatText {
		return &TextFormatter{Decorate: IsTerminal(w)}
	}
	return NewFormatter(format)
}
