package cmd

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/soarcollab/sandbox-runner/internal/output"
	"github.com/soarcollab/sandbox-runner/internal/runner"
)

var (
	outputFormat string
	coverageDir  string
)

var errTestsFailed = errors.New("tests failed")

var runTestsCmd = &cobra.Command{
	Use:   "run-tests",
	Short: "Run tests from snapshot",
	Long: `Create an ephemeral sandbox from the snapshot, pull the latest changes, run the
backend and frontend test suites and report the result. The exit status is 0
only if both suites pass.`,
	Example: `  # Run both suites
  sandbox-runner run-tests

  # Machine-readable result and local coverage reports
  sandbox-runner run-tests --output json --coverage-dir ./coverage`,
	Args: cobra.NoArgs,
	RunE: runTests,
}

func init() {
	rootCmd.AddCommand(runTestsCmd)

	runTestsCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Summary format (text, table, json, yaml)")
	runTestsCmd.Flags().StringVar(&coverageDir, "coverage-dir", "", "Directory to save downloaded coverage reports")
}

func runTests(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	format := output.ParseFormat(outputFormat)
	stdout := cmd.OutOrStdout()
	// Keep stdout parseable for machine formats.
	var progress io.Writer = stdout
	if format != output.FormatText {
		progress = cmd.ErrOrStderr()
	}

	r := runner.New(newProvider(cfg), cfg, progress, runner.Options{CoverageDir: coverageDir})
	res, err := r.RunTests(cmd.Context())
	if err != nil {
		reportFailure(progress, "Test execution", err)
		return &ExitError{Err: err}
	}

	if err := output.NewSummaryFormatter(format, stdout).Write(stdout, res); err != nil {
		return err
	}
	if res.ExitCode() != 0 {
		return &ExitError{Err: errTestsFailed}
	}
	return nil
}
