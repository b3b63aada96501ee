package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soarcollab/sandbox-runner/internal/daytona"
	"github.com/soarcollab/sandbox-runner/internal/runner"
)

var keepOnFailure bool

var createSnapshotCmd = &cobra.Command{
	Use:   "create-snapshot",
	Short: "Create optimized snapshot",
	Long: `Create a sandbox from the base image, clone the repository, install and build
every sub-project's dependencies, and save the result as a reusable snapshot.`,
	Example: `  # Build the default snapshot
  sandbox-runner create-snapshot

  # Keep the build sandbox around when the build fails
  sandbox-runner create-snapshot --keep-on-failure`,
	Args: cobra.NoArgs,
	RunE: runCreateSnapshot,
}

func init() {
	rootCmd.AddCommand(createSnapshotCmd)

	createSnapshotCmd.Flags().String("image", "", "Base image for the build sandbox (default \"docker:28.3.3-dind\")")
	createSnapshotCmd.Flags().BoolVar(&keepOnFailure, "keep-on-failure", false, "Do not delete the build sandbox if preparation fails")
	_ = viper.BindPFlag("image", createSnapshotCmd.Flags().Lookup("image"))
}

func runCreateSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	r := runner.New(newProvider(cfg), cfg, cmd.OutOrStdout(), runner.Options{
		KeepOnFailure: keepOnFailure,
	})
	if err := r.CreateSnapshot(cmd.Context()); err != nil {
		reportFailure(cmd.OutOrStdout(), "Snapshot creation", err)
		if daytona.IsConflict(err) {
			fmt.Fprintf(cmd.OutOrStdout(), "\nSnapshot '%s' already exists. Delete it or pass --snapshot with a new name.\n", cfg.SnapshotName)
		}
		return &ExitError{Err: err}
	}
	return nil
}
