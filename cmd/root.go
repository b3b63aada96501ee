package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soarcollab/sandbox-runner/internal/config"
	"github.com/soarcollab/sandbox-runner/internal/daytona"
	"github.com/soarcollab/sandbox-runner/internal/logx"
	"github.com/soarcollab/sandbox-runner/internal/output"
	"github.com/soarcollab/sandbox-runner/internal/sandbox"
)

const (
	serviceName = "sandbox-runner"
	apiKeysURL  = "https://app.daytona.io/dashboard/api-keys"
)

var (
	cfgFile   string
	envFile   string
	verbose   bool
	logFormat string

	closeLogger = func() error { return nil }
)

// newProvider is swapped out in tests.
var newProvider = func(cfg *config.Config) sandbox.Provider {
	return daytona.NewClient(
		cfg.APIURL,
		cfg.APIKey,
		daytona.WithTarget(cfg.Target),
		daytona.WithTimeout(cfg.Timeout),
		daytona.WithReadyTimeout(cfg.Timeout),
		daytona.WithUserAgent(serviceName+"/"+rootCmd.Version),
	)
}

// ExitError is a failure that has already been reported to the user.
type ExitError struct {
	Err error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

var errUsage = errors.New("no valid command given")

var rootCmd = &cobra.Command{
	Use:   "sandbox-runner <command>",
	Short: "Run RecordPlatform test suites in Daytona sandboxes",
	Long: `sandbox-runner prepares a pre-warmed Daytona snapshot with every RecordPlatform
dependency cached, then runs the backend and frontend test suites in ephemeral
sandboxes created from it.`,
	Version:           "dev",
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Unknown command: %s\n\n", args[0])
		}
		printUsage(cmd.OutOrStdout())
		return &ExitError{Err: errUsage}
	},
}

// helpCmd replaces cobra's help subcommand so that "help" is treated like any
// other non-command: usage on stdout and a failing exit status.
var helpCmd = &cobra.Command{
	Use:    "help",
	Hidden: true,
	Args:   cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printUsage(cmd.OutOrStdout())
		return &ExitError{Err: errUsage}
	},
}

// Execute runs the root command. The context is cancelled on SIGINT/SIGTERM.
func Execute(version, commit, date string) error {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() { _ = closeLogger() }()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)
	config.Bind(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (default: ~/.config/sandbox-runner/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("api-url", "", "Daytona API address (env DAYTONA_API_URL)")
	rootCmd.PersistentFlags().String("target", "", "Daytona target region (env DAYTONA_TARGET, default \"us\")")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-request timeout (default 60m)")
	rootCmd.PersistentFlags().String("snapshot", "", "Snapshot name (default \""+config.DefaultSnapshotName+"\")")
	rootCmd.PersistentFlags().String("repo-url", "", "Repository cloned into the snapshot")
	rootCmd.PersistentFlags().String("branch", "", "Branch cloned and pulled (default \"main\")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpCommand(helpCmd)

	for _, name := range []string{"api-url", "target", "timeout", "snapshot", "repo-url", "branch"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.DefaultConfigDir())
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("SANDBOX_RUNNER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setup installs the logger and tags the command context with a run id.
func setup(cmd *cobra.Command, args []string) error {
	logCfg := logx.LoadConfig(serviceName)
	if verbose {
		logCfg.Level = logx.ParseLevel("debug")
	}
	if logFormat != "" {
		logCfg.Format = logx.NormalizeFormat(logFormat)
	}
	_, closer, err := logx.Init(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	closeLogger = closer

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logx.WithRunID(ctx, logx.NewRunID()))
	return nil
}

// loadConfig resolves the configuration for a command that talks to the
// provider. A missing API key is reported here, before any remote call.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(viper.GetViper())
	if errors.Is(err, config.ErrMissingAPIKey) {
		printMissingKey(cmd.OutOrStdout())
		return nil, &ExitError{Err: err}
	}
	if err != nil {
		return nil, err
	}
	logx.LoggerWithRunID(cmd.Context()).Debug("configuration loaded",
		"component", "cmd",
		"target", cfg.Target,
		"api_url", cfg.APIURL,
		"snapshot", cfg.SnapshotName,
		"timeout", cfg.Timeout.Round(time.Second),
	)
	return cfg, nil
}

func printMissingKey(w io.Writer) {
	fmt.Fprintf(w, "❌ %s environment variable is required\n", config.EnvAPIKey)
	fmt.Fprintln(w, "\nGet your API key from: "+apiKeysURL)
	fmt.Fprintf(w, "Then: export %s=\"your-key-here\"\n", config.EnvAPIKey)
}

// reportFailure prints a failed operation, with a hint when the API rejected
// the key.
func reportFailure(w io.Writer, action string, err error) {
	output.WriteError(w, action, err)
	if daytona.IsUnauthorized(err) {
		fmt.Fprintf(w, "\nThe API key was rejected. Check %s.\n", config.EnvAPIKey)
		fmt.Fprintln(w, "Get your API key from: "+apiKeysURL)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "RecordPlatform Daytona Test Runner")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sandbox-runner create-snapshot  - Create optimized snapshot")
	fmt.Fprintln(w, "  sandbox-runner run-tests        - Run tests from snapshot")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Prerequisites:")
	fmt.Fprintf(w, "  export %s=\"your-key\"\n", config.EnvAPIKey)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'sandbox-runner --help' for all flags.")
}
