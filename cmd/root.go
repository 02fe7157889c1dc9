package cmd

import (
	"errors"
	"fmt"
	"os"

	"kindlechess/internal/cli"
	"kindlechess/internal/config"
	"kindlechess/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates a stored token is needed but missing.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

var (
	configPath string
	logLevel   string
	quiet      bool

	// cfg is loaded once in PersistentPreRunE and shared by all subcommands.
	cfg config.Config
)

// rootCmd represents the base command for the kindlechess application.
var rootCmd = &cobra.Command{
	Use:   "kindlechess",
	Short: "Play your Lichess games from the terminal",
	Long: `kindlechess logs in to Lichess with OAuth2 (PKCE), follows the live
stream of one of your games and submits your moves as you type them.

It is small enough to run on an e-reader or any box with a keyboard.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "kindlechess version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var authRequired *cli.AuthRequiredError
	if errors.As(err, &authRequired) {
		return ExitCodeAuthRequired
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

// setup loads the configuration and starts logging. --log-level wins over
// the configured level.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	levelName := cfg.Log.Level
	if logLevel != "" {
		levelName = logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if cfg.Log.File != "" {
		if err := logging.InitForFile(level, cfg.Log.File); err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		return nil
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())
	return nil
}

// skipSetup is used by commands that must work without a valid config.
func skipSetup(cmd *cobra.Command, args []string) {}

// printf prints only if the --quiet flag is not set.
// Use this for progress messages and non-essential output.
func printf(cmd *cobra.Command, format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Directory holding config.yaml, .env and the token")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides log.level")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
