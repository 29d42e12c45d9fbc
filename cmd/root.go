package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"clipwatch/pkg/clipboard"
	"clipwatch/pkg/completions"
	"clipwatch/pkg/config"
	"clipwatch/pkg/errors"
	"clipwatch/pkg/logger"

	"github.com/spf13/cobra"
)

const (
	unknownValue = "unknown"

	backendSystem = "system"
	backendMemory = "memory"
)

var (
	Version   string
	BuildTime string
	GitCommit string
)

var defaultTimeout = 60 * time.Second
var globalTimeout time.Duration
var outputFormat string
var dryRunFlag bool
var assumeYesFlag bool
var logLevel string
var profileName string

var rootCmd = &cobra.Command{
	Use:   "clipwatch",
	Short: "Clipboard and selection watcher",
	Long: `Watches the system clipboard (and optionally the current text selection)
and prints every new value. Also asks an OpenAI-compatible chat model to
name variables and title text taken from the clipboard.
Reads .env from the working directory and YAML config from the user config directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if globalTimeout <= 0 {
			globalTimeout = defaultTimeout
		}
		if err := config.LoadDotEnv(); err != nil {
			logger.Warn().Err(err).Msg("Failed to load .env")
		}
		// Set log level: explicit flag takes precedence over env var
		level := logLevel
		if !cmd.Flags().Changed("log-level") {
			if envLevel := os.Getenv("CLIPWATCH_LOG_LEVEL"); envLevel != "" {
				level = envLevel
			}
		}
		logger.SetLevel(level)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ver := Version
		if ver == "" {
			ver = "dev"
		}
		bt := BuildTime
		if bt == "" {
			bt = unknownValue
		}
		gc := GitCommit
		if gc == "" {
			gc = unknownValue
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "clipwatch version %s\n", ver)
		fmt.Fprintf(out, "Built: %s\n", bt)
		fmt.Fprintf(out, "Git commit: %s\n", gc)
	},
}

func Execute() {
	// flags of every command exist once all init functions ran
	completions.RegisterCompletions(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		exitCode := errors.HandleReturn(err)
		os.Exit(int(exitCode))
	}
}

func GetContext() (context.Context, context.CancelFunc) {
	timeout := globalTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// loadConfig loads the config file with the --profile flag applied.
func loadConfig() (*config.Config, error) {
	if profileName != "" {
		return config.Load(profileName)
	}
	return config.Load()
}

// openClipboard returns the clipboard for the named backend. The memory
// backend starts empty and never touches the OS.
func openClipboard(backend string) (clipboard.Clipboard, error) {
	switch backend {
	case "", backendSystem:
		return clipboard.NewSystem(), nil
	case backendMemory:
		return clipboard.NewMemory(""), nil
	default:
		return nil, errors.ValidationError(fmt.Sprintf("unknown clipboard backend %q (want %s or %s)", backend, backendSystem, backendMemory))
	}
}

func init() {
	RegisterCommands(rootCmd)

	rootCmd.PersistentFlags().DurationVar(&globalTimeout, "timeout", defaultTimeout, "Timeout for chat completion requests (e.g., 30s, 1m)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", string(FormatTable), "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", false, "Show what would be done without making changes")
	rootCmd.PersistentFlags().BoolVarP(&assumeYesFlag, "yes", "y", false, "Skip confirmation prompts")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Configuration profile to use")
}
