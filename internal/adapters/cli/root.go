package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
)

var (
	// Global flags
	socketPath   string
	outputFormat string
	timeout      time.Duration
	verbose      bool

	// Overridden in tests to keep preferences out of the real home directory
	newUserConfigHandler = config.NewUserConfigHandler
)

const defaultSocketPath = "/tmp/colony-daemon.sock"

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "colonyctl",
		Short: "colonyctl - Inspect and steer a running colony daemon",
		Long: `colonyctl talks to the colony daemon over its Unix socket.

Examples:
  colonyctl status
  colonyctl worker list --profession woodcutter
  colonyctl worker spawn --profession hauler --x 4 --y 7 --assign depot
  colonyctl structure show depot
  colonyctl assign hauler-1a2b3c4d depot
  colonyctl state save
  colonyctl state history --owner-type structure --owner-key depot`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyPreferences(cmd)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "",
		"Path to daemon Unix socket (default from preferences, $COLONY_DAEMON_SOCKET_PATH or "+defaultSocketPath+")")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "",
		"Output format: table or json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second,
		"Deadline for each daemon call")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewWorkerCommand())
	rootCmd.AddCommand(NewStructureCommand())
	rootCmd.AddCommand(NewAssignCommand())
	rootCmd.AddCommand(NewUnassignCommand())
	rootCmd.AddCommand(NewWorldCommand())
	rootCmd.AddCommand(NewStateCommand())

	return rootCmd
}

// applyPreferences fills unset global flags from the user config file.
// Flags given on the command line always win.
func applyPreferences(cmd *cobra.Command) error {
	if socketPath != "" && outputFormat != "" {
		return validateOutput()
	}

	prefs := &config.UserConfig{}
	if handler, err := newUserConfigHandler(); err == nil {
		if loaded, err := handler.Load(); err == nil {
			prefs = loaded
		} else if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
	}

	if socketPath == "" {
		socketPath = resolveSocketPath(prefs)
	}
	if outputFormat == "" {
		outputFormat = prefs.Output
	}
	if outputFormat == "" {
		outputFormat = "table"
	}
	return validateOutput()
}

func resolveSocketPath(prefs *config.UserConfig) string {
	if prefs != nil && prefs.SocketPath != "" {
		return prefs.SocketPath
	}
	if path := os.Getenv("COLONY_DAEMON_SOCKET_PATH"); path != "" {
		return path
	}
	return defaultSocketPath
}

func validateOutput() error {
	if outputFormat != "table" && outputFormat != "json" {
		return fmt.Errorf("--output must be table or json, got %q", outputFormat)
	}
	return nil
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
