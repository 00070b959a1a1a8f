package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Show daemon configuration and manage colonyctl preferences.

Daemon configuration is loaded from multiple sources with priority:
1. Environment variables (COLONY_* prefix)
2. Config file (colony.yaml)
3. Default values

Preferences are stored in ~/.colony/colonyctl.yaml

Examples:
  colonyctl config show
  colonyctl config set output json
  colonyctl config set default_profession woodcutter
  colonyctl config set socket_path /run/colony.sock`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			handler, err := newUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			prefs, err := handler.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load preferences: %v\n\n", err)
				prefs = &config.UserConfig{}
			}

			fmt.Fprintln(out, "Colony Configuration")
			fmt.Fprintln(out, "====================")

			fmt.Fprintln(out, "Preferences:")
			fmt.Fprintf(out, "  File:               %s\n", handler.GetConfigPath())
			fmt.Fprintf(out, "  Socket:             %s\n", orDash(prefs.SocketPath))
			fmt.Fprintf(out, "  Output:             %s\n", orDash(prefs.Output))
			fmt.Fprintf(out, "  Default profession: %s\n", orDash(prefs.DefaultProfession))

			fmt.Fprintln(out, "\nSimulation:")
			fmt.Fprintf(out, "  Map:                %dx%d (seed %d)\n", cfg.Simulation.Width, cfg.Simulation.Height, cfg.Simulation.Seed)
			fmt.Fprintf(out, "  Frame interval:     %s\n", cfg.Simulation.FrameInterval)
			fmt.Fprintf(out, "  Path budget:        %d iterations/tick\n", cfg.Simulation.PathIterationsPerTick)
			fmt.Fprintf(out, "  Professions:        %s\n", cfg.Simulation.ProfessionsPath)
			fmt.Fprintf(out, "  Scenario:           %s\n", orDash(cfg.Simulation.ScenarioPath))
			fmt.Fprintf(out, "  Autosave:           %s\n", cfg.Simulation.AutosaveInterval)

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:               %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:                %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:               %s\n", cfg.Database.Path)
			default:
				fmt.Fprintf(out, "  Host:               %s:%d\n", cfg.Database.Host, cfg.Database.Port)
				fmt.Fprintf(out, "  Database:           %s\n", cfg.Database.Name)
				fmt.Fprintf(out, "  User:               %s\n", cfg.Database.User)
			}

			fmt.Fprintln(out, "\nDaemon:")
			fmt.Fprintf(out, "  Socket Path:        %s\n", cfg.Daemon.SocketPath)
			fmt.Fprintf(out, "  PID File:           %s\n", cfg.Daemon.PIDFile)
			fmt.Fprintf(out, "  Restart on panic:   %t (max %d)\n", cfg.Daemon.RestartPolicy.Enabled, cfg.Daemon.RestartPolicy.MaxAttempts)

			fmt.Fprintln(out, "\nHTTP:")
			fmt.Fprintf(out, "  Enabled:            %t\n", cfg.Metrics.Enabled)
			fmt.Fprintf(out, "  Address:            %s:%d\n", cfg.Metrics.Host, cfg.Metrics.Port)

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:              %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:             %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:             %s\n", cfg.Logging.Output)

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Daemon config file (default: search colony.yaml)")
	return cmd
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a preference (socket_path, output, default_profession)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := newUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", args[0], args[1])
			return nil
		},
	}
}
