package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	grpcAdapter "github.com/andrescamacho/colony-go/internal/adapters/grpc"
	"github.com/andrescamacho/colony-go/internal/application/colony/commands"
)

// NewWorldCommand creates the world command with subcommands
func NewWorldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "world",
		Short: "Maintain the map",
		Long: `Maintenance operations on the map itself.

Examples:
  colonyctl world clear-zone rock-12-4
  colonyctl world respawn --kind tree`,
	}

	cmd.AddCommand(newClearZoneCommand())
	cmd.AddCommand(newRespawnCommand())

	return cmd
}

func newClearZoneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-zone <zone-id>",
		Short: "Remove an obstruction zone and rebuild the grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.ClearZone(ctx, &commands.ClearZoneCommand{ZoneID: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s (grid version %d)\n", resp.ZoneID, resp.GridVersion)
				return nil
			})
		},
	}
}

func newRespawnCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "respawn",
		Short: "Bring destroyed harvestables back at full health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.RespawnHarvestables(ctx, &commands.RespawnHarvestablesCommand{Kind: kind})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Respawned %d harvestables\n", resp.Respawned)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only respawn this harvestable kind")
	return cmd
}
