package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	grpcAdapter "github.com/andrescamacho/colony-go/internal/adapters/grpc"
	"github.com/andrescamacho/colony-go/internal/application/colony/queries"
)

// NewStateCommand creates the state command with subcommands
func NewStateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Save, restore and audit resource ledgers",
		Long: `Persist resource ledgers to the daemon's database, restore them, and read
the resource change journal.

Examples:
  colonyctl state save
  colonyctl state restore
  colonyctl state history --owner-type structure --owner-key depot --limit 20`,
	}

	cmd.AddCommand(newStateSaveCommand())
	cmd.AddCommand(newStateRestoreCommand())
	cmd.AddCommand(newStateHistoryCommand())

	return cmd
}

func newStateSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Snapshot every ledger now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.SaveState(ctx)
				if err != nil {
					return err
				}
				if outputFormat == "json" {
					return printJSON(cmd.OutOrStdout(), resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %d ledgers (%d journal entries flushed)\n", resp.Ledgers, resp.JournalEntries)
				return nil
			})
		},
	}
}

func newStateRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Load saved ledgers into live owners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.RestoreState(ctx)
				if err != nil {
					return err
				}
				if outputFormat == "json" {
					return printJSON(cmd.OutOrStdout(), resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored %d of %d saved ledgers\n", resp.Restored, resp.Offered)
				return nil
			})
		},
	}
}

func newStateHistoryCommand() *cobra.Command {
	var (
		ownerType string
		ownerKey  string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent resource changes for one owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.ResourceHistory(ctx, &queries.ResourceHistoryQuery{
					OwnerType: ownerType,
					OwnerKey:  ownerKey,
					Limit:     limit,
				})
				if err != nil {
					return err
				}
				return render(cmd, resp.Entries, func(tw *tabwriter.Writer) {
					if len(resp.Entries) == 0 {
						fmt.Fprintln(tw, "No recorded changes")
						return
					}
					fmt.Fprintln(tw, "TIME\tRESOURCE\tPREVIOUS\tNEW\tDELTA")
					for _, e := range resp.Entries {
						fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%+d\n",
							e.At.Format(time.RFC3339), e.Kind, e.Previous, e.New, e.Delta)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&ownerType, "owner-type", "structure", "Owner type: structure or worker")
	cmd.Flags().StringVar(&ownerKey, "owner-key", "", "Structure key or worker ID (required)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show")
	_ = cmd.MarkFlagRequired("owner-key")
	return cmd
}
