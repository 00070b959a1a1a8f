package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	grpcAdapter "github.com/andrescamacho/colony-go/internal/adapters/grpc"
	"github.com/andrescamacho/colony-go/internal/application/colony/commands"
	"github.com/andrescamacho/colony-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colony-go/internal/application/colony/queries"
)

// NewStructureCommand creates the structure command with subcommands
func NewStructureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "structure",
		Aliases: []string{"structures"},
		Short:   "Manage structures and their storage",
		Long: `List, inspect, place and remove structures.

Examples:
  colonyctl structure list --kind stockpile
  colonyctl structure show depot
  colonyctl structure place --kind stockpile --key east --x 10 --y 4 --capacity wood=100,stone=50
  colonyctl structure remove east`,
	}

	cmd.AddCommand(newStructureListCommand())
	cmd.AddCommand(newStructureShowCommand())
	cmd.AddCommand(newStructurePlaceCommand())
	cmd.AddCommand(newStructureRemoveCommand())

	return cmd
}

func newStructureListCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List structures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.ListStructures(ctx, &queries.ListStructuresQuery{Kind: kind})
				if err != nil {
					return err
				}
				return render(cmd, resp.Structures, func(tw *tabwriter.Writer) {
					if len(resp.Structures) == 0 {
						fmt.Fprintln(tw, "No structures")
						return
					}
					fmt.Fprintln(tw, "KEY\tKIND\tFOOTPRINT\tSTORED\tASSIGNED")
					for _, s := range resp.Structures {
						fmt.Fprintf(tw, "%s\t%s\t(%d,%d) %dx%d\t%s\t%s\n",
							s.Key, s.Kind, s.X, s.Y, s.Width, s.Height, formatAmounts(s.Stored), orDash(s.AssignedTo))
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only list structures of this kind")
	return cmd
}

func newStructureShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <key>",
		Short: "Show a structure's stored resources and capacities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.StructureResources(ctx, &queries.StructureResourcesQuery{Key: args[0]})
				if err != nil {
					return err
				}
				return render(cmd, resp.Structure, func(tw *tabwriter.Writer) {
					printStructure(tw, resp.Structure)
				})
			})
		},
	}
}

func printStructure(tw *tabwriter.Writer, s dtos.StructureDTO) {
	fmt.Fprintf(tw, "Key:\t%s\n", s.Key)
	fmt.Fprintf(tw, "Kind:\t%s\n", s.Kind)
	fmt.Fprintf(tw, "Footprint:\t(%d,%d) %dx%d\n", s.X, s.Y, s.Width, s.Height)
	fmt.Fprintf(tw, "Assigned to:\t%s\n", orDash(s.AssignedTo))
	fmt.Fprintln(tw, "\nRESOURCE\tSTORED\tCAPACITY")
	for _, k := range sortedKeys(s.Capacity, s.Stored) {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", k, s.Stored[k], s.Capacity[k])
	}
}

func newStructurePlaceCommand() *cobra.Command {
	var (
		kind, key     string
		x, y          int
		width, height int
		capacity      map[string]int
		initial       map[string]int
	)

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place a structure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := toAmounts("capacity", capacity)
			if err != nil {
				return err
			}
			stock, err := toAmounts("initial", initial)
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.PlaceStructure(ctx, &commands.PlaceStructureCommand{
					Kind:     kind,
					Key:      key,
					X:        x,
					Y:        y,
					Width:    width,
					Height:   height,
					Capacity: caps,
					Initial:  stock,
				})
				if err != nil {
					return err
				}
				if outputFormat == "json" {
					return printJSON(cmd.OutOrStdout(), resp.Structure)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Placed %s %s at (%d,%d)\n", resp.Structure.Kind, resp.Structure.Key, resp.Structure.X, resp.Structure.Y)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Structure kind (required)")
	cmd.Flags().StringVar(&key, "key", "", "Structure key; generated when empty")
	cmd.Flags().IntVar(&x, "x", 0, "Top-left tile column")
	cmd.Flags().IntVar(&y, "y", 0, "Top-left tile row")
	cmd.Flags().IntVar(&width, "width", 1, "Footprint width in tiles")
	cmd.Flags().IntVar(&height, "height", 1, "Footprint height in tiles")
	cmd.Flags().StringToIntVar(&capacity, "capacity", nil, "Per-resource capacity, e.g. wood=100,stone=50")
	cmd.Flags().StringToIntVar(&initial, "initial", nil, "Initial stock, e.g. wood=10")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func newStructureRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.RemoveStructure(ctx, &commands.RemoveStructureCommand{Key: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", resp.Key)
				return nil
			})
		},
	}
}

// NewAssignCommand creates the assign command
func NewAssignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <worker-id> <structure-key>",
		Short: "Bind a worker to a structure",
		Long: `Bind a worker to a structure. The worker deposits into and harvests from
its structure before any other. A worker or structure has at most one binding.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.AssignWorker(ctx, &commands.AssignWorkerCommand{WorkerID: args[0], StructureKey: args[1]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s assigned to %s\n", resp.WorkerID, resp.StructureKey)
				return nil
			})
		},
	}
}

// NewUnassignCommand creates the unassign command
func NewUnassignCommand() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "unassign <worker-id>",
		Short: "Release a worker's structure binding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.UnassignWorker(ctx, &commands.UnassignWorkerCommand{WorkerID: args[0], Reason: reason})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s unassigned\n", resp.WorkerID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "manual", "Reason recorded with the release")
	return cmd
}
