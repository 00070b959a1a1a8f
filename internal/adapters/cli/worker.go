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

// NewWorkerCommand creates the worker command with subcommands
func NewWorkerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "worker",
		Aliases: []string{"workers"},
		Short:   "Manage worker agents",
		Long: `List, inspect, spawn and remove worker agents.

Examples:
  colonyctl worker list
  colonyctl worker get woodcutter-1a2b3c4d
  colonyctl worker spawn --profession woodcutter --x 3 --y 3
  colonyctl worker idle woodcutter-1a2b3c4d
  colonyctl worker profession woodcutter-1a2b3c4d hauler
  colonyctl worker remove woodcutter-1a2b3c4d`,
	}

	cmd.AddCommand(newWorkerListCommand())
	cmd.AddCommand(newWorkerGetCommand())
	cmd.AddCommand(newWorkerSpawnCommand())
	cmd.AddCommand(newWorkerRemoveCommand())
	cmd.AddCommand(newWorkerIdleCommand())
	cmd.AddCommand(newWorkerProfessionCommand())

	return cmd
}

func newWorkerListCommand() *cobra.Command {
	var profession string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workers in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.ListWorkers(ctx, &queries.ListWorkersQuery{Profession: profession})
				if err != nil {
					return err
				}
				return render(cmd, resp.Workers, func(tw *tabwriter.Writer) {
					if len(resp.Workers) == 0 {
						fmt.Fprintln(tw, "No workers")
						return
					}
					fmt.Fprintln(tw, "ID\tPROFESSION\tSTATE\tPOSITION\tCARRIED\tASSIGNED")
					for _, w := range resp.Workers {
						fmt.Fprintf(tw, "%s\t%s\t%s\t(%d,%d)\t%s\t%s\n",
							w.ID, w.Profession, w.State, w.X, w.Y, formatAmounts(w.Carried), orDash(w.AssignedTo))
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&profession, "profession", "", "Only list workers of this profession")
	return cmd
}

func newWorkerGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <worker-id>",
		Short: "Show one worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.GetWorker(ctx, &queries.GetWorkerQuery{WorkerID: args[0]})
				if err != nil {
					return err
				}
				return render(cmd, resp.Worker, func(tw *tabwriter.Writer) {
					printWorker(tw, resp.Worker)
				})
			})
		},
	}
}

func printWorker(tw *tabwriter.Writer, w dtos.WorkerDTO) {
	fmt.Fprintf(tw, "ID:\t%s\n", w.ID)
	fmt.Fprintf(tw, "Profession:\t%s\n", w.Profession)
	fmt.Fprintf(tw, "State:\t%s\n", w.State)
	fmt.Fprintf(tw, "Position:\t(%d,%d)\n", w.X, w.Y)
	fmt.Fprintf(tw, "Target:\t%s\n", orDash(w.Target))
	fmt.Fprintf(tw, "Carried:\t%s\n", formatAmounts(w.Carried))
	fmt.Fprintf(tw, "Render hint:\t%s\n", w.Hint)
	fmt.Fprintf(tw, "Assigned to:\t%s\n", orDash(w.AssignedTo))
}

func newWorkerSpawnCommand() *cobra.Command {
	var (
		profession string
		x, y       int
		assignTo   string
	)

	cmd := &cobra.Command{
		Use:   "spawn",
		Short: "Spawn a worker",
		Long: `Spawn a worker at a tile. Without --profession the default_profession
preference is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if profession == "" {
				profession = defaultProfession()
			}
			if profession == "" {
				return fmt.Errorf("--profession is required (or set default_profession with 'colonyctl config set')")
			}
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.SpawnWorker(ctx, &commands.SpawnWorkerCommand{
					Profession: profession,
					X:          x,
					Y:          y,
					AssignTo:   assignTo,
				})
				if err != nil {
					return err
				}
				if outputFormat == "json" {
					return printJSON(cmd.OutOrStdout(), resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Spawned %s (%s) at (%d,%d)\n", resp.WorkerID, profession, x, y)
				if assignTo != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  Assigned to %s\n", assignTo)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&profession, "profession", "", "Profession of the new worker")
	cmd.Flags().IntVar(&x, "x", 0, "Tile column")
	cmd.Flags().IntVar(&y, "y", 0, "Tile row")
	cmd.Flags().StringVar(&assignTo, "assign", "", "Structure key to assign the worker to")
	return cmd
}

func defaultProfession() string {
	handler, err := newUserConfigHandler()
	if err != nil {
		return ""
	}
	prefs, err := handler.Load()
	if err != nil {
		return ""
	}
	return prefs.DefaultProfession
}

func newWorkerRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <worker-id>",
		Short: "Remove a worker and release its assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.RemoveWorker(ctx, &commands.RemoveWorkerCommand{WorkerID: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", resp.WorkerID)
				return nil
			})
		},
	}
}

func newWorkerIdleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "idle <worker-id>",
		Short: "Cancel a worker's current task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.ForceIdle(ctx, &commands.ForceIdleCommand{WorkerID: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is idle\n", resp.WorkerID)
				return nil
			})
		},
	}
}

func newWorkerProfessionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profession <worker-id> <profession>",
		Short: "Change a worker's profession",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.ChangeProfession(ctx, &commands.ChangeProfessionCommand{WorkerID: args[0], Profession: args[1]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now a %s\n", resp.WorkerID, args[1])
				return nil
			})
		},
	}
}
