package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	grpcAdapter "github.com/andrescamacho/colony-go/internal/adapters/grpc"
)

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		Long:  `Verify that the daemon is running and responsive.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				serving, err := c.Health(ctx)
				if err != nil {
					return fmt.Errorf("health check failed: %w", err)
				}
				if !serving {
					return fmt.Errorf("daemon is not serving")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Daemon is healthy")
				return nil
			})
		},
	}

	return cmd
}

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the running colony",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *grpcAdapter.DaemonClient) error {
				resp, err := c.Status(ctx)
				if err != nil {
					return err
				}
				s := resp.Status
				return render(cmd, s, func(tw *tabwriter.Writer) {
					fmt.Fprintf(tw, "Lifecycle:\t%s\n", s.Lifecycle)
					fmt.Fprintf(tw, "Uptime:\t%s\n", s.Uptime)
					fmt.Fprintf(tw, "Ticks:\t%d\n", s.Ticks)
					fmt.Fprintf(tw, "Workers:\t%d\n", s.Workers)
					fmt.Fprintf(tw, "Structures:\t%d\n", s.Structures)
					fmt.Fprintf(tw, "Assignments:\t%d\n", s.Assignments)
					fmt.Fprintf(tw, "Pending paths:\t%d\n", s.PendingPath)
					fmt.Fprintf(tw, "Timers:\t%d\n", s.Timers)
					fmt.Fprintf(tw, "Grid version:\t%d\n", s.GridVersion)
					fmt.Fprintf(tw, "Stock:\t%s\n", formatAmounts(s.Stock))
				})
			})
		},
	}
}
