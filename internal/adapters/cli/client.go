package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/status"

	grpcAdapter "github.com/andrescamacho/colony-go/internal/adapters/grpc"
)

// withClient connects to the daemon, runs fn under the --timeout deadline
// and closes the connection
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *grpcAdapter.DaemonClient) error) error {
	client, err := grpcAdapter.NewDaemonClient(socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := fn(ctx, client); err != nil {
		return describe(err)
	}
	return nil
}

// describe strips the gRPC envelope so users see the daemon's message
func describe(err error) error {
	if s, ok := status.FromError(err); ok {
		return fmt.Errorf("daemon error (%s): %s", s.Code(), s.Message())
	}
	return err
}

// printJSON writes v indented
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render prints v as JSON when requested, otherwise runs table
func render(cmd *cobra.Command, v any, table func(tw *tabwriter.Writer)) error {
	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return printJSON(out, v)
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

// formatAmounts renders a resource map as "stone=3 wood=5", sorted by kind
func formatAmounts(m map[string]uint32) string {
	if len(m) == 0 {
		return "-"
	}
	kinds := make([]string, 0, len(m))
	for k := range m {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}

// toAmounts converts --capacity style flags, rejecting negative values
func toAmounts(flag string, in map[string]int) (map[string]uint32, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]uint32, len(in))
	for k, v := range in {
		if v < 0 {
			return nil, fmt.Errorf("--%s %s: amount cannot be negative", flag, k)
		}
		out[k] = uint32(v)
	}
	return out, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// sortedKeys returns the union of the maps' keys in order
func sortedKeys(maps ...map[string]uint32) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range maps {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}

// maskPassword hides the password of a connection URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
