package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/loungewatch/loungewatch/internal/telemetry"
	"github.com/loungewatch/loungewatch/pkg/types"
)

func newOnceCmd(opts *rootOptions) *cobra.Command {
	var watch time.Duration
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Refresh once and print the top venue and the ranking",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			c, err := build(cfg)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runOnce(ctx, c, cmd.OutOrStdout(), watch)
		},
	}
	cmd.Flags().DurationVar(&watch, "watch", 0, "repeat every interval until interrupted (0 runs once)")
	return cmd
}

func runOnce(ctx context.Context, c *components, w io.Writer, watch time.Duration) error {
	for {
		snap, err := c.svc.Refresh(ctx, telemetry.TriggerOnDemand)
		if err != nil {
			fmt.Fprintf(w, "[%s] refresh failed: %v\n",
				time.Now().In(c.agg.Location()).Format("2006-01-02 15:04:05"), err)
		} else {
			printSnapshot(w, snap)
		}
		if watch <= 0 {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(watch):
		}
	}
}

// printSnapshot renders the top venue and the full ranking as a table.
func printSnapshot(w io.Writer, snap *types.Snapshot) {
	ts := snap.CapturedAt.Format("2006-01-02 15:04:05")
	if snap.Top == nil {
		fmt.Fprintf(w, "[%s] No venue data found.\n", ts)
		fmt.Fprintln(w, strings.Repeat("-", 50))
		return
	}
	fmt.Fprintf(w, "[%s] Most women: %s\n", ts, snap.Top.Name)
	fmt.Fprintf(w, "  Women: %d / Men: %d\n\n", snap.Top.Women, snap.Top.Men)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tVENUE\tREGION\tWOMEN\tMEN\tSOURCE")
	for i, r := range snap.Records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n", i+1, r.Name, r.Region, r.Women, r.Men, r.Source)
	}
	tw.Flush() //nolint:errcheck
	fmt.Fprintln(w, strings.Repeat("-", 50))
}
