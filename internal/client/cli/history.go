package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/pkg/api"
)

func newHistoryCommand(opts *RootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Show the conflict history of a play",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runHistory(cmd, args[0], verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print payloads of every conflict")

	return cmd
}

func (o *RootOptions) runHistory(cmd *cobra.Command, id string, verbose bool) error {
	if _, err := o.actor(); err != nil {
		return err
	}

	records, err := o.app.client.GetConflictHistory(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get conflict history: %w", err)
	}

	if o.jsonOutput() {
		out := api.ConflictHistoryResponse{EntityID: id, Conflicts: make([]api.ConflictResponse, 0, len(records))}
		for _, r := range records {
			out.Conflicts = append(out.Conflicts, *api.ConflictFromModel(r))
		}
		return o.printJSON(out)
	}

	if len(records) == 0 {
		o.IO.Printf("No conflicts recorded for %s.\n", id)
		return nil
	}

	if verbose {
		for _, r := range records {
			if err := o.printConflict(r); err != nil {
				return err
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(o.IO, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONFLICT\tDETECTED AT\tDETECTED BY\tBASE\tSERVER\tSTRATEGY\tRESOLVED BY\tRESULT")
	for _, r := range records {
		strategy, resolvedBy, result := "unresolved", "-", "-"
		if r.IsResolved() {
			strategy = string(r.Strategy)
			resolvedBy = r.ResolvedBy
			result = fmt.Sprintf("v%d", r.ResultingVersion)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			r.ID, r.DetectedAt.Local().Format(time.RFC3339), r.DetectedBy,
			r.BaseVersion, r.ServerVersion, strategy, resolvedBy, result)
	}
	return w.Flush()
}

func newAnalyticsCommand(opts *RootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show conflict statistics for a time range",
		Long: `Show conflict statistics for a time range.

--from and --to accept RFC3339 timestamps or a duration relative to now
(for example 24h or 168h). An omitted bound leaves the range open.`,
		Example: `  playsync analytics --from 168h
  playsync analytics --from 2026-03-01T00:00:00Z --to 2026-04-01T00:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runAnalytics(cmd, from, to)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "range start, inclusive")
	cmd.Flags().StringVar(&to, "to", "", "range end, exclusive")

	return cmd
}

// parseBound принимает RFC3339 или длительность назад от now
func parseBound(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return time.Time{}, fmt.Errorf("invalid time %q: use RFC3339 or a duration like 24h", value)
	}
	return now.Add(-d), nil
}

func (o *RootOptions) runAnalytics(cmd *cobra.Command, fromValue, toValue string) error {
	if _, err := o.actor(); err != nil {
		return err
	}

	now := o.Now()
	from, err := parseBound(fromValue, now)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parseBound(toValue, now)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return fmt.Errorf("--from must be before --to")
	}

	analytics, err := o.app.client.GetConflictAnalytics(cmd.Context(), models.TimeRange{From: from, To: to})
	if err != nil {
		return fmt.Errorf("failed to get analytics: %w", err)
	}

	if o.jsonOutput() {
		return o.printJSON(api.AnalyticsFromModel(analytics))
	}

	o.IO.Println("=== Conflict Analytics ===")
	o.IO.Println()
	o.IO.Printf("Range:           %s\n", formatRange(analytics.Range))
	o.IO.Printf("Total conflicts: %d\n", analytics.TotalConflicts)
	o.IO.Printf("Resolved:        %d (%.1f%%)\n", analytics.ResolvedCount, analytics.ResolutionRate*100)

	if len(analytics.StrategyDistribution) > 0 {
		o.IO.Println()
		o.IO.Println("Strategies:")
		strategies := make([]string, 0, len(analytics.StrategyDistribution))
		for s := range analytics.StrategyDistribution {
			strategies = append(strategies, string(s))
		}
		sort.Strings(strategies)
		for _, s := range strategies {
			o.IO.Printf("  %-12s %d\n", s, analytics.StrategyDistribution[models.Strategy(s)])
		}
	}

	return nil
}

func formatRange(r models.TimeRange) string {
	bound := func(t time.Time) string {
		if t.IsZero() {
			return "open"
		}
		return t.Local().Format(time.RFC3339)
	}
	return "[" + strings.Join([]string{bound(r.From), bound(r.To)}, ", ") + ")"
}
