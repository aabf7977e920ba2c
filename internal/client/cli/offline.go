package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/playsync/internal/client/sync"
	"github.com/iudanet/playsync/internal/models"
)

func newQueueCommand(opts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List edits queued for replay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runQueue(cmd, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include replayed and abandoned edits")
	cmd.AddCommand(newQueueCompactCommand(opts))

	return cmd
}

func newQueueCompactCommand(opts *RootOptions) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Remove replayed and abandoned edits from the local queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan < 0 {
				return fmt.Errorf("--older-than must not be negative")
			}

			removed, err := opts.app.queue.Compact(cmd.Context(), olderThan)
			if err != nil {
				return err
			}

			if opts.jsonOutput() {
				return opts.printJSON(map[string]int{"removed": removed})
			}
			opts.IO.Printf("✓ Removed %d finished edit(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "keep finished edits queued more recently than this")

	return cmd
}

func (o *RootOptions) runQueue(cmd *cobra.Command, all bool) error {
	ops, err := o.app.queue.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}

	if !all {
		waiting := ops[:0:0]
		for _, op := range ops {
			if !op.Status.IsTerminal() {
				waiting = append(waiting, op)
			}
		}
		ops = waiting
	}

	if o.jsonOutput() {
		if ops == nil {
			ops = []*models.OfflineOperation{}
		}
		return o.printJSON(ops)
	}

	if len(ops) == 0 {
		o.IO.Println("✓ No queued edits")
		return nil
	}

	w := tabwriter.NewWriter(o.IO, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATION\tPLAY\tBASE\tSTATUS\tCONFLICT\tQUEUED AT")
	for _, op := range ops {
		conflict := op.ConflictID
		if conflict == "" {
			conflict = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			op.ID, op.EntityID, op.BaseVersion, op.Status, conflict, op.QueuedAt.Local().Format(time.RFC3339))
	}
	return w.Flush()
}

// syncView - JSON представление результата реплея
type syncView struct {
	Committed    []*models.OfflineOperation `json:"committed"`
	Conflicts    []syncConflictView         `json:"conflicts"`
	Paused       []string                   `json:"paused"`
	Abandoned    []*models.OfflineOperation `json:"abandoned"`
	AutoResolved int                        `json:"auto_resolved"`
}

type syncConflictView struct {
	Operation *models.OfflineOperation `json:"operation"`
	Conflict  *models.ConflictRecord   `json:"conflict,omitempty"`
}

func newSyncView(result *sync.SyncResult) syncView {
	view := syncView{
		Committed:    result.Committed,
		Paused:       result.Paused,
		Abandoned:    result.Abandoned,
		AutoResolved: result.AutoResolved,
		Conflicts:    make([]syncConflictView, 0, len(result.Conflicts)),
	}
	for _, c := range result.Conflicts {
		view.Conflicts = append(view.Conflicts, syncConflictView{Operation: c.Operation, Conflict: c.Conflict})
	}
	return view
}

func newSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued edits against the server",
		Long: `Replay queued edits against the server.

Edits of one play are replayed strictly in the order they were made,
different plays are replayed in parallel. A conflict stops the replay of
its play until it is resolved with 'playsync resolve <operation-id>'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runSync(cmd)
		},
	}
}

func (o *RootOptions) runSync(cmd *cobra.Command) error {
	if _, err := o.actor(); err != nil {
		return err
	}

	if !o.jsonOutput() {
		o.IO.Println("=== Synchronization ===")
		o.IO.Println()
	}

	result, err := o.app.coordinator.TriggerSync(cmd.Context())
	if errors.Is(err, sync.ErrOffline) {
		return fmt.Errorf("cannot sync in offline mode")
	}
	if result == nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	return o.reportSync(result, err)
}

// reportSync печатает результат реплея; используется sync и resolve
func (o *RootOptions) reportSync(result *sync.SyncResult, syncErr error) error {
	if o.jsonOutput() {
		if err := o.printJSON(newSyncView(result)); err != nil {
			return err
		}
	} else {
		o.IO.Printf("Committed:      %d edit(s)\n", len(result.Committed))
		if result.AutoResolved > 0 {
			o.IO.Printf("Auto-resolved:  %d conflict(s)\n", result.AutoResolved)
		}
		for _, op := range result.Abandoned {
			o.IO.Printf("✗ Abandoned %s (%s): %s\n", op.ID, op.EntityID, op.Reason)
		}
		for _, entityID := range result.Paused {
			o.IO.Printf("⚠️  Replay of %s paused: server unavailable\n", entityID)
		}
		for _, c := range result.Conflicts {
			o.IO.Printf("✗ Conflict on %s: edit %s was based on version %d\n",
				c.Operation.EntityID, c.Operation.ID, c.Operation.BaseVersion)
			if c.Conflict != nil {
				o.IO.Printf("  server is at version %d, conflict %s\n", c.Conflict.ServerVersion, c.Conflict.ID)
			}
			o.IO.Printf("  Resolve with: playsync resolve %s --strategy server|client|merge\n", c.Operation.ID)
		}
		if syncErr == nil && len(result.Conflicts) == 0 && len(result.Paused) == 0 {
			o.IO.Println()
			o.IO.Println("✓ All queued edits are replayed.")
		}
	}

	if syncErr != nil {
		return syncErr
	}
	if len(result.Conflicts) > 0 {
		return fmt.Errorf("%w: %d edit(s)", ErrUnresolvedConflict, len(result.Conflicts))
	}
	return nil
}

func newAbandonCommand(opts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "abandon <operation-id>",
		Short: "Give up a queued edit",
		Long: `Give up a queued edit.

The edit is never replayed. A conflict it caused stays unresolved on the
server and remains visible in the play history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runAbandon(cmd, args[0], reason)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why the edit is abandoned")

	return cmd
}

func (o *RootOptions) runAbandon(cmd *cobra.Command, opID, reason string) error {
	op, err := o.app.coordinator.Abandon(cmd.Context(), opID, reason)
	if err != nil {
		return fmt.Errorf("failed to abandon edit: %w", err)
	}

	if o.jsonOutput() {
		return o.printJSON(op)
	}

	o.IO.Printf("✓ Abandoned edit %s of %s: %s\n", op.ID, op.EntityID, op.Reason)
	return nil
}
