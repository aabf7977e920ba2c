package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/playsync/internal/client/storage"
	"github.com/iudanet/playsync/internal/client/sync"
	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/pkg/api"
)

func newResolveCommand(opts *RootOptions) *cobra.Command {
	var strategy, file string

	cmd := &cobra.Command{
		Use:   "resolve <operation-id|conflict-id>",
		Short: "Resolve a conflict",
		Long: `Resolve a conflict with one of the strategies:

  server_wins  keep the version currently on the server
  client_wins  commit the edit that lost
  merge        commit a merged play given with --file

Resolving a queued edit by its operation id resumes the replay of the
remaining edits of that play. When --strategy is omitted on a terminal,
the conflict is shown and the strategy is prompted for.`,
		Example: `  playsync resolve 2f1c... --strategy server
  playsync resolve 2f1c... --strategy merge --file plays/merged.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runResolve(cmd, args[0], strategy, file)
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "server_wins|client_wins|merge (aliases: server, client)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "merged play JSON file for merge ('-' for stdin)")

	return cmd
}

func (o *RootOptions) runResolve(cmd *cobra.Command, id, strategyName, file string) error {
	ctx := cmd.Context()
	a := o.app

	actor, err := o.actor()
	if err != nil {
		return err
	}
	if o.Offline {
		return fmt.Errorf("resolve requires a connection to the server")
	}

	op, err := o.findAwaitingOperation(ctx, id)
	if err != nil {
		return err
	}

	conflictID := id
	if op != nil {
		conflictID = op.ConflictID
	}

	record, err := a.client.GetConflict(ctx, conflictID)
	if err != nil {
		return fmt.Errorf("failed to get conflict: %w", err)
	}
	if record.IsResolved() && op == nil {
		return fmt.Errorf("%w: %s was resolved by %s with %s",
			models.ErrAlreadyResolved, record.ID, record.ResolvedBy, record.Strategy)
	}

	var strategy models.Strategy
	if strategyName == "" {
		if !o.IO.IsInteractive() {
			return fmt.Errorf("--strategy is required")
		}
		strategy, file, err = o.promptResolution(record, file)
		if err != nil {
			return err
		}
	} else {
		strategy, err = models.ParseStrategy(strategyName)
		if err != nil {
			return err
		}
	}

	var payload []byte
	switch {
	case strategy == models.StrategyMerge:
		payload, err = readPlay(cmd, file)
		if err != nil {
			return fmt.Errorf("merge needs a merged play: %w", err)
		}
	case file != "":
		return fmt.Errorf("--file is only used with the merge strategy")
	}

	if op != nil {
		result, err := a.coordinator.ResolvePending(ctx, op.ID, strategy, payload, actor)
		if errors.Is(err, sync.ErrResolvedElsewhere) {
			o.IO.Printf("✗ %s\n", err)
			o.IO.Printf("Edit %s is still queued. Save it again on top of the current version or run: playsync abandon %s\n",
				op.ID, op.ID)
			return err
		}
		if result == nil {
			return fmt.Errorf("failed to resolve conflict: %w", err)
		}
		if !o.jsonOutput() {
			o.IO.Printf("✓ Resolved conflict %s with %s\n", conflictID, strategy)
		}
		return o.reportSync(result, err)
	}

	outcome, err := a.client.ResolveConflict(ctx, conflictID, strategy, payload, actor)
	if err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	if o.jsonOutput() {
		if err := o.printJSON(api.SaveResponseFromModel(outcome)); err != nil {
			return err
		}
	} else if outcome.Saved() {
		o.IO.Printf("✓ Resolved conflict %s with %s: %s is at version %d\n",
			conflictID, strategy, outcome.Entity.ID, outcome.Entity.Version)
	} else {
		o.IO.Printf("✗ %s changed again while resolving, new conflict %s\n",
			outcome.Conflict.EntityID, outcome.Conflict.ID)
		o.IO.Printf("Resolve with: playsync resolve %s --strategy server|client|merge\n", outcome.Conflict.ID)
	}

	if !outcome.Saved() {
		return fmt.Errorf("%w: %s", ErrUnresolvedConflict, outcome.Conflict.ID)
	}
	return nil
}

// findAwaitingOperation ищет операцию очереди по ее id или по id ее конфликта.
// nil без ошибки означает конфликт, не связанный с очередью.
func (o *RootOptions) findAwaitingOperation(ctx context.Context, id string) (*models.OfflineOperation, error) {
	op, err := o.app.queue.Get(ctx, id)
	switch {
	case err == nil:
		if op.Status != models.OperationConflictPendingResolution {
			return nil, fmt.Errorf("edit %s is %s, nothing to resolve", op.ID, op.Status)
		}
		return op, nil
	case !errors.Is(err, storage.ErrOperationNotFound):
		return nil, err
	}

	ops, err := o.app.queue.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		if op.Status == models.OperationConflictPendingResolution && op.ConflictID == id {
			return op, nil
		}
	}

	return nil, nil
}

// promptResolution показывает конфликт и спрашивает стратегию
func (o *RootOptions) promptResolution(record *models.ConflictRecord, file string) (models.Strategy, string, error) {
	if err := o.printConflict(record); err != nil {
		return "", "", err
	}

	o.IO.Println("Choose a strategy:")
	o.IO.Printf("  1) server_wins  keep version %d from the server\n", record.ServerVersion)
	o.IO.Println("  2) client_wins  commit the edit that lost")
	o.IO.Println("  3) merge        commit a merged play file")

	var strategy models.Strategy
	for strategy == "" {
		input, err := o.IO.ReadInput("Strategy [1-3]: ")
		if err != nil {
			return "", "", fmt.Errorf("failed to read strategy: %w", err)
		}

		switch strings.TrimSpace(input) {
		case "1":
			strategy = models.StrategyServerWins
		case "2":
			strategy = models.StrategyClientWins
		case "3":
			strategy = models.StrategyMerge
		default:
			parsed, err := models.ParseStrategy(input)
			if err != nil {
				o.IO.Println("Unknown strategy, enter 1, 2 or 3.")
				continue
			}
			strategy = parsed
		}
	}

	if strategy == models.StrategyMerge && file == "" {
		input, err := o.IO.ReadInput("Merged play file: ")
		if err != nil {
			return "", "", fmt.Errorf("failed to read file name: %w", err)
		}
		file = input
	}

	return strategy, file, nil
}
