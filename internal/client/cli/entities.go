package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/internal/validation"
	"github.com/iudanet/playsync/pkg/api"
)

func newCreateCommand(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Create a play at version 1",
		Example: `  playsync create flood-right --file plays/flood-right.json
  cat play.json | playsync create flood-right --file -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runCreate(cmd, args[0], file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "play JSON file ('-' for stdin)")

	return cmd
}

func (o *RootOptions) runCreate(cmd *cobra.Command, id, file string) error {
	if err := validation.ValidateEntityID(id); err != nil {
		return err
	}
	if _, err := o.actor(); err != nil {
		return err
	}

	payload, err := readPlay(cmd, file)
	if err != nil {
		return err
	}

	if o.Offline {
		return fmt.Errorf("create requires a connection to the server")
	}

	entity, err := o.app.client.CreateEntity(cmd.Context(), id, payload)
	if err != nil {
		return fmt.Errorf("failed to create play: %w", err)
	}

	if o.jsonOutput() {
		return o.printJSON(api.EntityFromModel(entity))
	}

	o.IO.Printf("✓ Created %s at version %d\n", entity.ID, entity.Version)
	return nil
}

func newGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show the current version of a play",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runGet(cmd, args[0])
		},
	}
}

func (o *RootOptions) runGet(cmd *cobra.Command, id string) error {
	if _, err := o.actor(); err != nil {
		return err
	}

	entity, err := o.app.client.GetEntity(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get play: %w", err)
	}

	if o.jsonOutput() {
		return o.printJSON(api.EntityFromModel(entity))
	}

	return o.printTemplate("entity", entity)
}

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plays on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runList(cmd)
		},
	}
}

func (o *RootOptions) runList(cmd *cobra.Command) error {
	if _, err := o.actor(); err != nil {
		return err
	}

	entities, err := o.app.client.ListEntities(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list plays: %w", err)
	}

	if o.jsonOutput() {
		out := make([]*api.EntityResponse, 0, len(entities))
		for _, e := range entities {
			out = append(out, api.EntityFromModel(e))
		}
		return o.printJSON(out)
	}

	if len(entities) == 0 {
		o.IO.Println("No plays found.")
		return nil
	}

	w := tabwriter.NewWriter(o.IO, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVERSION\tNAME\tMODIFIED BY\tMODIFIED AT")
	for _, e := range entities {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			e.ID, e.Version, playName(e.Payload), e.LastModifiedBy, e.LastModifiedAt.Local().Format(time.RFC3339))
	}
	return w.Flush()
}

func newSaveCommand(opts *RootOptions) *cobra.Command {
	var (
		file string
		base int64
	)

	cmd := &cobra.Command{
		Use:   "save <id>",
		Short: "Save a new version of a play based on the version you edited",
		Long: `Save a new version of a play based on the version you edited.

--base is the version the edit started from. If the play changed since,
the write is rejected and a conflict record is created on the server.

The edit is queued locally instead of sent when --offline is set, when
the server is unreachable, or when earlier edits of the same play are
still queued.`,
		Example: `  playsync save flood-right --base 3 --file plays/flood-right.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runSave(cmd, args[0], base, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "play JSON file ('-' for stdin)")
	cmd.Flags().Int64Var(&base, "base", 0, "version the edit is based on")
	_ = cmd.MarkFlagRequired("base")

	return cmd
}

func (o *RootOptions) runSave(cmd *cobra.Command, id string, base int64, file string) error {
	ctx := cmd.Context()
	a := o.app

	actor, err := o.actor()
	if err != nil {
		return err
	}

	payload, err := readPlay(cmd, file)
	if err != nil {
		return err
	}

	intent := models.WriteIntent{
		EntityID:        id,
		BaseVersion:     base,
		ProposedPayload: payload,
		Actor:           actor,
	}
	if err := validation.ValidateIntent(intent); err != nil {
		return err
	}

	if !a.coordinator.Online() {
		return o.queueEdit(cmd, intent, "offline mode")
	}

	// Правка не может обогнать уже поставленные в очередь правки той же схемы
	group, err := a.queue.PendingFor(ctx, id)
	if err != nil {
		return err
	}
	if len(group.Operations) > 0 {
		return o.queueEdit(cmd, intent, fmt.Sprintf("%d earlier edit(s) of %s are queued", len(group.Operations), id))
	}

	result, err := a.client.SaveEntity(ctx, intent)
	if errors.Is(err, models.ErrStoreUnavailable) {
		a.coordinator.SetOnline(false)
		a.logger.Warn("Server unavailable, queueing edit", "entity_id", id, "error", err)
		return o.queueEdit(cmd, intent, "server unavailable")
	}
	if err != nil {
		return fmt.Errorf("failed to save play: %w", err)
	}

	if o.jsonOutput() {
		if err := o.printJSON(api.SaveResponseFromModel(result)); err != nil {
			return err
		}
	} else if result.Saved() {
		o.IO.Printf("✓ Saved %s at version %d\n", result.Entity.ID, result.Entity.Version)
	} else {
		o.IO.Printf("✗ Version conflict: %s is at version %d, your edit was based on %d\n",
			id, result.Conflict.ServerVersion, base)
		if err := o.printConflict(result.Conflict); err != nil {
			return err
		}
		o.IO.Printf("Resolve with: playsync resolve %s --strategy server|client|merge\n", result.Conflict.ID)
	}

	if !result.Saved() {
		return fmt.Errorf("%w: %s", ErrUnresolvedConflict, result.Conflict.ID)
	}
	return nil
}

func (o *RootOptions) queueEdit(cmd *cobra.Command, intent models.WriteIntent, reason string) error {
	op, err := o.app.coordinator.QueueOfflineEdit(
		cmd.Context(), intent.EntityID, intent.BaseVersion, intent.ProposedPayload, intent.Actor)
	if err != nil {
		return fmt.Errorf("failed to queue edit: %w", err)
	}

	if o.jsonOutput() {
		return o.printJSON(op)
	}

	o.IO.Printf("✓ Queued edit %s of %s (base version %d): %s\n", op.ID, op.EntityID, op.BaseVersion, reason)
	o.IO.Println("Run 'playsync sync' when the server is reachable.")
	return nil
}
