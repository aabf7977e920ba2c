package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/playsync/internal/client/session"
	"github.com/iudanet/playsync/pkg/api"
)

func newWatchCommand(opts *RootOptions) *cobra.Command {
	var minBackoff, maxBackoff time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stay connected, replay queued edits on reconnect and print commits",
		Long: `Stay connected to the server session channel.

Every time the session is (re)established the offline queue is replayed.
Commits made by other editors are printed as they happen. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runWatch(cmd, minBackoff, maxBackoff)
		},
	}

	cmd.Flags().DurationVar(&minBackoff, "min-backoff", 500*time.Millisecond, "first reconnect delay")
	cmd.Flags().DurationVar(&maxBackoff, "max-backoff", 30*time.Second, "longest reconnect delay")

	return cmd
}

func (o *RootOptions) runWatch(cmd *cobra.Command, minBackoff, maxBackoff time.Duration) error {
	a := o.app

	actor, err := o.actor()
	if err != nil {
		return err
	}
	if o.Offline {
		return fmt.Errorf("watch requires a connection to the server")
	}

	url, err := a.client.SessionURL()
	if err != nil {
		return err
	}

	// Весь вывод идет из одной горутины: колбэки watcher только шлют сигналы
	syncRequests := make(chan struct{}, 1)
	notices := make(chan string, 8)
	events := make(chan api.SessionEvent, 64)

	a.coordinator.SetOnline(false)

	watcher := session.NewWatcher(url, a.auth.Token, a.logger,
		session.WithBackoff(minBackoff, maxBackoff),
		session.OnOnline(func(ctx context.Context) {
			a.coordinator.SetOnline(true)
			notify(notices, "✓ Connected to "+a.cfg.ServerURL)
			select {
			case syncRequests <- struct{}{}:
			default:
			}
		}),
		session.OnOffline(func(err error) {
			a.coordinator.SetOnline(false)
			notify(notices, fmt.Sprintf("⚠️  Disconnected: %v", err))
		}),
		session.OnEvent(func(event api.SessionEvent) {
			select {
			case events <- event:
			default:
				a.logger.Warn("Dropping session event, output is behind", "entity_id", event.EntityID)
			}
		}),
	)

	if !o.jsonOutput() {
		o.IO.Printf("Watching %s as %s. Press Ctrl+C to stop.\n", a.cfg.ServerURL, actor)
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		return watcher.Run(ctx)
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case notice := <-notices:
				if !o.jsonOutput() {
					o.IO.Println(notice)
				}
			case event := <-events:
				o.printEvent(event, actor)
			case <-syncRequests:
				o.replayOnReconnect(ctx)
			}
		}
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func notify(notices chan<- string, msg string) {
	select {
	case notices <- msg:
	default:
	}
}

func (o *RootOptions) printEvent(event api.SessionEvent, actor string) {
	if o.jsonOutput() {
		_ = o.printJSON(event)
		return
	}

	who := event.Actor
	if who == actor {
		who = "you"
	}
	o.IO.Printf("● %s is now at version %d (%s, %s)\n",
		event.EntityID, event.Version, who, event.At.Local().Format(time.TimeOnly))
}

// replayOnReconnect реплеит очередь; конфликты остаются ждать resolve
func (o *RootOptions) replayOnReconnect(ctx context.Context) {
	result, err := o.app.coordinator.TriggerSync(ctx)
	if result == nil {
		if err != nil && ctx.Err() == nil {
			o.app.logger.Warn("Replay after reconnect failed", "error", err)
		}
		return
	}

	if len(result.Committed) == 0 && len(result.Conflicts) == 0 &&
		len(result.Abandoned) == 0 && len(result.Paused) == 0 && err == nil {
		return
	}

	if err := o.reportSync(result, err); err != nil && !errors.Is(err, ErrUnresolvedConflict) {
		o.app.logger.Warn("Replay after reconnect failed", "error", err)
	}
}
