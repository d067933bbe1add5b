package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/sheet-exporter/internal/rename"
	"github.com/handiism/sheet-exporter/internal/snapshot"
)

func renderRenamed(w io.Writer, res *rename.Result) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Viewport", "From", "To"})
	for _, r := range res.Renamed {
		t.AppendRow(table.Row{r.ViewportID, r.From, r.To})
	}
	t.Render()
	fmt.Fprintf(w, "%d view(s) renamed, %d skipped\n", len(res.Renamed), res.Skipped)
}

// NewRenameCommand creates the rename command.
func NewRenameCommand() *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename placed views after their sheet",
		Long: `Rename every view placed on a sheet to
<sheet>_<level>_<title>_<detail>.<scale>, adding " (n)" when the name is
taken. Legends and schedules are left alone. Renamed views are written back
to the model snapshot.

With --watch the snapshot file is watched and views are renamed again
whenever it changes.`,
		Example: `  sheet-export rename --model model.yaml
  sheet-export rename --model model.yaml --watch --interval 2s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := GetApp(cmd.Context())
			host, err := app.Host()
			if err != nil {
				return err
			}

			hook := rename.NewHook(host, app.Logger)
			hook.Notify(host.Viewports()...)

			save := func(res *rename.Result) error {
				if len(res.Renamed) == 0 {
					return nil
				}
				if err := host.Snapshot().Save(app.Config.Model); err != nil {
					return fmt.Errorf("failed to save model: %w", err)
				}
				return nil
			}

			if !watch {
				res, err := hook.Drain(cmd.Context())
				if err != nil {
					return err
				}
				if err := save(res); err != nil {
					return err
				}
				renderRenamed(cmd.OutOrStdout(), res)
				return nil
			}

			hook.OnDrain(func(res *rename.Result) {
				if err := save(res); err != nil {
					app.Logger.Error("rename not saved", zap.Error(err))
					return
				}
				renderRenamed(cmd.OutOrStdout(), res)
			})
			return watchAndRename(cmd.Context(), host, app.Config.Model, hook, interval, app.Logger)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and rename on every model change")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Idle delay between drains in watch mode")
	return cmd
}

// watchAndRename runs the snapshot watcher, the idle ticker and the hook
// until ctx is done.
func watchAndRename(ctx context.Context, host *snapshot.Host, path string, hook *rename.Hook, interval time.Duration, logger *zap.Logger) error {
	if interval <= 0 {
		interval = time.Second
	}

	changes := make(chan []string)
	idle := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return host.Watch(gctx, path, func(*snapshot.Snapshot) {
			select {
			case changes <- host.Viewports():
			case <-gctx.Done():
			}
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				select {
				case idle <- struct{}{}:
				case <-gctx.Done():
					return nil
				}
			}
		}
	})

	g.Go(func() error {
		return hook.Run(gctx, changes, idle)
	})

	logger.Info("watching model", zap.String("path", path), zap.Duration("interval", interval))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
