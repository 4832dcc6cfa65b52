package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ritzau/mindmap-layout/pkg/config"
	"github.com/ritzau/mindmap-layout/pkg/logging"
	"github.com/ritzau/mindmap-layout/pkg/metrics"
	"github.com/ritzau/mindmap-layout/pkg/pubsub"
	"github.com/ritzau/mindmap-layout/pkg/session"
	"github.com/ritzau/mindmap-layout/pkg/suggest"
	"github.com/ritzau/mindmap-layout/pkg/watcher"
	"github.com/ritzau/mindmap-layout/pkg/web"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const (
	reloadQuiet   = 200 * time.Millisecond
	reloadMaxWait = 2 * time.Second
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve a mind map session over HTTP",
		Long: `Serve one mind map session over HTTP.

The session is driven by the JSON API under /api. Layout frames, graph
snapshots and viewport changes stream as server-sent events from
/api/subscribe/{layout,graph,viewport}. Prometheus metrics are at /metrics.

With --watch, edits to the config file retune the running session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cmd.Flags(), cfg)
		},
	}
}

func runServe(ctx context.Context, flags *pflag.FlagSet, cfg *config.Config) error {
	reg := metrics.DefaultRegistry()
	pub := pubsub.NewSessionPublisher(reg.RecordSubscribers)

	s := session.New(cfg.Session(), session.Deps{
		Suggest: suggest.NewClient(cfg.Suggest),
		Metrics: reg,
	})
	loop := session.NewLoop(s, pub, cfg.Server.TickRate)
	srv := web.NewServer(loop, pub, reg)

	logging.Info("starting session",
		"session", s.ID(),
		"suggest", suggestMode(cfg.Suggest),
		"size", fmt.Sprintf("%.0fx%.0f", cfg.Viewport.Width, cfg.Viewport.Height))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := loop.Run(ctx)
		// Ends open event streams so the server can shut down.
		pub.Close()
		return err
	})

	g.Go(func() error {
		return srv.Serve(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
	})

	if cfg.Watch {
		if cfg.File == "" {
			logging.Warn("watch requested but no config file was loaded")
		} else {
			r := &reloader{flags: flags, current: cfg, loop: loop}
			g.Go(func() error {
				return watcher.Watch(ctx, cfg.File, reloadQuiet, reloadMaxWait, func(watcher.ChangeEvent) {
					r.reload(ctx)
				})
			})
		}
	}

	return g.Wait()
}

func suggestMode(cfg suggest.Config) string {
	if cfg.Mock || cfg.Endpoint == "" {
		return "mock"
	}
	return cfg.Endpoint
}

// reloader re-reads the configuration and retunes the running session.
type reloader struct {
	flags   *pflag.FlagSet
	current *config.Config
	loop    *session.Loop
}

func (r *reloader) reload(ctx context.Context) {
	next, err := config.Load(r.flags)
	if err != nil {
		logging.Warn("config reload failed, keeping previous settings", "error", err)
		return
	}

	changes := watcher.AnalyzeChanges(r.current, next)
	if !changes.Changed() {
		logging.Debug("config unchanged")
		return
	}

	if len(changes.Applied) > 0 {
		err := r.loop.Do(ctx, func(s *session.Session) error {
			s.Reconfigure(next.Session())
			return nil
		})
		if err != nil {
			logging.Warn("config not applied", "error", err)
			return
		}
		logging.Info("config reloaded", "sections", changes.Applied)
	}
	if len(changes.NeedRestart) > 0 {
		logging.Warn("config changes take effect after restart", "sections", changes.NeedRestart)
	}
	r.current = next
}
