package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/ritzau/mindmap-layout/pkg/config"
	"github.com/ritzau/mindmap-layout/pkg/logging"
	"github.com/ritzau/mindmap-layout/pkg/outline"
	"github.com/ritzau/mindmap-layout/pkg/output"
	"github.com/ritzau/mindmap-layout/pkg/session"
	"github.com/spf13/cobra"
)

// frame is the simulated time between ticks of a headless run.
const frame = time.Second / 60

type layoutOptions struct {
	ticks int
	json  bool
	seed  uint64
}

func newLayoutCommand() *cobra.Command {
	opts := layoutOptions{ticks: 300, seed: 1}

	cmd := &cobra.Command{
		Use:   "layout [outline]",
		Short: "Lay out an outline and print the result",
		Long: `Lay out an indented outline without a server.

Each line of the outline is a node; nesting is two spaces or a tab per
level. The input is read from the named file, or stdin when none is given
or the name is "-". The simulation runs for --ticks ticks with a seeded
random source, so the same input and seed give the same layout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runLayout(cmd.OutOrStdout(), in, cfg, opts)
		},
	}

	cmd.Flags().IntVar(&opts.ticks, "ticks", opts.ticks, "simulation ticks to run")
	cmd.Flags().BoolVar(&opts.json, "json", opts.json, "print the snapshot as JSON")
	cmd.Flags().Uint64Var(&opts.seed, "seed", opts.seed, "random seed")
	return cmd
}

func runLayout(w io.Writer, r io.Reader, cfg *config.Config, opts layoutOptions) error {
	items, err := outline.Parse(r)
	if err != nil {
		return err
	}

	// Simulated clock so camera transitions finish deterministically.
	clock := time.Unix(0, 0)
	s := session.New(cfg.Session(), session.Deps{
		Rand: rand.New(rand.NewPCG(opts.seed, opts.seed)),
		Now:  func() time.Time { return clock },
	})

	ids := make([]int64, len(items))
	for i, item := range items {
		var parent *int64
		if item.Parent >= 0 {
			parent = &ids[item.Parent]
		}
		n, err := s.AddNode(item.Text, parent)
		if err != nil {
			return fmt.Errorf("line %d: %w", item.Line, err)
		}
		ids[i] = n.ID
	}
	logging.Debug("outline loaded", "nodes", len(ids))

	for i := 0; i < opts.ticks; i++ {
		clock = clock.Add(frame)
		if !s.Tick() {
			logging.Debug("simulation settled", "tick", i)
			break
		}
	}

	s.FitView()
	clock = clock.Add(cfg.Camera.Duration + frame)

	snap := s.Snapshot()
	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	output.PrintLayoutReport(w, snap)
	return nil
}
