package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/azybler/roadgraph/pkg/api"
	"github.com/azybler/roadgraph/pkg/config"
	"github.com/azybler/roadgraph/pkg/dataset"
	"github.com/azybler/roadgraph/pkg/graph"
	"github.com/azybler/roadgraph/pkg/pipeline"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		corsOrigin string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve neighbor and nearest-node lookups over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("cors-origin") {
				cfg.Server.CORSOrigin = corsOrigin
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			selected, err := cfg.Select(datasets)
			if err != nil {
				return err
			}

			start := time.Now()
			reg, err := loadRegistry(cmd.Context(), cfg, selected)
			if err != nil {
				return err
			}
			log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

			scfg := api.DefaultConfig(cfg.Server.Addr)
			scfg.CORSOrigin = cfg.Server.CORSOrigin
			if cfg.Server.MaxConcurrent > 0 {
				scfg.MaxConcurrent = cfg.Server.MaxConcurrent
			}
			srv := api.NewServer(scfg, api.NewHandlers(reg))
			if err := api.ListenAndServe(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stopped: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().StringVar(&corsOrigin, "cors-origin", "", "CORS allowed origin (empty = same-origin)")
	return cmd
}

// loadRegistry prefers each dataset's binary snapshot and rebuilds from the
// node and edge files when none exists.
func loadRegistry(ctx context.Context, c config.Config, selected []config.Dataset) (*api.Registry, error) {
	reg := api.NewRegistry()
	var rebuild []config.Dataset

	for _, ds := range selected {
		path := dataset.BinaryPath(c.OutDir, ds.Name)
		snap, err := graph.ReadBinary(path)
		if errors.Is(err, os.ErrNotExist) {
			rebuild = append(rebuild, ds)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("dataset %s: load %s: %w", ds.Name, path, err)
		}
		log.Printf("Loaded %s from %s: %d nodes, %d entries", ds.Name, path, snap.Index.NumNodes(), snap.Index.NumEntries())
		if err := reg.Add(ds.Name, snap, c.Server.MaxSnapMeters); err != nil {
			return nil, err
		}
	}

	if len(rebuild) == 0 {
		return reg, nil
	}

	jobs := buildJobs(c, rebuild)
	for i := range jobs {
		jobs[i].Store = nil
	}
	outcomes := pipeline.RunAll(ctx, jobs, pipeline.Options{Mode: c.Mode()}, c.Workers)
	for _, o := range outcomes {
		if o.Err != nil {
			return nil, o.Err
		}
		if err := reg.Add(o.Name, o.Result.Snapshot(), c.Server.MaxSnapMeters); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
