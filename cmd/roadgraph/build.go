package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/azybler/roadgraph/pkg/config"
	"github.com/azybler/roadgraph/pkg/dataset"
	"github.com/azybler/roadgraph/pkg/graph"
	"github.com/azybler/roadgraph/pkg/pipeline"
)

func newBuildCmd() *cobra.Command {
	var (
		materialize string
		workers     int
		binary      bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write <dataset>_adjacency.json for each dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("materialize") {
				cfg.Materialize = materialize
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("binary") {
				cfg.Binary = binary
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			selected, err := cfg.Select(datasets)
			if err != nil {
				return err
			}
			return runBuild(cmd.Context(), cfg, selected, false)
		},
	}
	cmd.Flags().StringVar(&materialize, "materialize", "passthrough", "Two-way edge handling: passthrough or expand")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Datasets processed in parallel")
	cmd.Flags().BoolVar(&binary, "binary", false, "Also write <dataset>.adj.bin snapshots")
	return cmd
}

// buildJobs wires each dataset to its input files in DataDir and its outputs
// in OutDir.
func buildJobs(c config.Config, selected []config.Dataset) []pipeline.Job {
	jobs := make([]pipeline.Job, len(selected))
	for i, ds := range selected {
		name := ds.Name
		jobs[i] = pipeline.Job{
			Name: name,
			Load: func() ([]graph.Node, []graph.Edge, error) {
				rec, err := dataset.Load(c.DataDir, name)
				if err != nil {
					return nil, nil, err
				}
				nodes, edges := rec.GraphInput()
				return nodes, edges, nil
			},
			Store: func(res *pipeline.Result) error {
				if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
					return err
				}
				// The snapshot goes first; the adjacency file marks a complete build.
				binPath := dataset.BinaryPath(c.OutDir, name)
				if c.Binary {
					if err := graph.WriteBinary(binPath, res.Snapshot()); err != nil {
						return fmt.Errorf("write snapshot: %w", err)
					}
				}
				if err := dataset.WriteAdjacency(c.OutDir, name, res.Index); err != nil {
					if c.Binary {
						os.Remove(binPath)
					}
					return err
				}
				return nil
			},
		}
	}
	return jobs
}

func runBuild(ctx context.Context, c config.Config, selected []config.Dataset, quiet bool) error {
	start := time.Now()
	log.Printf("Building %d dataset(s) with %d worker(s), materialize=%s", len(selected), c.Workers, c.Mode())

	outcomes := pipeline.RunAll(ctx, buildJobs(c, selected), pipeline.Options{Mode: c.Mode(), Quiet: quiet}, c.Workers)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			log.Printf("FAILED %s: %v", o.Name, o.Err)
			continue
		}
		s := o.Result.Stats
		log.Printf("Adjacency for %s saved: %d nodes, %d entries (%s)",
			o.Name, s.ReducedNodes, s.FinalEdges, o.Result.Elapsed.Round(time.Millisecond))
	}
	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))

	if failed > 0 {
		return fmt.Errorf("%d of %d datasets failed", failed, len(outcomes))
	}
	return nil
}
