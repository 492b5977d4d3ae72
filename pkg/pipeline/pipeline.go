// Package pipeline turns one dataset of raw nodes and edges into an adjacency
// index (Ingest → Reduce → Materialize → Index) and runs many datasets side by side.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/azybler/roadgraph/pkg/graph"
)

// Options configures a pipeline run.
type Options struct {
	Mode  graph.MaterializeMode
	Quiet bool // suppress progress logging
}

// Stats summarizes one run.
type Stats struct {
	InputNodes   int
	InputEdges   int
	ReducedNodes int
	ReducedEdges int
	FinalEdges   int
	TwoWay       int
	OneWay       int
	Asymmetric   int
}

// Result is the output of a successful run.
type Result struct {
	Dataset string
	Graph   *graph.Graph // reduced graph
	Final   *graph.Materialized
	Index   *graph.AdjacencyIndex
	Stats   Stats
	Elapsed time.Duration
}

// Snapshot returns the reduced node set together with the index.
func (r *Result) Snapshot() *graph.Snapshot {
	return &graph.Snapshot{Nodes: r.Graph.Nodes, Index: r.Index}
}

// Run processes a single dataset. It has no side effects besides logging and
// metrics; on error nothing is returned for the dataset.
func Run(name string, nodes []graph.Node, edges []graph.Edge, opts Options) (*Result, error) {
	start := time.Now()
	res, err := run(name, nodes, edges, opts)
	datasetsTotal.WithLabelValues(statusOf(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}
	res.Elapsed = time.Since(start)
	runDuration.Observe(res.Elapsed.Seconds())
	nodesDropped.Add(float64(res.Stats.InputNodes - res.Stats.ReducedNodes))
	edgesEmitted.Add(float64(res.Index.NumEntries()))
	return res, nil
}

func run(name string, nodes []graph.Node, edges []graph.Edge, opts Options) (*Result, error) {
	logf := log.Printf
	if opts.Quiet {
		logf = func(string, ...any) {}
	}

	// Step 1: Ingest.
	g, err := graph.Ingest(nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	logf("[%s] Graph: %d nodes, %d edges", name, g.NumNodes(), g.NumEdges())

	// Step 2: Keep the largest weakly connected component.
	reduced, err := graph.Reduce(g)
	if err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}
	logf("[%s] Largest component: %d nodes (%.1f%%), %d edges",
		name, reduced.NumNodes(), float64(reduced.NumNodes())/float64(g.NumNodes())*100, reduced.NumEdges())

	// Step 3: Resolve both directions of two-way segments.
	final := graph.Materialize(reduced, opts.Mode)
	logf("[%s] Materialized (%s): %d edges, %d two-way, %d one-way, %d asymmetric",
		name, opts.Mode, len(final.Edges), final.TwoWay, final.OneWay, final.Asymmetric)

	// Step 4: Build the adjacency index.
	idx := graph.BuildIndex(reduced.Nodes, final.Edges)

	return &Result{
		Dataset: name,
		Graph:   reduced,
		Final:   final,
		Index:   idx,
		Stats: Stats{
			InputNodes:   int(g.NumNodes()),
			InputEdges:   int(g.NumEdges()),
			ReducedNodes: int(reduced.NumNodes()),
			ReducedEdges: int(reduced.NumEdges()),
			FinalEdges:   len(final.Edges),
			TwoWay:       final.TwoWay,
			OneWay:       final.OneWay,
			Asymmetric:   final.Asymmetric,
		},
	}, nil
}

func statusOf(err error) string {
	var ve *graph.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, graph.ErrEmptyGraph):
		return "empty"
	default:
		return "error"
	}
}

// Job is one dataset to process in RunAll.
type Job struct {
	Name string
	// Load supplies the raw records.
	Load func() ([]graph.Node, []graph.Edge, error)
	// Store, if set, persists a successful result.
	Store func(*Result) error
}

// Outcome is the per-dataset result of RunAll. Exactly one of Result and Err is set.
type Outcome struct {
	Name   string
	Result *Result
	Err    error
}

// RunAll processes jobs with at most workers datasets in flight. Datasets
// share no state; a failing dataset is reported in its Outcome and does not
// affect the others. Outcomes are in job order. Jobs not yet started when ctx
// is done fail with the context error.
func RunAll(ctx context.Context, jobs []Job, opts Options, workers int) []Outcome {
	if workers < 1 {
		workers = 1
	}
	outcomes := make([]Outcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i] = runJob(ctx, job, opts)
			return nil
		})
	}
	g.Wait()

	return outcomes
}

func runJob(ctx context.Context, job Job, opts Options) Outcome {
	out := Outcome{Name: job.Name}
	if err := ctx.Err(); err != nil {
		out.Err = fmt.Errorf("dataset %s: %w", job.Name, err)
		return out
	}

	nodes, edges, err := job.Load()
	if err != nil {
		datasetsTotal.WithLabelValues("error").Inc()
		out.Err = fmt.Errorf("dataset %s: %w", job.Name, err)
		return out
	}

	res, err := Run(job.Name, nodes, edges, opts)
	if err != nil {
		out.Err = err
		return out
	}

	if job.Store != nil {
		if err := job.Store(res); err != nil {
			out.Err = fmt.Errorf("dataset %s: store: %w", job.Name, err)
			return out
		}
	}
	out.Result = res
	return out
}
