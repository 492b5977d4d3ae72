package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/azybler/roadgraph/pkg/config"
	"github.com/azybler/roadgraph/pkg/dataset"
	"github.com/azybler/roadgraph/pkg/osm"
)

func newExtractCmd() *cobra.Command {
	var (
		input string
		bbox  string
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Write <dataset>_nodes.json and <dataset>_edges.json from an .osm.pbf file",
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := cfg.Select(datasets)
			if err != nil {
				return err
			}
			if input != "" && len(selected) != 1 {
				return errors.New("--input needs exactly one --dataset")
			}
			for _, ds := range selected {
				if input != "" {
					ds.PBF = input
				}
				if cmd.Flags().Changed("bbox") {
					ds.BBox = bbox
				}
				if err := extract(cmd, cfg, ds); err != nil {
					return fmt.Errorf("dataset %s: %w", ds.Name, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to .osm.pbf file (overrides the dataset's pbf)")
	cmd.Flags().StringVar(&bbox, "bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	return cmd
}

func extract(cmd *cobra.Command, c config.Config, ds config.Dataset) error {
	if ds.PBF == "" {
		return errors.New("no pbf source configured")
	}
	box, err := osm.ParseBBox(ds.BBox)
	if err != nil {
		return err
	}
	path := ds.PBF
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.DataDir, path)
	}

	start := time.Now()
	log.Printf("Opening OSM file %s...", path)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if !box.IsZero() {
		log.Printf("Using bounding box filter: %s", box)
	}
	res, err := osm.Parse(cmd.Context(), f, osm.ParseOptions{BBox: box})
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if err := dataset.WriteRecords(c.DataDir, ds.Name, dataset.FromGraph(res.Nodes, res.Edges)); err != nil {
		return err
	}
	log.Printf("Saved %s and %s in %s",
		dataset.NodesPath(c.DataDir, ds.Name), dataset.EdgesPath(c.DataDir, ds.Name),
		time.Since(start).Round(time.Millisecond))
	return nil
}
