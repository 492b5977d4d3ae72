// Command roadgraph extracts road networks, reduces them to their largest
// connected component, writes adjacency indexes and serves them over HTTP.
package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/azybler/roadgraph/pkg/config"
)

var (
	configPath string
	datasets   []string
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:           "roadgraph",
		Short:         "Build and serve adjacency indexes for city road networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			return err
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to roadgraph.yaml (defaults built in when empty)")
	rootCmd.PersistentFlags().StringSliceVarP(&datasets, "dataset", "d", nil, "Dataset(s) to process; all configured datasets when empty")

	rootCmd.AddCommand(newBuildCmd(), newExtractCmd(), newServeCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
