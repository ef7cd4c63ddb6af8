package cmd

import (
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/primeprep/internal/catalog"
	"github.com/agentic-research/primeprep/internal/tabular"
)

var catalogChunkSize int

var catalogCmd = &cobra.Command{
	Use:   "catalog [nodes_neo.csv] [catalog.db]",
	Short: "Build a SQLite primekg_key lookup catalog from a generated node file",
	Long: `Catalog loads a target node file produced by transform into a SQLite
database keyed by node_index and indexed by primekg_key, so nodes can be
resolved from spreadsheets and scripts without the graph database.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodesCSV, err := absPath(args[0])
		if err != nil {
			return err
		}
		dbPath, err := absPath(args[1])
		if err != nil {
			return err
		}

		logger.Info("building key catalog", "input", args[0], "output", args[1])
		loaded, err := catalog.Build(osfs.New("/"), nodesCSV, dbPath, catalogChunkSize, logger)
		if err != nil {
			return err
		}
		logger.Info("catalog complete", "rows", loaded)
		return nil
	},
}

func init() {
	catalogCmd.Flags().IntVar(&catalogChunkSize, "chunk-size", tabular.DefaultChunkSize, "Rows per streaming chunk")
	rootCmd.AddCommand(catalogCmd)
}
