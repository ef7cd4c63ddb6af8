// Package config loads the optional HCL run configuration. Every field can
// also be set by command-line flag; the file exists so operators can keep a
// run definition next to the data it describes.
package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/agentic-research/primeprep/internal/tabular"
)

// Run describes one conversion run.
//
//	nodes_path = "primekg_raw/nodes.tab"
//	edges_path = "primekg_raw/edges.csv"
//	out_nodes  = "primekg_nodes_neo.csv"
//	out_rels   = "primekg_rels_neo.csv"
//	chunk_size = 1000000
type Run struct {
	NodesPath string `hcl:"nodes_path,optional"`
	EdgesPath string `hcl:"edges_path,optional"`
	OutNodes  string `hcl:"out_nodes,optional"`
	OutRels   string `hcl:"out_rels,optional"`

	ChunkSize int `hcl:"chunk_size,optional"`

	// Input field delimiters, one character each. PrimeKG ships a
	// tab-separated node table and a comma-separated edge table, so those
	// are the defaults.
	NodeDelimiter string `hcl:"node_delimiter,optional"`
	EdgeDelimiter string `hcl:"edge_delimiter,optional"`

	// ReportPath, when set, receives the JSON run summary.
	ReportPath string `hcl:"report_path,optional"`
}

// Default returns a Run with every optional field at its default value and
// the input paths unset.
func Default() Run {
	return Run{
		OutNodes:      "primekg_nodes_neo.csv",
		OutRels:       "primekg_rels_neo.csv",
		ChunkSize:     tabular.DefaultChunkSize,
		NodeDelimiter: "\t",
		EdgeDelimiter: ",",
	}
}

// Load reads an HCL run configuration and fills unset optional fields with
// their defaults. The input paths may still be empty afterwards — Validate
// catches that once flags have had their chance to supply them.
func Load(path string) (Run, error) {
	var cfg Run
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return Run{}, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Run) applyDefaults() {
	def := Default()
	if c.OutNodes == "" {
		c.OutNodes = def.OutNodes
	}
	if c.OutRels == "" {
		c.OutRels = def.OutRels
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.NodeDelimiter == "" {
		c.NodeDelimiter = def.NodeDelimiter
	}
	if c.EdgeDelimiter == "" {
		c.EdgeDelimiter = def.EdgeDelimiter
	}
}

// Validate checks that the run is complete enough to execute.
func (c *Run) Validate() error {
	if c.NodesPath == "" {
		return fmt.Errorf("nodes_path is required")
	}
	if c.EdgesPath == "" {
		return fmt.Errorf("edges_path is required")
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if _, err := delimiterRune(c.NodeDelimiter); err != nil {
		return fmt.Errorf("node_delimiter: %w", err)
	}
	if _, err := delimiterRune(c.EdgeDelimiter); err != nil {
		return fmt.Errorf("edge_delimiter: %w", err)
	}
	return nil
}

// NodeComma returns the node table delimiter as a rune. Call Validate first.
func (c *Run) NodeComma() rune {
	r, _ := delimiterRune(c.NodeDelimiter)
	return r
}

// EdgeComma returns the edge table delimiter as a rune. Call Validate first.
func (c *Run) EdgeComma() rune {
	r, _ := delimiterRune(c.EdgeDelimiter)
	return r
}

func delimiterRune(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("must be exactly one character, got %q", s)
	}
	return r, nil
}
