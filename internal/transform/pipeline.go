package transform

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/primeprep/internal/tabular"
)

// Pipeline owns one full conversion run: the node phase, the index set it
// produces, and the edge phase constructed from it. The edge phase cannot
// start early because it is only built once runNodes has returned a
// completed transformer — the ordering barrier lives in the call structure,
// not in a flag.
type Pipeline struct {
	FS billy.Filesystem

	NodesPath string
	EdgesPath string
	OutNodes  string
	OutRels   string

	// ChunkSize bounds rows held in memory at once; 0 means the default.
	ChunkSize int
	// NodeComma/EdgeComma are the input field delimiters; zero values mean
	// tab for the node table and comma for the edge table, matching how
	// PrimeKG ships (nodes.tab / edges.csv).
	NodeComma rune
	EdgeComma rune

	Log *log.Logger
}

// Run executes both phases and returns the run summary. On error no output
// is usable: either both files are complete and correct, or the run failed.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	logger := p.Log
	if logger == nil {
		logger = log.New(io.Discard)
	}
	nodeComma := p.NodeComma
	if nodeComma == 0 {
		nodeComma = '\t'
	}
	edgeComma := p.EdgeComma
	if edgeComma == 0 {
		edgeComma = ','
	}

	nodeStart := time.Now()
	nodes, err := p.runNodes(ctx, logger, nodeComma)
	if err != nil {
		return nil, fmt.Errorf("node phase: %w", err)
	}
	nodeElapsed := time.Since(nodeStart)

	edgeStart := time.Now()
	edges, err := p.runEdges(ctx, logger, edgeComma, nodes.Known)
	if err != nil {
		return nil, fmt.Errorf("edge phase: %w", err)
	}
	edgeElapsed := time.Since(edgeStart)

	return &Summary{
		NodesFile: p.OutNodes,
		RelsFile:  p.OutRels,
		Nodes: PhaseSummary{
			RowsRead:    nodes.Stats.Read,
			RowsEmitted: nodes.Stats.Emitted,
			RowsDropped: nodes.Stats.Dropped,
			Seconds:     nodeElapsed.Seconds(),
		},
		Edges: PhaseSummary{
			RowsRead:    edges.Stats.Read,
			RowsEmitted: edges.Stats.Emitted,
			RowsDropped: edges.Stats.Dropped,
			Seconds:     edgeElapsed.Seconds(),
		},
		KnownIndices:      nodes.Known.Cardinality(),
		DanglingEdges:     edges.Stats.Dangling,
		Labels:            sortedKeys(nodes.Labels),
		RelationshipTypes: sortedKeys(edges.Types),
	}, nil
}

func (p *Pipeline) runNodes(ctx context.Context, logger *log.Logger, comma rune) (*NodeTransformer, error) {
	cr, err := tabular.OpenChunkReader(p.FS, p.NodesPath, comma, p.ChunkSize, NodeColumns)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cr.Close() }() // read side, safe to ignore

	out, err := tabular.NewWriter(p.FS, p.OutNodes, NodeHeader)
	if err != nil {
		return nil, err
	}

	logger.Info("processing nodes", "input", p.NodesPath, "output", p.OutNodes)
	nt := NewNodeTransformer()
	if err := nt.Run(ctx, cr, out, logger); err != nil {
		_ = out.Close() // output already unusable
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, err
	}

	logger.Info("node phase complete",
		"read", nt.Stats.Read,
		"emitted", nt.Stats.Emitted,
		"dropped", nt.Stats.Dropped,
		"known_indices", nt.Known.Cardinality(),
		"labels", len(nt.Labels))
	return nt, nil
}

func (p *Pipeline) runEdges(ctx context.Context, logger *log.Logger, comma rune, known IndexLookup) (*EdgeTransformer, error) {
	cr, err := tabular.OpenChunkReader(p.FS, p.EdgesPath, comma, p.ChunkSize, EdgeColumns)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cr.Close() }() // read side, safe to ignore

	out, err := tabular.NewWriter(p.FS, p.OutRels, EdgeHeader)
	if err != nil {
		return nil, err
	}

	logger.Info("processing edges", "input", p.EdgesPath, "output", p.OutRels)
	et := NewEdgeTransformer(known)
	if err := et.Run(ctx, cr, out, logger); err != nil {
		_ = out.Close() // output already unusable
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, err
	}

	logger.Info("edge phase complete",
		"read", et.Stats.Read,
		"emitted", et.Stats.Emitted,
		"dropped", et.Stats.Dropped,
		"dangling", et.Stats.Dangling,
		"types", len(et.Types))
	return et, nil
}
