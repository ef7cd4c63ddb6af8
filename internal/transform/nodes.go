// Package transform converts the raw PrimeKG node and edge tables into the
// two CSV files neo4j-admin's bulk importer consumes.
//
// The conversion is a strict two-phase streaming pipeline: every node chunk
// is validated, transformed and written before any edge row is read, because
// edge bookkeeping depends on the completed set of known node indices. Rows
// move through in input order, so a given input always serializes to
// byte-identical output regardless of chunk size.
package transform

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/agentic-research/primeprep/internal/ident"
	"github.com/agentic-research/primeprep/internal/tabular"
)

// NodeHeader is the target node file header, in neo4j-admin import form.
var NodeHeader = []string{"node_index:ID", "node_id", "node_source", "node_type", "node_name", "primekg_key", ":LABEL"}

// NodeColumns are the columns the raw node table must provide.
var NodeColumns = []string{"node_index", "node_id", "node_type", "node_name", "node_source"}

// PhaseStats counts what happened to the rows of one phase. Dropped rows
// are a per-row condition, never fatal; Read == Emitted + Dropped always
// holds at the end of a phase.
type PhaseStats struct {
	Read     uint64
	Emitted  uint64
	Dropped  uint64
	Dangling uint64 // edge phase only: emitted rows referencing an unknown index
}

// NodeTransformer streams raw node chunks into the target node file while
// building the KnownIndexSet the edge phase validates against.
type NodeTransformer struct {
	Known  *KnownIndexSet
	Labels map[string]struct{}
	Stats  PhaseStats
}

// NewNodeTransformer returns a transformer with an empty index set.
func NewNodeTransformer() *NodeTransformer {
	return &NodeTransformer{
		Known:  NewKnownIndexSet(),
		Labels: make(map[string]struct{}),
	}
}

// Run consumes every chunk of cr and writes the surviving rows to out, in
// input order. Rows missing a critical field (node_index, node_id,
// node_type, node_source) are dropped and counted. The returned error is
// always structural or I/O, and means the run has failed.
func (nt *NodeTransformer) Run(ctx context.Context, cr *tabular.ChunkReader, out *tabular.Writer, logger *log.Logger) error {
	idxCol := cr.Col("node_index")
	idCol := cr.Col("node_id")
	typeCol := cr.Col("node_type")
	nameCol := cr.Col("node_name")
	srcCol := cr.Col("node_source")

	chunks := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		for _, rec := range chunk {
			nt.Stats.Read++

			index := strings.TrimSpace(rec[idxCol])
			rawID := strings.TrimSpace(rec[idCol])
			typ := strings.TrimSpace(rec[typeCol])
			source := strings.TrimSpace(rec[srcCol])

			if index == "" || rawID == "" || typ == "" || source == "" {
				nt.Stats.Dropped++
				continue
			}
			idx, err := strconv.ParseUint(index, 10, 64)
			if err != nil {
				// An index no edge can ever join on counts as missing.
				nt.Stats.Dropped++
				continue
			}

			label := ident.SanitizeToken(typ)
			row := []string{
				strconv.FormatUint(idx, 10),
				rawID,
				source,
				typ,
				strings.TrimSpace(rec[nameCol]),
				ident.PrimeKey(rawID, source),
				label + ";Node",
			}
			if err := out.Write(row); err != nil {
				return err
			}

			nt.Known.Add(idx)
			nt.Labels[label] = struct{}{}
			nt.Stats.Emitted++
		}

		chunks++
		logger.Debug("node chunk done",
			"chunk", chunks,
			"rows", len(chunk),
			"emitted", nt.Stats.Emitted,
			"dropped", nt.Stats.Dropped)
	}
	return nil
}
