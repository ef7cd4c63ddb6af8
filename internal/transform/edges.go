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

// EdgeHeader is the target relationship file header, in neo4j-admin import form.
var EdgeHeader = []string{":START_ID", ":END_ID", ":TYPE", "relation", "display_relation"}

// EdgeColumns are the columns the raw edge table must provide.
// display_relation is non-critical and may be absent entirely.
var EdgeColumns = []string{"x_index", "y_index", "relation"}

// EdgeTransformer streams raw edge chunks into the target relationship file.
//
// Validation is deliberately minimal: only rows missing a critical field
// (either endpoint index or the relation string) are dropped. Edges whose
// endpoints never appeared in the node table are counted as dangling but
// still emitted — the raw indices stay in the output for debugging, and
// filtering them is the bulk loader's call, not ours.
type EdgeTransformer struct {
	known IndexLookup
	Types map[string]struct{}
	Stats PhaseStats
}

// NewEdgeTransformer builds a transformer over a completed node index set.
// Taking the set as a constructor argument is what enforces the phase
// ordering: there is no way to make one of these before the node phase has
// produced its index.
func NewEdgeTransformer(known IndexLookup) *EdgeTransformer {
	return &EdgeTransformer{
		known: known,
		Types: make(map[string]struct{}),
	}
}

// Run consumes every chunk of cr and writes the surviving rows to out, in
// input order. The returned error is always structural or I/O.
func (et *EdgeTransformer) Run(ctx context.Context, cr *tabular.ChunkReader, out *tabular.Writer, logger *log.Logger) error {
	xCol := cr.Col("x_index")
	yCol := cr.Col("y_index")
	relCol := cr.Col("relation")
	dispCol, hasDisp := cr.Lookup("display_relation")

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
			et.Stats.Read++

			xRaw := strings.TrimSpace(rec[xCol])
			yRaw := strings.TrimSpace(rec[yCol])
			relation := strings.TrimSpace(rec[relCol])
			display := ""
			if hasDisp {
				display = strings.TrimSpace(rec[dispCol])
			}

			if xRaw == "" || yRaw == "" || relation == "" {
				et.Stats.Dropped++
				continue
			}
			x, errX := strconv.ParseUint(xRaw, 10, 64)
			y, errY := strconv.ParseUint(yRaw, 10, 64)
			if errX != nil || errY != nil {
				et.Stats.Dropped++
				continue
			}

			// Dangling references pass through; only the count is kept.
			if !et.known.Contains(x) || !et.known.Contains(y) {
				et.Stats.Dangling++
			}

			typeToken := ident.SanitizeToken(relation)
			row := []string{
				strconv.FormatUint(x, 10),
				strconv.FormatUint(y, 10),
				typeToken,
				relation,
				display,
			}
			if err := out.Write(row); err != nil {
				return err
			}

			et.Types[typeToken] = struct{}{}
			et.Stats.Emitted++
		}

		chunks++
		logger.Debug("edge chunk done",
			"chunk", chunks,
			"rows", len(chunk),
			"emitted", et.Stats.Emitted,
			"dropped", et.Stats.Dropped,
			"dangling", et.Stats.Dangling)
	}
	return nil
}
