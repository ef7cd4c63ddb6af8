package transform

import (
	"fmt"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/oj"
)

// PhaseSummary is the reportable outcome of one streaming phase.
type PhaseSummary struct {
	RowsRead    uint64  `json:"rows_read"`
	RowsEmitted uint64  `json:"rows_emitted"`
	RowsDropped uint64  `json:"rows_dropped"`
	Seconds     float64 `json:"seconds"`
}

// Summary is the run report: what went in, what came out, and the label and
// relationship-type vocabulary the output carries. Label and type lists are
// sorted so the report is as reproducible as the data files.
type Summary struct {
	NodesFile         string       `json:"nodes_file"`
	RelsFile          string       `json:"rels_file"`
	Nodes             PhaseSummary `json:"nodes"`
	Edges             PhaseSummary `json:"edges"`
	KnownIndices      uint64       `json:"known_indices"`
	DanglingEdges     uint64       `json:"dangling_edges"`
	Labels            []string     `json:"labels"`
	RelationshipTypes []string     `json:"relationship_types"`
}

// WriteJSON renders the summary as indented JSON at path.
func (s *Summary) WriteJSON(fs billy.Filesystem, path string) error {
	b, err := oj.Marshal(s, 2)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := util.WriteFile(fs, path, b, 0o644); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
