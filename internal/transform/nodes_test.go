package transform

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/primeprep/internal/tabular"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func fsWith(t *testing.T, path, content string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, path, []byte(content), 0o644))
	return fs
}

func runNodePhase(t *testing.T, fs billy.Filesystem, chunkSize int) *NodeTransformer {
	t.Helper()
	cr, err := tabular.OpenChunkReader(fs, "nodes.tab", '\t', chunkSize, NodeColumns)
	require.NoError(t, err)
	defer func() { _ = cr.Close() }() // safe to ignore

	out, err := tabular.NewWriter(fs, "nodes_neo.csv", NodeHeader)
	require.NoError(t, err)

	nt := NewNodeTransformer()
	require.NoError(t, nt.Run(context.Background(), cr, out, discardLogger()))
	require.NoError(t, out.Close())
	return nt
}

const nodesFixture = "node_index\tnode_id\tnode_type\tnode_name\tnode_source\n" +
	"0\t5297\tgene/protein\tPIK3CA\tNCBI\n" +
	"1\tDB01050\tdrug\tIbuprofen\tDrugBank\n" +
	"2\tSBO:0000185\tmolecular_function\ttranslocation\tSBO\n"

func TestNodeTransformer_EmitsTargetRows(t *testing.T) {
	fs := fsWith(t, "nodes.tab", nodesFixture)
	nt := runNodePhase(t, fs, 10)

	got, err := util.ReadFile(fs, "nodes_neo.csv")
	require.NoError(t, err)
	want := "node_index:ID,node_id,node_source,node_type,node_name,primekg_key,:LABEL\n" +
		"0,5297,NCBI,gene/protein,PIK3CA,NCBI:5297,gene_protein;Node\n" +
		"1,DB01050,DrugBank,drug,Ibuprofen,DrugBank:DB01050,drug;Node\n" +
		"2,SBO:0000185,SBO,molecular_function,translocation,SBO:0000185,molecular_function;Node\n"
	assert.Equal(t, want, string(got))

	assert.Equal(t, uint64(3), nt.Stats.Read)
	assert.Equal(t, uint64(3), nt.Stats.Emitted)
	assert.Equal(t, uint64(0), nt.Stats.Dropped)
}

func TestNodeTransformer_BuildsKnownIndexSet(t *testing.T) {
	fs := fsWith(t, "nodes.tab", nodesFixture)
	nt := runNodePhase(t, fs, 10)

	assert.Equal(t, uint64(3), nt.Known.Cardinality())
	assert.True(t, nt.Known.Contains(0))
	assert.True(t, nt.Known.Contains(1))
	assert.True(t, nt.Known.Contains(2))
	assert.False(t, nt.Known.Contains(3))
}

func TestNodeTransformer_CollectsLabels(t *testing.T) {
	fs := fsWith(t, "nodes.tab", nodesFixture)
	nt := runNodePhase(t, fs, 10)

	assert.Contains(t, nt.Labels, "gene_protein")
	assert.Contains(t, nt.Labels, "drug")
	assert.Contains(t, nt.Labels, "molecular_function")
	assert.Len(t, nt.Labels, 3)
}

func TestNodeTransformer_DropsRowsMissingCriticalFields(t *testing.T) {
	input := "node_index\tnode_id\tnode_type\tnode_name\tnode_source\n" +
		"0\t5297\tgene/protein\tPIK3CA\tNCBI\n" +
		"1\t\tdisease\tno id\tMONDO\n" + // empty node_id
		"\tX1\tdisease\tno index\tMONDO\n" + // empty node_index
		"3\tX3\t\tno type\tMONDO\n" + // empty node_type
		"4\tX4\tdisease\tno source\t\n" + // empty node_source
		"abc\tX5\tdisease\tbad index\tMONDO\n" // unparseable index
	fs := fsWith(t, "nodes.tab", input)
	nt := runNodePhase(t, fs, 10)

	assert.Equal(t, uint64(6), nt.Stats.Read)
	assert.Equal(t, uint64(1), nt.Stats.Emitted)
	assert.Equal(t, uint64(5), nt.Stats.Dropped)
	// No row vanishes unaccounted.
	assert.Equal(t, nt.Stats.Read, nt.Stats.Emitted+nt.Stats.Dropped)
	// Dropped rows never enter the index set.
	assert.Equal(t, uint64(1), nt.Known.Cardinality())
	assert.False(t, nt.Known.Contains(1))
	assert.False(t, nt.Known.Contains(3))
	assert.False(t, nt.Known.Contains(4))
}

func TestNodeTransformer_EmptyNameIsNotCritical(t *testing.T) {
	input := "node_index\tnode_id\tnode_type\tnode_name\tnode_source\n" +
		"0\t5297\tgene/protein\t\tNCBI\n"
	fs := fsWith(t, "nodes.tab", input)
	nt := runNodePhase(t, fs, 10)

	assert.Equal(t, uint64(1), nt.Stats.Emitted)
	got, err := util.ReadFile(fs, "nodes_neo.csv")
	require.NoError(t, err)
	assert.Contains(t, string(got), "0,5297,NCBI,gene/protein,,NCBI:5297,gene_protein;Node\n")
}

func TestNodeTransformer_ChunkSizeDoesNotChangeOutput(t *testing.T) {
	var outputs []string
	for _, size := range []int{1, 2, 1000} {
		fs := fsWith(t, "nodes.tab", nodesFixture)
		runNodePhase(t, fs, size)
		got, err := util.ReadFile(fs, "nodes_neo.csv")
		require.NoError(t, err)
		outputs = append(outputs, string(got))
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[1], outputs[2])
}
