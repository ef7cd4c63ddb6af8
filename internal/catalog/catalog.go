// Package catalog builds a SQLite lookup catalog from a generated target
// node file. primekg_key exists so operators can resolve nodes from
// spreadsheets and scripts without touching the graph database; the catalog
// is that resolution table in embeddable form. Purely derived data — it can
// be rebuilt from the node file at any time.
package catalog

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	billy "github.com/go-git/go-billy/v5"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/primeprep/internal/tabular"
)

// DefaultBatchSize is how many inserts share one transaction.
const DefaultBatchSize = 50_000

// catalogColumns are the target-node-file columns the catalog consumes.
var catalogColumns = []string{"node_index:ID", "node_id", "node_source", "node_type", "node_name", "primekg_key"}

const schema = `
CREATE TABLE IF NOT EXISTS prime_keys (
	node_index  INTEGER PRIMARY KEY,
	primekg_key TEXT NOT NULL,
	node_id     TEXT NOT NULL,
	node_source TEXT NOT NULL,
	node_type   TEXT NOT NULL,
	node_name   TEXT
);
CREATE INDEX IF NOT EXISTS idx_prime_keys_key ON prime_keys(primekg_key);
`

// Build streams the node file at nodesCSV into a SQLite catalog at dbPath
// and returns the number of rows loaded. Inserts run in batched
// transactions with durability pragmas off — the catalog is derived data,
// a crashed build is simply rerun.
func Build(fs billy.Filesystem, nodesCSV, dbPath string, chunkSize int, logger *log.Logger) (int64, error) {
	cr, err := tabular.OpenChunkReader(fs, nodesCSV, ',', chunkSize, catalogColumns)
	if err != nil {
		return 0, err
	}
	defer func() { _ = cr.Close() }() // safe to ignore

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	// Bulk-insert tuning.
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		return 0, fmt.Errorf("set synchronous: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		return 0, fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return 0, fmt.Errorf("create catalog schema: %w", err)
	}

	idxCol := cr.Col("node_index:ID")
	idCol := cr.Col("node_id")
	srcCol := cr.Col("node_source")
	typeCol := cr.Col("node_type")
	nameCol := cr.Col("node_name")
	keyCol := cr.Col("primekg_key")

	const insert = `INSERT OR REPLACE INTO prime_keys
		(node_index, primekg_key, node_id, node_source, node_type, node_name)
		VALUES (?, ?, ?, ?, ?, ?)`

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin catalog tx: %w", err)
	}
	stmt, err := tx.Prepare(insert)
	if err != nil {
		_ = tx.Rollback() // ignore error
		return 0, fmt.Errorf("prepare insert: %w", err)
	}

	var loaded int64
	for {
		chunk, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = tx.Rollback() // ignore error
			return 0, err
		}

		for _, rec := range chunk {
			idx, err := strconv.ParseUint(rec[idxCol], 10, 64)
			if err != nil {
				_ = tx.Rollback() // ignore error
				return 0, fmt.Errorf("%s: bad node_index:ID %q: %w", nodesCSV, rec[idxCol], err)
			}
			if _, err := stmt.Exec(idx, rec[keyCol], rec[idCol], rec[srcCol], rec[typeCol], rec[nameCol]); err != nil {
				_ = tx.Rollback() // ignore error
				return 0, fmt.Errorf("insert node %d: %w", idx, err)
			}

			loaded++
			if loaded%DefaultBatchSize == 0 {
				if err := tx.Commit(); err != nil {
					return 0, fmt.Errorf("commit batch: %w", err)
				}
				if tx, err = db.Begin(); err != nil {
					return 0, fmt.Errorf("begin catalog tx: %w", err)
				}
				if stmt, err = tx.Prepare(insert); err != nil {
					_ = tx.Rollback() // ignore error
					return 0, fmt.Errorf("prepare insert: %w", err)
				}
			}
		}
		logger.Debug("catalog chunk loaded", "rows", loaded)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit catalog: %w", err)
	}
	return loaded, nil
}
