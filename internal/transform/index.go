package transform

import "github.com/RoaringBitmap/roaring/roaring64"

// IndexLookup is the read-only view of the known node indices handed to the
// edge phase. The concrete set stays owned by the pipeline driver; edge
// code can only ask membership questions.
type IndexLookup interface {
	Contains(idx uint64) bool
	Cardinality() uint64
}

// KnownIndexSet accumulates the indices of every node row that survived
// validation. PrimeKG indices are dense small integers, which is exactly
// the shape roaring bitmaps compress well — tens of millions of indices fit
// in a few megabytes, and the set has to stay resident for the whole run.
//
// Written only by the node phase, read only by the edge phase. Never shared
// while being written.
type KnownIndexSet struct {
	bm *roaring64.Bitmap
}

// NewKnownIndexSet returns an empty set.
func NewKnownIndexSet() *KnownIndexSet {
	return &KnownIndexSet{bm: roaring64.NewBitmap()}
}

// Add records a node index.
func (s *KnownIndexSet) Add(idx uint64) {
	s.bm.Add(idx)
}

// Contains reports whether idx belongs to a node row that was emitted.
func (s *KnownIndexSet) Contains(idx uint64) bool {
	return s.bm.Contains(idx)
}

// Cardinality returns the number of distinct known indices.
func (s *KnownIndexSet) Cardinality() uint64 {
	return s.bm.GetCardinality()
}
