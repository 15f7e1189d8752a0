// Package scrape coordinates the full pipeline: settle the page, reveal
// carousels, run extraction passes, and reconcile records across passes.
package scrape

import (
	"github.com/Dark-Gladiator/HEB-Scrapping/internal/extract"
)

// Accumulator owns the canonical seen set for one scrape run. Records from
// every pass and page are merged through it; a record enters the collection
// only when its identity key has not been seen before. Not safe for
// concurrent use; the run is strictly sequential.
type Accumulator struct {
	seen    map[string]struct{}
	records []extract.Record
}

// NewAccumulator creates an empty Accumulator. Its lifecycle is one full
// scrape run; reset by creating a new one.
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[string]struct{})}
}

// Merge folds a pass's records into the collection and returns the records
// actually added. Records whose key is already seen, or who have no key at
// all, are dropped. Merging the same pass twice is a no-op the second time.
func (a *Accumulator) Merge(pass []extract.Record) []extract.Record {
	var added []extract.Record
	for _, rec := range pass {
		key := rec.DedupKey()
		if key == "" {
			continue
		}
		if _, ok := a.seen[key]; ok {
			continue
		}
		a.seen[key] = struct{}{}
		a.records = append(a.records, rec)
		added = append(added, rec)
	}
	return added
}

// Records returns the accumulated collection in insertion order.
func (a *Accumulator) Records() []extract.Record {
	return a.records
}

// Len returns the number of accumulated records.
func (a *Accumulator) Len() int {
	return len(a.records)
}
