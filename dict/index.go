// Package dict implements the per-store dictionary index mapping dimension
// values to compact int32 ids and back.
//
// Every dimension is seeded with the reserved pair rollup.Star (id 0) and
// rollup.Other (id 1); dynamic ids are assigned from a single monotonically
// increasing counter shared across all dimensions of a store, starting at
// rollup.FirstValueID. Ids are never reused and entries are never evicted.
//
// An Index is not internally synchronized; the owning store's lock serializes
// access.
package dict

import (
	"fmt"
	"slices"

	"github.com/arloliu/dimlog/errs"
	"github.com/arloliu/dimlog/rollup"
)

// Entry is one dynamic dictionary mapping, used by Export and Restore.
type Entry struct {
	Value string
	ID    int32
}

// Index maps dimension values to ids and ids back to values.
type Index struct {
	dimensions []string
	forward    map[string]map[string]int32
	reverse    map[string]map[int32]string
	nextID     int32
}

// New creates an index for the given dimensions with the reserved entries
// seeded and the shared counter set to rollup.FirstValueID.
func New(dimensions []string) *Index {
	ix := &Index{
		dimensions: slices.Clone(dimensions),
		forward:    make(map[string]map[string]int32, len(dimensions)),
		reverse:    make(map[string]map[int32]string, len(dimensions)),
		nextID:     rollup.FirstValueID,
	}

	for _, dimension := range ix.dimensions {
		ix.forward[dimension] = map[string]int32{
			rollup.Star:  rollup.StarValueID,
			rollup.Other: rollup.OtherValueID,
		}
		ix.reverse[dimension] = map[int32]string{
			rollup.StarValueID:  rollup.Star,
			rollup.OtherValueID: rollup.Other,
		}
	}

	return ix
}

// GetOrCreateID returns the id for value in dimension, assigning the next id
// from the shared counter on first sight.
func (ix *Index) GetOrCreateID(dimension, value string) (int32, error) {
	values, ok := ix.forward[dimension]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownDimension, dimension)
	}

	if id, ok := values[value]; ok {
		return id, nil
	}

	id := ix.nextID
	ix.nextID++
	values[value] = id
	ix.reverse[dimension][id] = value

	return id, nil
}

// ValueOf returns the value mapped to id in dimension. An id this index never
// produced yields errs.ErrUnknownValueID; it is never silently resolved to the
// wildcard or overflow value.
func (ix *Index) ValueOf(dimension string, id int32) (string, error) {
	ids, ok := ix.reverse[dimension]
	if !ok {
		return "", fmt.Errorf("%w: %q", errs.ErrUnknownDimension, dimension)
	}

	value, ok := ids[id]
	if !ok {
		return "", fmt.Errorf("%w: id %d in dimension %q", errs.ErrUnknownValueID, id, dimension)
	}

	return value, nil
}

// Cardinality returns the number of distinct values seen for dimension,
// excluding the reserved star and other entries. Unknown dimensions have
// cardinality 0.
func (ix *Index) Cardinality(dimension string) int {
	values, ok := ix.forward[dimension]
	if !ok {
		return 0
	}

	return len(values) - 2
}

// Values returns the distinct values seen for dimension in sorted order,
// excluding the reserved star and other entries. Unknown dimensions yield nil.
func (ix *Index) Values(dimension string) []string {
	forward, ok := ix.forward[dimension]
	if !ok {
		return nil
	}

	values := make([]string, 0, len(forward)-2)
	for value := range forward {
		if value == rollup.Star || value == rollup.Other {
			continue
		}
		values = append(values, value)
	}
	slices.Sort(values)

	return values
}

// MaxCardinalityDimension returns the dimension with the highest cardinality
// that is not in exclude. Ties keep the earlier dimension in declared order.
// It reports false when every candidate is excluded or has zero cardinality.
func (ix *Index) MaxCardinalityDimension(exclude ...string) (string, bool) {
	best := ""
	bestCardinality := 0

	for _, dimension := range ix.dimensions {
		if slices.Contains(exclude, dimension) {
			continue
		}

		if c := ix.Cardinality(dimension); c > bestCardinality {
			best = dimension
			bestCardinality = c
		}
	}

	return best, best != ""
}

// NextID returns the shared counter's next id, i.e. the exclusive upper bound
// of all assigned ids.
func (ix *Index) NextID() int32 {
	return ix.nextID
}

// Export dumps the dynamic entries of every dimension, sorted by id. Reserved
// entries are omitted; Restore re-seeds them.
func (ix *Index) Export() map[string][]Entry {
	dump := make(map[string][]Entry, len(ix.dimensions))
	for _, dimension := range ix.dimensions {
		entries := make([]Entry, 0, len(ix.forward[dimension])-2)
		for value, id := range ix.forward[dimension] {
			if id == rollup.StarValueID || id == rollup.OtherValueID {
				continue
			}
			entries = append(entries, Entry{Value: value, ID: id})
		}
		slices.SortFunc(entries, func(a, b Entry) int {
			return int(a.ID - b.ID)
		})
		dump[dimension] = entries
	}

	return dump
}

// Restore rebuilds an index from an Export dump. Every entry id must lie in
// [rollup.FirstValueID, nextID) and values and ids must be unique within a
// dimension; violations yield errs.ErrInvalidDictionary. Entries for a
// dimension not in dimensions yield errs.ErrUnknownDimension.
func Restore(dimensions []string, entries map[string][]Entry, nextID int32) (*Index, error) {
	if nextID < rollup.FirstValueID {
		return nil, fmt.Errorf("%w: next id %d below first dynamic id", errs.ErrInvalidDictionary, nextID)
	}

	ix := New(dimensions)
	ix.nextID = nextID

	for dimension, dump := range entries {
		forward, ok := ix.forward[dimension]
		if !ok {
			return nil, fmt.Errorf("%w: %q", errs.ErrUnknownDimension, dimension)
		}
		reverse := ix.reverse[dimension]

		for _, entry := range dump {
			if entry.ID < rollup.FirstValueID || entry.ID >= nextID {
				return nil, fmt.Errorf("%w: id %d for value %q out of range [%d, %d)",
					errs.ErrInvalidDictionary, entry.ID, entry.Value, rollup.FirstValueID, nextID)
			}
			if _, exists := forward[entry.Value]; exists {
				return nil, fmt.Errorf("%w: duplicate value %q in dimension %q",
					errs.ErrInvalidDictionary, entry.Value, dimension)
			}
			if _, exists := reverse[entry.ID]; exists {
				return nil, fmt.Errorf("%w: duplicate id %d in dimension %q",
					errs.ErrInvalidDictionary, entry.ID, dimension)
			}

			forward[entry.Value] = entry.ID
			reverse[entry.ID] = entry.Value
		}
	}

	return ix, nil
}
