package xbase

import (
	"fmt"
	"sort"
)

// Key is an index's ordered comparison key. A non-tuple user key is
// wrapped into a length-1 Key by IndexKeyFunc's caller convention.
type Key []interface{}

// IndexKeyFunc computes a record's index key. Returning ErrDoNotIndex
// suppresses the record from the index entirely, per the skip-index
// sentinel in the glossary.
type IndexKeyFunc func(*Record) (Key, error)

// Index is a brute-force in-memory sorted (key, record-id) sequence over
// one table, per §4.9. Grounded on original_source/tables.py's Index
// class: parallel _values/_rec_by_val arrays maintained with
// bisect_left/bisect_right, translated to sort.Search. The persistent
// .idx/.cdx on-disk index format that class also touches is out of scope
// (see DESIGN.md) and not reflected here.
type Index struct {
	cursor
	table    *Table
	keyFn    IndexKeyFunc
	values   []Key
	recByVal []int
	byRecord map[int]Key
}

// NewIndex builds an index over every record of table, in table order,
// applying keyFn to each and skipping those that return ErrDoNotIndex.
func NewIndex(table *Table, keyFn IndexKeyFunc) (*Index, error) {
	idx := &Index{table: table, keyFn: keyFn, byRecord: map[int]Key{}}
	for i := 0; i < table.recordCount; i++ {
		r, err := table.Read(i)
		if err != nil {
			return nil, err
		}
		if err := idx.insert(r); err != nil {
			return nil, err
		}
	}
	table.addObserver(idx)
	idx.cursor = newCursor(func() int { return len(idx.values) })
	return idx, nil
}

func (idx *Index) recordOrVapor(i int) (*Record, error) {
	if i < 0 || i >= len(idx.recByVal) {
		return VaporRecord, nil
	}
	return idx.table.Read(idx.recByVal[i])
}

// CurrentRecord returns the record at the cursor's current position in
// key order, or VaporRecord if positioned at a sentinel.
func (idx *Index) CurrentRecord() (*Record, error) { return idx.recordOrVapor(idx.Position()) }

// PrevRecord returns the record just before the cursor's current position
// in key order.
func (idx *Index) PrevRecord() (*Record, error) { return idx.recordOrVapor(idx.Position() - 1) }

// NextRecord returns the record just after the cursor's current position
// in key order.
func (idx *Index) NextRecord() (*Record, error) { return idx.recordOrVapor(idx.Position() + 1) }

func (idx *Index) insert(r *Record) error {
	key, err := idx.keyFn(r)
	if err != nil {
		if _, ok := err.(*DoNotIndex); ok {
			return nil
		}
		return err
	}
	pos := bisectRight(idx.values, key)
	idx.values = append(idx.values, nil)
	copy(idx.values[pos+1:], idx.values[pos:])
	idx.values[pos] = key

	idx.recByVal = append(idx.recByVal, 0)
	copy(idx.recByVal[pos+1:], idx.recByVal[pos:])
	idx.recByVal[pos] = r.RecordNumber()

	idx.byRecord[r.RecordNumber()] = key
	return nil
}

func (idx *Index) removeAt(pos int) {
	idx.values = append(idx.values[:pos], idx.values[pos+1:]...)
	idx.recByVal = append(idx.recByVal[:pos], idx.recByVal[pos+1:]...)
}

// Update is the index's incremental-maintenance hook (§4.9's __call__):
// recompute the record's key; no-op if unchanged; otherwise remove the
// old entry and insert the new one.
func (idx *Index) Update(r *Record) error {
	recNum := r.RecordNumber()
	if oldKey, ok := idx.byRecord[recNum]; ok {
		pos := bisectLeft(idx.values, oldKey)
		for pos < len(idx.values) && idx.recByVal[pos] != recNum {
			pos++
		}
		if pos < len(idx.values) {
			idx.removeAt(pos)
		}
		delete(idx.byRecord, recNum)
	}
	return idx.insert(r)
}

// Reindex fully rebuilds the index from the current table contents.
func (idx *Index) Reindex() error {
	idx.values = nil
	idx.recByVal = nil
	idx.byRecord = map[int]Key{}
	for i := 0; i < idx.table.recordCount; i++ {
		r, err := idx.table.Read(i)
		if err != nil {
			return err
		}
		if err := idx.insert(r); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Index) Len() int { return len(idx.values) }

// Search returns every record whose key equals match; with partial set,
// it additionally matches records whose key is a documented prefix match
// of match (per-element, honoring string truncation).
func (idx *Index) Search(match Key, partial bool) ([]*Record, error) {
	var out []*Record
	loc := bisectLeft(idx.values, match)
	for loc < len(idx.values) && keysEqual(idx.values[loc], match) {
		r, err := idx.table.Read(idx.recByVal[loc])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
		loc++
	}
	if partial {
		for loc < len(idx.values) && partialMatch(idx.values[loc], match) {
			r, err := idx.table.Read(idx.recByVal[loc])
			if err != nil {
				return nil, err
			}
			out = append(out, r)
			loc++
		}
	}
	return out, nil
}

// IndexSearch returns the position of the first (partial) match, or a
// NotFoundError.
func (idx *Index) IndexSearch(match Key, partial bool) (int, error) {
	loc := bisectLeft(idx.values, match)
	if loc < len(idx.values) && keysEqual(idx.values[loc], match) {
		return loc, nil
	}
	if partial && loc < len(idx.values) && partialMatch(idx.values[loc], match) {
		return loc, nil
	}
	return -1, NewNotFoundError(fmt.Sprintf("match criteria %v not in index", match), match)
}

// Query returns every record, in key order, for which predicate returns
// true. It is a simplified, Go-native stand-in for original_source/tables.py's
// SQL-ish Index.query: a predicate function replaces the embedded query
// language, keeping the same "build me the matches" capability without
// parsing a DSL.
func (idx *Index) Query(predicate func(*Record) bool) ([]*Record, error) {
	var out []*Record
	for _, recNum := range idx.recByVal {
		r, err := idx.table.Read(recNum)
		if err != nil {
			return nil, err
		}
		if predicate(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (idx *Index) notifyPack(packed *Table, remap map[int]int) {
	if packed != idx.table {
		return
	}
	newRecByVal := make([]int, 0, len(idx.recByVal))
	newValues := make([]Key, 0, len(idx.values))
	newByRecord := make(map[int]Key, len(idx.byRecord))
	for i, recNum := range idx.recByVal {
		newID, ok := remap[recNum]
		if !ok || newID == -1 {
			continue
		}
		newRecByVal = append(newRecByVal, newID)
		newValues = append(newValues, idx.values[i])
		newByRecord[newID] = idx.values[i]
	}
	idx.recByVal = newRecByVal
	idx.values = newValues
	idx.byRecord = newByRecord
}

func (idx *Index) notifyClose(*Table) {}

// bisectLeft returns the position of the first value >= target (Python's
// bisect.bisect_left).
func bisectLeft(values []Key, target Key) int {
	return sort.Search(len(values), func(i int) bool {
		return compareKeys(values[i], target) >= 0
	})
}

// bisectRight returns the position of the first value > target (Python's
// bisect.bisect_right).
func bisectRight(values []Key, target Key) int {
	return sort.Search(len(values), func(i int) bool {
		return compareKeys(values[i], target) > 0
	})
}

func keysEqual(a, b Key) bool { return compareKeys(a, b) == 0 }

// partialMatch mirrors original_source/tables.py's _partial_match: target
// is truncated to len(match) elements, and if match's final element is a
// string, target's corresponding element is truncated to that string's
// length before comparison.
func partialMatch(target, match Key) bool {
	if len(match) > len(target) {
		return false
	}
	truncated := append(Key{}, target[:len(match)]...)
	if len(match) > 0 {
		if ms, ok := match[len(match)-1].(string); ok {
			if ts, ok := truncated[len(truncated)-1].(string); ok {
				if len(ts) > len(ms) {
					ts = ts[:len(ms)]
				}
				truncated[len(truncated)-1] = ts
			}
		}
	}
	return keysEqual(truncated, match)
}

// compareKeys orders two Keys lexicographically: element by element, with
// a shorter key that is a prefix of a longer one sorting first (Python
// tuple-comparison semantics).
func compareKeys(a, b Key) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func compareValues(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		}
	case float64:
		if bv, ok := toComparableFloat(b); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		}
	case int, int32, int64:
		if av2, ok := toComparableFloat(av); ok {
			if bv, ok := toComparableFloat(b); ok {
				switch {
				case av2 < bv:
					return -1
				case av2 > bv:
					return 1
				default:
					return 0
				}
			}
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func toComparableFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
