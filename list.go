package xbase

import (
	"fmt"
	"sort"
)

// listEntry is one (table, record-id, key) triple, per §4.8.
type listEntry struct {
	table *Table
	recID int
	key   interface{}
}

// KeyFunc computes a List's ordering/membership key for a record. The
// default KeyFunc keys on the record's table and record number, giving
// plain insertion-order set semantics.
type KeyFunc func(*Record) (interface{}, error)

// List is a set-like ordered collection of records drawn from one or more
// tables, keyed by a user-supplied function, per §4.8. Grounded on
// original_source/tables.py's List class: a vector of triples plus a seen
// set for O(1) membership, translated from Python's dynamic list
// operations to explicit Go methods.
type List struct {
	cursor
	entries []listEntry
	seen    map[interface{}]bool
	keyFn   KeyFunc
	tables  map[*Table]bool
}

// NewList creates an empty list using keyFn to compute each entry's key.
// A nil keyFn defaults to keying on (table, record number), which makes
// every record distinct.
func NewList(keyFn KeyFunc) *List {
	l := &List{seen: map[interface{}]bool{}, tables: map[*Table]bool{}}
	if keyFn == nil {
		type tableRecord struct {
			table  *Table
			number int
		}
		keyFn = func(r *Record) (interface{}, error) { return tableRecord{r.table, r.RecordNumber()}, nil }
	}
	l.keyFn = keyFn
	l.cursor = newCursor(func() int { return len(l.entries) })
	return l
}

// NewListFromTable builds a list seeded from every record of table, in
// table order, applying keyFn to each (ErrDoNotIndex suppresses a record
// the same way it does for Append). Grounded on original_source/tables.py's
// List.__init__(table=...) variant, which builds the full set of (table,
// id, key) triples up front rather than starting empty.
func NewListFromTable(table *Table, keyFn KeyFunc) (*List, error) {
	l := NewList(keyFn)
	for i := 0; i < table.recordCount; i++ {
		r, err := table.Read(i)
		if err != nil {
			return nil, err
		}
		if err := l.Append(r); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *List) Len() int { return len(l.entries) }

func (l *List) trackTable(t *Table) {
	if !l.tables[t] {
		l.tables[t] = true
		t.addObserver(l)
	}
}

// Append adds a record to the list if its key isn't already present; it
// is a no-op otherwise, per the set semantics of invariant 11.
func (l *List) Append(r *Record) error {
	key, err := l.keyFn(r)
	if err != nil {
		if _, ok := err.(*DoNotIndex); ok {
			return nil
		}
		return err
	}
	return l.maybeAdd(r.table, r.RecordNumber(), key)
}

func (l *List) maybeAdd(t *Table, recID int, key interface{}) error {
	if l.seen[key] {
		return nil
	}
	l.seen[key] = true
	l.entries = append(l.entries, listEntry{table: t, recID: recID, key: key})
	l.trackTable(t)
	return nil
}

// Extend appends every record of a slice of records.
func (l *List) Extend(records []*Record) error {
	for _, r := range records {
		if err := l.Append(r); err != nil {
			return err
		}
	}
	return nil
}

func (l *List) recordOrVapor(i int) (*Record, error) {
	if i < 0 || i >= len(l.entries) {
		return VaporRecord, nil
	}
	return l.At(i)
}

// CurrentRecord returns the record at the cursor's current position, or
// VaporRecord if positioned at a sentinel.
func (l *List) CurrentRecord() (*Record, error) { return l.recordOrVapor(l.Position()) }

// PrevRecord returns the record just before the cursor's current position.
func (l *List) PrevRecord() (*Record, error) { return l.recordOrVapor(l.Position() - 1) }

// NextRecord returns the record just after the cursor's current position.
func (l *List) NextRecord() (*Record, error) { return l.recordOrVapor(l.Position() + 1) }

// At returns the record at position i by resolving its (table, recID)
// through the owning table.
func (l *List) At(i int) (*Record, error) {
	if i < 0 || i >= len(l.entries) {
		return nil, NewNotFoundError("list index out of range", i)
	}
	e := l.entries[i]
	return e.table.Read(e.recID)
}

// IndexOf returns the position of the first entry whose key equals the
// given record's key, or -1.
func (l *List) IndexOf(r *Record) (int, error) {
	key, err := l.keyFn(r)
	if err != nil {
		return -1, err
	}
	for i, e := range l.entries {
		if e.key == key {
			return i, nil
		}
	}
	return -1, nil
}

// Sort orders the list's entries by key ascending.
func (l *List) Sort() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		return fmt.Sprint(l.entries[i].key) < fmt.Sprint(l.entries[j].key)
	})
}

// Pop removes and returns the record at position i; a negative i counts
// from the end, so -1 is the last entry.
func (l *List) Pop(i int) (*Record, error) {
	if len(l.entries) == 0 {
		return nil, NewNotFoundError("pop from empty list", nil)
	}
	if i < 0 {
		i += len(l.entries)
	}
	if i < 0 || i >= len(l.entries) {
		return nil, NewNotFoundError("list index out of range", i)
	}
	e := l.entries[i]
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	delete(l.seen, e.key)
	return e.table.Read(e.recID)
}

// Remove deletes the first entry whose key equals the given record's key.
func (l *List) Remove(r *Record) error {
	key, err := l.keyFn(r)
	if err != nil {
		return err
	}
	for i, e := range l.entries {
		if e.key == key {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			delete(l.seen, key)
			return nil
		}
	}
	return NewNotFoundError("record not in list", nil)
}

// Union returns a new list containing every entry of l and other; this
// list's key function is used throughout, re-keying other's records.
func (l *List) Union(other *List) (*List, error) {
	result := NewList(l.keyFn)
	for _, e := range l.entries {
		r, err := e.table.Read(e.recID)
		if err != nil {
			return nil, err
		}
		if err := result.Append(r); err != nil {
			return nil, err
		}
	}
	for _, e := range other.entries {
		r, err := e.table.Read(e.recID)
		if err != nil {
			return nil, err
		}
		if err := result.Append(r); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Difference returns a new list containing this list's entries whose key
// does not appear in other.
func (l *List) Difference(other *List) (*List, error) {
	otherKeys := make(map[interface{}]bool, len(other.entries))
	for _, e := range other.entries {
		otherKeys[e.key] = true
	}
	result := NewList(l.keyFn)
	for _, e := range l.entries {
		if otherKeys[e.key] {
			continue
		}
		r, err := e.table.Read(e.recID)
		if err != nil {
			return nil, err
		}
		if err := result.Append(r); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// notifyPack rewrites or drops entries belonging to the packed table,
// satisfying structureObserver. Entries from other tables in a
// multi-table list are untouched.
func (l *List) notifyPack(packed *Table, remap map[int]int) {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.table != packed {
			kept = append(kept, e)
			continue
		}
		newID, tracked := remap[e.recID]
		if !tracked {
			kept = append(kept, e)
			continue
		}
		if newID == -1 {
			delete(l.seen, e.key)
			continue
		}
		e.recID = newID
		kept = append(kept, e)
	}
	l.entries = kept
}

func (l *List) notifyClose(*Table) {}
