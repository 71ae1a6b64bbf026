package xbase

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/mkfoss/xbase/internal/core"
)

// Table is the engine of §4.6: it owns the file handle(s), the header, the
// schema, and the memo store, and exposes the public table-level
// operations. Grounded on pkg/gocore/data4.go (open/navigate),
// pkg/gocore/write4.go (append/write/delete/pack), and
// pkg/gocore/create4.go (create/schema emission), generalized across all
// five dialects via internal/core instead of one hardcoded format.
type Table struct {
	cursor

	config   Config
	path     string
	memoPath string

	file     *os.File
	mmapData mmap.MMap
	readOnly bool
	closed   bool

	// materializedRecords holds every record's bytes in memory once
	// Close(keepTable=true, ...) has run, letting Read/readRecordBytes
	// keep serving a closed table instead of hitting the released file.
	materializedRecords [][]byte

	memos core.MemoStore

	dialect  core.Dialect
	codepage core.Codepage
	header   *core.Header

	fields     []core.FieldDescriptor
	fieldIndex map[string]int

	recordCount  int
	recordLength int

	blank []byte

	backedUp bool

	observers []structureObserver
}

// structureObserver receives notifications when the table's record
// numbering shifts (pack) or the table closes, letting lists and indexes
// react without keeping the table alive themselves.
type structureObserver interface {
	notifyPack(t *Table, remap map[int]int)
	notifyClose(t *Table)
}

// FieldSpec describes one field to create, in the `name TYPE(length,decimals) [flags]`
// shape §4.6's add_fields documents.
type FieldSpec struct {
	Name     string
	Type     core.FieldType
	Length   int
	Decimals int
	Flags    core.FieldFlag
}

// ParseFieldSpec parses a single field specification string such as
// "qty N(11,5)" or "notes M binary".
func ParseFieldSpec(spec string) (FieldSpec, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return FieldSpec{}, NewFieldSpecError("empty field specification")
	}
	name := strings.ToUpper(fields[0])
	if len(fields) < 2 {
		return FieldSpec{}, NewFieldSpecError(fmt.Sprintf("%s: missing type", name))
	}
	typeSpec := fields[1]
	typeLetter := core.FieldType(strings.ToUpper(typeSpec)[0])
	if !typeLetter.Valid() {
		return FieldSpec{}, NewFieldSpecError(fmt.Sprintf("%s: unknown field type %q", name, string(typeLetter)))
	}
	length, decimals := defaultLengthFor(typeLetter)
	if open := strings.IndexByte(typeSpec, '('); open >= 0 {
		close := strings.IndexByte(typeSpec, ')')
		if close < open {
			return FieldSpec{}, NewFieldSpecError(fmt.Sprintf("%s: malformed length spec", name))
		}
		parts := strings.Split(typeSpec[open+1:close], ",")
		if n, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
			length = n
		}
		if len(parts) > 1 {
			if d, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
				decimals = d
			}
		}
	}
	var flags core.FieldFlag
	for _, tok := range fields[2:] {
		switch strings.ToLower(tok) {
		case "null", "nullable":
			flags |= core.FlagNullable
		case "binary", "nocptrans":
			flags |= core.FlagBinary
		case "system":
			flags |= core.FlagSystem
		}
	}
	return FieldSpec{Name: name, Type: typeLetter, Length: length, Decimals: decimals, Flags: flags}, nil
}

func defaultLengthFor(t core.FieldType) (length, decimals int) {
	switch t {
	case core.Character:
		return 1, 0
	case core.Numeric, core.Float:
		return 10, 0
	case core.Integer:
		return 4, 0
	case core.Currency, core.Double, core.DateTime:
		return 8, 0
	case core.Date:
		return 8, 0
	case core.Logical:
		return 1, 0
	case core.Memo, core.General, core.Picture:
		return 10, 0
	default:
		return 1, 0
	}
}

// CreateTable creates a new on-disk table with the given schema.
func CreateTable(path string, specs []FieldSpec, dialect core.Dialect, codepage core.Codepage, cfg Config) (*Table, error) {
	if len(specs) == 0 {
		return nil, NewFieldSpecError("a table needs at least one field")
	}
	if dialect == core.DialectUnknown {
		dialect = cfg.Dialect
	}
	seen := map[string]bool{}
	fields := make([]core.FieldDescriptor, 0, len(specs))
	hasMemo := false
	for _, s := range specs {
		if seen[s.Name] {
			return nil, NewFieldSpecError(fmt.Sprintf("%s: duplicate field name", s.Name))
		}
		seen[s.Name] = true
		fields = append(fields, core.FieldDescriptor{
			Name: s.Name, Type: s.Type, Length: s.Length, Decimals: s.Decimals, Flags: s.Flags,
		})
		if s.Type.IsMemoClass() {
			hasMemo = true
		}
	}
	core.AssignOffsets(fields)
	recordLength := core.RecordLength(fields)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, Wrap(err, "create table")
	}

	hdr := &core.Header{
		VersionByte:  core.VersionForDialect(dialect, hasMemo),
		Dialect:      dialect,
		HasMemo:      hasMemo,
		LastUpdate:   time.Now(),
		RecordCount:  0,
		HeaderLength: core.ComputeHeaderLength(dialect, len(fields)),
		RecordLength: uint16(recordLength),
		Codepage:     codepage,
	}
	headerBytes := core.WriteHeader(hdr, fields)
	if _, err := f.WriteAt(headerBytes, 0); err != nil {
		f.Close()
		return nil, Wrap(err, "write header")
	}

	t := &Table{
		config:       cfg,
		path:         path,
		file:         f,
		dialect:      dialect,
		codepage:     codepage,
		header:       hdr,
		fields:       fields,
		recordLength: recordLength,
	}
	t.cursor = newCursor(func() int { return t.recordCount })
	t.buildFieldIndex()

	if hasMemo {
		if err := t.createMemoStore(); err != nil {
			f.Close()
			return nil, err
		}
	}
	t.blank = t.computeBlank()
	t.Top()
	return t, nil
}

func (t *Table) buildFieldIndex() {
	t.fieldIndex = make(map[string]int, len(t.fields))
	for i, fd := range t.fields {
		t.fieldIndex[strings.ToUpper(fd.Name)] = i
	}
}

func (t *Table) createMemoStore() error {
	mp := memoPathFor(t.path, t.dialect)
	mf, err := os.OpenFile(mp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return Wrap(err, "create memo file")
	}
	t.memoPath = mp
	var status core.Status
	if t.dialect == core.VisualFoxPro || t.dialect == core.FoxPro2 {
		t.memos, status = core.CreateVFPMemoStore(mf, t.config.VFPMemoBlockSizeMultiplier)
	} else {
		t.memos, status = core.CreateDB3MemoStore(mf)
	}
	if status != core.StatusOK {
		mf.Close()
		return NewBadDataError("failed to initialize memo store", status)
	}
	return nil
}

// ensureMemoStore lazily creates a memo store for a table whose schema
// gained a memo-typed field after creation (via add_fields).
func (t *Table) ensureMemoStore() error {
	if t.memos != nil {
		return nil
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.header.HasMemo = true
	t.header.VersionByte = core.VersionForDialect(t.dialect, true)
	return t.createMemoStore()
}

func memoPathFor(tablePath string, d core.Dialect) string {
	ext := d.MemoExtension()
	base := strings.TrimSuffix(tablePath, filepath.Ext(tablePath))
	return base + ext
}

// OpenTable opens an existing table file.
func OpenTable(path string, readOnly bool, cfg Config) (*Table, error) {
	flag := os.O_RDWR
	if readOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, Wrap(err, "open table")
	}

	probe := make([]byte, 4096)
	n, err := f.ReadAt(probe, 0)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, Wrap(err, "read header")
	}
	hdr, fields, _, status := core.ParseHeader(probe[:n])
	if status != core.StatusOK {
		f.Close()
		return nil, NewTableStateError(fmt.Sprintf("unrecognized or corrupt header: %s", status))
	}

	t := &Table{
		config:       cfg,
		path:         path,
		file:         f,
		readOnly:     readOnly,
		dialect:      hdr.Dialect,
		codepage:     hdr.Codepage,
		header:       hdr,
		fields:       fields,
		recordLength: int(hdr.RecordLength),
		recordCount:  int(hdr.RecordCount),
	}
	t.cursor = newCursor(func() int { return t.recordCount })
	t.buildFieldIndex()

	hasMemo := hdr.HasMemo
	if hdr.Dialect == core.VisualFoxPro {
		// The Visual FoxPro version byte carries no memo bit; a memo-class
		// field is what says the table has a memo file.
		for _, fd := range fields {
			if fd.Type.IsMemoClass() {
				hasMemo = true
			}
		}
	}
	if hasMemo {
		if err := t.openMemoStore(); err != nil {
			f.Close()
			return nil, err
		}
	} else {
		for _, fd := range fields {
			if fd.Type.IsMemoClass() {
				f.Close()
				return nil, NewTableStateError("schema has memo-typed fields but header has no memo flag")
			}
		}
	}

	if readOnly {
		data, merr := mmap.Map(f, mmap.RDONLY, 0)
		if merr == nil {
			t.mmapData = data
		}
	}

	t.blank = t.computeBlank()
	t.Top()
	return t, nil
}

func (t *Table) openMemoStore() error {
	mp := memoPathFor(t.path, t.dialect)
	flag := os.O_RDWR
	if t.readOnly {
		flag = os.O_RDONLY
	}
	mf, err := os.OpenFile(mp, flag, 0)
	if err != nil {
		return Wrap(err, "open memo file: memo flag set but file missing or unreadable")
	}
	t.memoPath = mp
	var status core.Status
	if t.dialect == core.VisualFoxPro || t.dialect == core.FoxPro2 {
		t.memos, status = core.OpenVFPMemoStore(mf)
	} else {
		t.memos, status = core.OpenDB3MemoStore(mf)
	}
	if status != core.StatusOK {
		mf.Close()
		return NewBadDataError("memo file is corrupt", status)
	}
	return nil
}

// OpenTableIgnoringMemos opens a table but never opens its memo file;
// memo-typed fields then read back as empty, per S4.
func OpenTableIgnoringMemos(path string, cfg Config) (*Table, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, Wrap(err, "open table")
	}
	probe := make([]byte, 4096)
	n, err := f.ReadAt(probe, 0)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, Wrap(err, "read header")
	}
	hdr, fields, _, status := core.ParseHeader(probe[:n])
	if status != core.StatusOK {
		f.Close()
		return nil, NewTableStateError(fmt.Sprintf("unrecognized or corrupt header: %s", status))
	}
	t := &Table{
		config:       cfg,
		path:         path,
		file:         f,
		readOnly:     true,
		dialect:      hdr.Dialect,
		codepage:     hdr.Codepage,
		header:       hdr,
		fields:       fields,
		recordLength: int(hdr.RecordLength),
		recordCount:  int(hdr.RecordCount),
	}
	t.cursor = newCursor(func() int { return t.recordCount })
	t.buildFieldIndex()
	t.blank = t.computeBlank()
	t.Top()
	return t, nil
}

func (t *Table) computeBlank() []byte {
	buf := make([]byte, t.recordLength)
	buf[0] = statusActive
	for _, fd := range t.fields {
		empty := core.EmptyFieldBytes(fd, t.dialect)
		copy(buf[fd.Start:fd.Start+fd.Length], empty)
	}
	return buf
}

func (t *Table) blankTemplate() []byte {
	return t.blank
}

// checkWritable guards every mutating operation: a closed table rejects
// all further writes regardless of keepTable/keepMemos, and a table opened
// read-only rejects them independently of closed state.
func (t *Table) checkWritable() error {
	if t.closed {
		return NewTableStateError("table is closed")
	}
	if t.readOnly {
		return NewTableStateError("table is read-only")
	}
	return nil
}

func (t *Table) fieldByName(name string) (core.FieldDescriptor, int, error) {
	idx, ok := t.fieldIndex[strings.ToUpper(name)]
	if !ok {
		return core.FieldDescriptor{}, 0, NewFieldMissingError(name)
	}
	return t.fields[idx], idx, nil
}

// FieldNames returns the schema's field names in declaration order.
func (t *Table) FieldNames() []string {
	names := make([]string, len(t.fields))
	for i, fd := range t.fields {
		names[i] = fd.Name
	}
	return names
}

// Structure returns the schema's field descriptors, for introspection.
func (t *Table) Structure() []core.FieldDescriptor {
	return append([]core.FieldDescriptor{}, t.fields...)
}

// FieldInfo returns one field's descriptor by name.
func (t *Table) FieldInfo(name string) (core.FieldDescriptor, error) {
	fd, _, err := t.fieldByName(name)
	return fd, err
}

func (t *Table) Codepage() core.Codepage   { return t.codepage }
func (t *Table) Dialect() core.Dialect     { return t.dialect }
func (t *Table) RecordCount() int          { return t.recordCount }
func (t *Table) RecordLength() int         { return t.recordLength }
func (t *Table) IsReadOnly() bool          { return t.readOnly }
func (t *Table) Path() string              { return t.path }

// recordOrVapor resolves a cursor position to a record, or VaporRecord at
// either sentinel boundary.
func (t *Table) recordOrVapor(i int) (*Record, error) {
	if i < 0 || i >= t.recordCount {
		return VaporRecord, nil
	}
	return t.Read(i)
}

// CurrentRecord returns the record at the cursor's current position, or
// VaporRecord if positioned at a sentinel.
func (t *Table) CurrentRecord() (*Record, error) { return t.recordOrVapor(t.Position()) }

// PrevRecord returns the record just before the cursor's current position.
func (t *Table) PrevRecord() (*Record, error) { return t.recordOrVapor(t.Position() - 1) }

// NextRecord returns the record just after the cursor's current position.
func (t *Table) NextRecord() (*Record, error) { return t.recordOrVapor(t.Position() + 1) }

func (t *Table) recordOffset(i int) int64 {
	return int64(t.header.HeaderLength) + int64(i)*int64(t.recordLength)
}

func (t *Table) readRecordBytes(i int) ([]byte, error) {
	if t.materializedRecords != nil {
		if i < 0 || i >= len(t.materializedRecords) {
			return nil, NewNotFoundError("record index out of range", i)
		}
		return append([]byte{}, t.materializedRecords[i]...), nil
	}
	if t.closed {
		return nil, NewTableStateError("table is closed")
	}
	buf := make([]byte, t.recordLength)
	offset := t.recordOffset(i)
	if t.mmapData != nil {
		if int(offset)+t.recordLength > len(t.mmapData) {
			return nil, NewNotFoundError("record index out of range", i)
		}
		copy(buf, t.mmapData[offset:offset+int64(t.recordLength)])
		return buf, nil
	}
	if _, err := t.file.ReadAt(buf, offset); err != nil {
		return nil, Wrap(err, "read record")
	}
	return buf, nil
}

// Read returns the record at 0-based index i. Negative indices count from
// the end, per §4.6's indexing contract.
func (t *Table) Read(i int) (*Record, error) {
	if i < 0 {
		i += t.recordCount
	}
	if i < 0 || i >= t.recordCount {
		return nil, NewNotFoundError("record index out of range", i)
	}
	buf, err := t.readRecordBytes(i)
	if err != nil {
		return nil, err
	}
	return newRecord(t, i, buf), nil
}

// flushRecord writes a record's current buffer back to disk immediately.
// Called by Record after every non-flux field write, and on flux commit.
func (t *Table) flushRecord(r *Record) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if _, err := t.file.WriteAt(r.buf, t.recordOffset(r.number)); err != nil {
		return Wrap(err, "write record")
	}
	return nil
}

// Append adds a new record. values may be nil (blank template), a
// map[string]interface{}, or another *Record to copy by value. Unknown
// map keys raise FieldMissingError unless dropUnknown is set.
func (t *Table) Append(values interface{}, dropUnknown bool) (*Record, error) {
	recs, err := t.AppendMultiple(values, 1, dropUnknown)
	if err != nil {
		return nil, err
	}
	return recs[len(recs)-1], nil
}

// AppendMultiple appends `multiple` copies of the formed record. Memo
// payloads present in values are written once and the resulting block
// number is shared across every copy, per §4.6.
func (t *Table) AppendMultiple(values interface{}, multiple int, dropUnknown bool) ([]*Record, error) {
	if err := t.checkWritable(); err != nil {
		return nil, err
	}
	if multiple < 1 {
		return nil, NewFieldSpecError("multiple must be >= 1")
	}
	buf := append([]byte{}, t.blank...)
	seed := newRecord(t, t.recordCount, buf)

	switch v := values.(type) {
	case nil:
		// blank
	case map[string]interface{}:
		if err := seed.Gather(v, dropUnknown); err != nil {
			return nil, err
		}
	case *Record:
		if err := seed.Gather(mustScatter(v), dropUnknown); err != nil {
			return nil, err
		}
	default:
		return nil, NewFieldSpecError(fmt.Sprintf("unsupported append payload type %T", values))
	}

	out := make([]*Record, 0, multiple)
	startOffset := t.recordOffset(t.recordCount)
	for i := 0; i < multiple; i++ {
		offset := startOffset + int64(i)*int64(t.recordLength)
		if _, err := t.file.WriteAt(buf, offset); err != nil {
			return nil, Wrap(err, "append record")
		}
		out = append(out, newRecord(t, t.recordCount+i, append([]byte{}, buf...)))
	}
	t.recordCount += multiple
	t.header.RecordCount = uint32(t.recordCount)
	if err := t.writeEOFAndHeader(); err != nil {
		return nil, err
	}
	return out, nil
}

func mustScatter(r *Record) map[string]interface{} {
	m, _ := r.Scatter()
	return m
}

func (t *Table) writeEOFAndHeader() error {
	t.header.LastUpdate = time.Now()
	headerBytes := core.WriteHeader(t.header, t.fields)
	if _, err := t.file.WriteAt(headerBytes, 0); err != nil {
		return Wrap(err, "rewrite header")
	}
	eofOffset := t.recordOffset(t.recordCount)
	if _, err := t.file.WriteAt([]byte{fileEOFMarkerByte}, eofOffset); err != nil {
		return Wrap(err, "write eof marker")
	}
	return t.file.Sync()
}

const fileEOFMarkerByte = 0x1A

// Delete marks record i as logically deleted.
func (t *Table) Delete(i int) error {
	return t.setStatusFlag(i, statusDeleted)
}

// Undelete clears record i's deleted flag.
func (t *Table) Undelete(i int) error {
	return t.setStatusFlag(i, statusActive)
}

func (t *Table) setStatusFlag(i int, flag byte) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if i < 0 || i >= t.recordCount {
		return NewNotFoundError("record index out of range", i)
	}
	if _, err := t.file.WriteAt([]byte{flag}, t.recordOffset(i)); err != nil {
		return Wrap(err, "write status flag")
	}
	return t.file.Sync()
}

// IsDeleted reports record i's deleted flag without materializing a full
// Record.
func (t *Table) IsDeleted(i int) (bool, error) {
	if t.materializedRecords != nil {
		if i < 0 || i >= len(t.materializedRecords) {
			return false, NewNotFoundError("record index out of range", i)
		}
		return t.materializedRecords[i][0] == statusDeleted, nil
	}
	if t.closed {
		return false, NewTableStateError("table is closed")
	}
	var b [1]byte
	if _, err := t.file.ReadAt(b[:], t.recordOffset(i)); err != nil {
		return false, Wrap(err, "read status flag")
	}
	return b[0] == statusDeleted, nil
}

// Pack rewrites the file with all logically-deleted records removed and
// returns the old-to-new record id map (dropped ids map to -1), per §4.6
// and invariant 8.
func (t *Table) Pack() (map[int]int, error) {
	if err := t.checkWritable(); err != nil {
		return nil, err
	}
	remap := make(map[int]int, t.recordCount)
	newIndex := 0
	buf := make([]byte, t.recordLength)
	for i := 0; i < t.recordCount; i++ {
		if _, err := t.file.ReadAt(buf, t.recordOffset(i)); err != nil {
			return nil, Wrap(err, "pack: read record")
		}
		if buf[0] == statusDeleted {
			remap[i] = -1
			continue
		}
		if newIndex != i {
			if _, err := t.file.WriteAt(buf, t.recordOffset(newIndex)); err != nil {
				return nil, Wrap(err, "pack: rewrite record")
			}
		}
		remap[i] = newIndex
		newIndex++
	}
	t.recordCount = newIndex
	t.header.RecordCount = uint32(newIndex)
	if err := t.writeEOFAndHeader(); err != nil {
		return nil, err
	}
	if err := t.file.Truncate(t.recordOffset(newIndex) + 1); err != nil {
		return nil, Wrap(err, "pack: truncate")
	}
	for _, obs := range t.observers {
		obs.notifyPack(t, remap)
	}
	t.Top()
	return remap, nil
}

// addObserver registers a list or index for pack/close notifications.
func (t *Table) addObserver(o structureObserver) {
	t.observers = append(t.observers, o)
}

// AddFields appends new field descriptors to the schema and extends every
// existing record with the new fields' empty values, per §4.6.
func (t *Table) AddFields(specs []FieldSpec) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	newFields := make([]core.FieldDescriptor, 0, len(specs))
	needsMemo := false
	for _, s := range specs {
		if _, exists := t.fieldIndex[s.Name]; exists {
			return NewFieldSpecError(fmt.Sprintf("%s: field already exists", s.Name))
		}
		newFields = append(newFields, core.FieldDescriptor{
			Name: s.Name, Type: s.Type, Length: s.Length, Decimals: s.Decimals, Flags: s.Flags,
		})
		if s.Type.IsMemoClass() {
			needsMemo = true
		}
	}
	allFields := append(append([]core.FieldDescriptor{}, t.fields...), newFields...)
	core.AssignOffsets(allFields)
	newRecordLength := core.RecordLength(allFields)

	if err := t.rewriteAllRecords(allFields, newRecordLength, nil); err != nil {
		return err
	}
	t.fields = allFields
	t.recordLength = newRecordLength
	t.buildFieldIndex()
	t.blank = t.computeBlank()

	if needsMemo && t.memos == nil {
		if err := t.ensureMemoStore(); err != nil {
			return err
		}
	}
	t.header.HeaderLength = core.ComputeHeaderLength(t.dialect, len(t.fields))
	t.header.RecordLength = uint16(t.recordLength)
	return t.writeEOFAndHeader()
}

// DeleteFields removes the named fields from the schema, collapsing every
// record. A backup is created once per table unless already made.
func (t *Table) DeleteFields(names []string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if !t.backedUp {
		if err := t.CreateBackup(false); err != nil {
			return err
		}
		t.backedUp = true
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[strings.ToUpper(n)] = true
	}
	remaining := make([]core.FieldDescriptor, 0, len(t.fields))
	for _, fd := range t.fields {
		if drop[strings.ToUpper(fd.Name)] {
			continue
		}
		remaining = append(remaining, fd)
	}
	core.AssignOffsets(remaining)
	newRecordLength := core.RecordLength(remaining)

	if err := t.rewriteAllRecords(remaining, newRecordLength, t.fields); err != nil {
		return err
	}
	t.fields = remaining
	t.recordLength = newRecordLength
	t.buildFieldIndex()
	t.blank = t.computeBlank()
	t.header.HeaderLength = core.ComputeHeaderLength(t.dialect, len(t.fields))
	t.header.RecordLength = uint16(t.recordLength)
	return t.writeEOFAndHeader()
}

// rewriteAllRecords re-lays-out every record's bytes for a new field set.
// oldFields, if non-nil, is the schema to decode the existing bytes under
// (delete_fields); if nil, the old schema is t.fields itself (add_fields).
// rewriteAllRecords relays out every record for a new field set, whose
// header length (driven by the new field-descriptor count) may differ
// from the table's current one. All old records are read into memory
// before any are written, since the new record area can overlap the old
// one once the header length changes.
func (t *Table) rewriteAllRecords(newFields []core.FieldDescriptor, newLength int, oldFields []core.FieldDescriptor) error {
	if oldFields == nil {
		oldFields = t.fields
	}
	oldByName := make(map[string]core.FieldDescriptor, len(oldFields))
	for _, fd := range oldFields {
		oldByName[strings.ToUpper(fd.Name)] = fd
	}
	newHeaderLength := core.ComputeHeaderLength(t.dialect, len(newFields))

	oldRecords := make([][]byte, t.recordCount)
	for i := 0; i < t.recordCount; i++ {
		buf := make([]byte, t.recordLength)
		if _, err := t.file.ReadAt(buf, t.recordOffset(i)); err != nil {
			return Wrap(err, "schema rewrite: read record")
		}
		oldRecords[i] = buf
	}

	for i, oldBuf := range oldRecords {
		newBuf := make([]byte, newLength)
		newBuf[0] = oldBuf[0]
		for _, nfd := range newFields {
			if ofd, ok := oldByName[strings.ToUpper(nfd.Name)]; ok {
				n := ofd.Length
				if n > nfd.Length {
					n = nfd.Length
				}
				copy(newBuf[nfd.Start:nfd.Start+n], oldBuf[ofd.Start:ofd.Start+n])
				if n < nfd.Length {
					fill := core.EmptyFieldBytes(nfd, t.dialect)
					copy(newBuf[nfd.Start+n:nfd.Start+nfd.Length], fill[n:])
				}
			} else {
				empty := core.EmptyFieldBytes(nfd, t.dialect)
				copy(newBuf[nfd.Start:nfd.Start+nfd.Length], empty)
			}
		}
		newOffset := int64(newHeaderLength) + int64(i)*int64(newLength)
		if _, err := t.file.WriteAt(newBuf, newOffset); err != nil {
			return Wrap(err, "schema rewrite: write record")
		}
	}
	t.header.HeaderLength = newHeaderLength
	return nil
}

// RenameField updates a field descriptor's name only.
func (t *Table) RenameField(oldName, newName string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	idx, ok := t.fieldIndex[strings.ToUpper(oldName)]
	if !ok {
		return NewFieldMissingError(oldName)
	}
	newUpper := strings.ToUpper(newName)
	if !isStandardFieldName(newUpper) {
		if t.config.StrictFieldNames {
			return NewFieldSpecError(newUpper + ": field name contains non-standard characters")
		}
		t.config.logger().Warnf("%s: non-standard characters in field name", newUpper)
	}
	t.fields[idx].Name = newUpper
	t.buildFieldIndex()
	return t.writeEOFAndHeader()
}

func isStandardFieldName(name string) bool {
	if name == "" || len(name) > 10 {
		return false
	}
	if name[0] == '_' || (name[0] >= '0' && name[0] <= '9') {
		return false
	}
	for _, c := range name {
		if !(c == '_' || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

// ResizeField changes a field's byte length, re-encoding every record's
// value for that field.
func (t *Table) ResizeField(name string, newLength int) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	idx, ok := t.fieldIndex[strings.ToUpper(name)]
	if !ok {
		return NewFieldMissingError(name)
	}
	oldFields := append([]core.FieldDescriptor{}, t.fields...)
	resized := t.fields[idx]
	resized.Length = newLength
	newFields := append([]core.FieldDescriptor{}, t.fields...)
	newFields[idx] = resized
	core.AssignOffsets(newFields)
	newRecordLength := core.RecordLength(newFields)

	if err := t.rewriteAllRecords(newFields, newRecordLength, oldFields); err != nil {
		return err
	}
	t.fields = newFields
	t.recordLength = newRecordLength
	t.buildFieldIndex()
	t.blank = t.computeBlank()
	t.header.RecordLength = uint16(t.recordLength)
	return t.writeEOFAndHeader()
}

// CreateBackup copies the table file byte-for-byte to <name>_backup<ext>,
// in Config.BackupDir if set, otherwise next to the table file.
func (t *Table) CreateBackup(overwrite bool) error {
	if t.closed {
		return NewTableStateError("table is closed")
	}
	ext := filepath.Ext(t.path)
	base := strings.TrimSuffix(filepath.Base(t.path), ext)
	dir := t.config.BackupDir
	if dir == "" {
		dir = filepath.Dir(t.path)
	}
	backupPath := filepath.Join(dir, base+"_backup"+ext)
	flag := os.O_RDWR | os.O_CREATE
	if !overwrite {
		flag |= os.O_EXCL
	} else {
		flag |= os.O_TRUNC
	}
	dst, err := os.OpenFile(backupPath, flag, 0644)
	if err != nil {
		return Wrap(err, "create backup")
	}
	defer dst.Close()
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return Wrap(err, "create backup: seek source")
	}
	if _, err := io.Copy(dst, t.file); err != nil {
		return Wrap(err, "create backup: copy")
	}
	return nil
}

// Close flushes pending state and releases the file handle(s), per §4.6.
// If keepTable is set, every record is read into memory first, so Read and
// cursor navigation keep working in a read-only capacity after close.  If
// keepMemos is set, every memo block any record currently references is
// likewise read into memory and served from there; a memo write after
// Close always fails regardless of keepMemos, since the underlying memo
// file is released either way.
func (t *Table) Close(keepTable, keepMemos bool) error {
	if t.closed {
		return nil
	}
	if keepTable {
		if err := t.materializeRecords(); err != nil {
			return err
		}
	}
	if keepMemos {
		if err := t.materializeMemos(); err != nil {
			return err
		}
	}
	for _, obs := range t.observers {
		obs.notifyClose(t)
	}
	var firstErr error
	if t.mmapData != nil {
		if err := t.mmapData.Unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
		t.mmapData = nil
	}
	if t.memos != nil {
		if err := t.memos.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := t.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	t.closed = true
	return firstErr
}

// materializeRecords reads every record's bytes into memory so later reads
// no longer touch t.file.
func (t *Table) materializeRecords() error {
	records := make([][]byte, t.recordCount)
	for i := 0; i < t.recordCount; i++ {
		buf, err := t.readRecordBytes(i)
		if err != nil {
			return err
		}
		records[i] = buf
	}
	t.materializedRecords = records
	return nil
}

// materializeMemos reads every memo block currently referenced by a
// record into memory and swaps t.memos for a read-only store backed by
// that cache, then releases the real memo file; further memo reads are
// served from the cache and memo writes fail.
func (t *Table) materializeMemos() error {
	if t.memos == nil {
		return nil
	}
	blocks := make(map[int32][]byte)
	source := t.materializedRecords
	if source == nil {
		full := make([][]byte, t.recordCount)
		for i := 0; i < t.recordCount; i++ {
			buf, err := t.readRecordBytes(i)
			if err != nil {
				return err
			}
			full[i] = buf
		}
		source = full
	}
	for _, buf := range source {
		for _, fd := range t.fields {
			if !fd.Type.IsMemoClass() {
				continue
			}
			raw := buf[fd.Start : fd.Start+fd.Length]
			block := core.DecodeMemoBlock(raw, t.dialect)
			if block == 0 {
				continue
			}
			if _, ok := blocks[block]; ok {
				continue
			}
			payload, status := t.memos.Read(block)
			if status != core.StatusOK {
				return WrapBadDataError(fmt.Sprintf("materialize: memo block %d unreadable", block), nil)
			}
			blocks[block] = payload
		}
	}
	blockSize := t.memos.BlockSize()
	if err := t.memos.Close(); err != nil {
		return Wrap(err, "materialize: close memo store")
	}
	t.memos = &memoryMemoStore{blocks: blocks, blockSize: blockSize}
	return nil
}
