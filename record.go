package xbase

import (
	"fmt"
	"strings"

	"github.com/mkfoss/xbase/internal/core"
)

// Record is a fixed-length record buffer bound to one row of one table.
// Byte 0 is the deletion flag; bytes [1, len) are field values in
// descriptor order, matching §4.5. Grounded on the teacher's Data4/record
// handling and original_source/tables.py's _DbfRecord, generalized across
// dialects through the table's core.Dialect rather than hardcoding one.
type Record struct {
	table  *Table
	number int
	buf    []byte

	flux       bool
	fluxShadow []byte
}

const (
	statusActive  byte = ' '
	statusDeleted byte = '*'
)

func newRecord(t *Table, number int, buf []byte) *Record {
	return &Record{table: t, number: number, buf: buf}
}

// VaporRecord is the sentinel value §4.7 and the glossary describe for a
// cursor peek past either end of a collection: it compares unequal to
// every real record and is boolean-false. It carries no table binding, so
// field access on it always fails.
var VaporRecord = &Record{number: -1}

// IsVapor reports whether this record is the navigation sentinel rather
// than a real row.
func (r *Record) IsVapor() bool { return r.table == nil }

// Bool reports the record's truthiness for loop-termination idioms: real
// records are true, VaporRecord is false.
func (r *Record) Bool() bool { return !r.IsVapor() }

// RecordNumber returns the record's stable 0-based index within its table.
func (r *Record) RecordNumber() int { return r.number }

// IsDeleted reports whether the record's status byte is the deleted flag.
func (r *Record) IsDeleted() bool { return r.activeBuf()[0] == statusDeleted }

func (r *Record) activeBuf() []byte {
	if r.flux {
		return r.fluxShadow
	}
	return r.buf
}

// Bytes returns the record's raw on-disk buffer (the committed one, even
// mid-flux).
func (r *Record) Bytes() []byte { return r.buf }

// Get reads a field's decoded value by name.
func (r *Record) Get(name string) (interface{}, error) {
	if r.IsVapor() {
		return nil, NewNotFoundError("vapor record has no fields", name)
	}
	fd, idx, err := r.table.fieldByName(name)
	if err != nil {
		return nil, err
	}
	return r.getField(fd, idx)
}

// GetAt reads a field's decoded value by its 0-based ordinal position.
func (r *Record) GetAt(index int) (interface{}, error) {
	if index < 0 || index >= len(r.table.fields) {
		return nil, NewFieldMissingError(fmt.Sprintf("#%d", index))
	}
	return r.getField(r.table.fields[index], index)
}

func (r *Record) getField(fd core.FieldDescriptor, idx int) (interface{}, error) {
	raw := r.activeBuf()[fd.Start : fd.Start+fd.Length]
	cp := r.table.codepage
	switch fd.Type {
	case core.Character:
		s := core.DecodeCharacter(raw, cp, fd.Binary())
		if !fd.Binary() && r.table.config.RejectNonASCII && cp == core.CodepageDefault {
			for i := 0; i < len(s); i++ {
				if s[i] >= 0x80 {
					return nil, NewNonUnicodeError(fmt.Sprintf("%s: non-ASCII byte 0x%02X without a configured codepage", fd.Name, s[i]))
				}
			}
		}
		return s, nil
	case core.Numeric, core.Float:
		nv := core.DecodeNumeric(raw)
		return nv, nil
	case core.Integer:
		return core.DecodeInteger(raw), nil
	case core.Currency:
		return core.DecodeCurrency(raw), nil
	case core.Double:
		return core.DecodeDouble(raw), nil
	case core.Date:
		return core.DecodeDate(raw), nil
	case core.DateTime:
		return core.DecodeDateTime(raw), nil
	case core.Logical:
		lv, status := core.DecodeLogical(raw)
		if status != core.StatusOK {
			if r.table.config.LenientLogical {
				return core.LogicalUnknown, nil
			}
			return lv, WrapBadDataError(fmt.Sprintf("%s: bad logical byte", fd.Name), nil)
		}
		return lv, nil
	case core.Memo, core.General, core.Picture:
		return r.readMemo(fd, raw)
	default:
		return nil, NewBadDataError(fmt.Sprintf("%s: unsupported field type %c", fd.Name, fd.Type), nil)
	}
}

func (r *Record) readMemo(fd core.FieldDescriptor, raw []byte) (interface{}, error) {
	block := core.DecodeMemoBlock(raw, r.table.dialect)
	// A table opened without its memo file reads every memo as empty.
	if block == 0 || r.table.memos == nil {
		if fd.Type == core.Memo {
			return "", nil
		}
		return []byte{}, nil
	}
	payload, status := r.table.memos.Read(block)
	if status != core.StatusOK {
		return nil, NewBadDataError(fmt.Sprintf("%s: memo block %d unreadable", fd.Name, block), block)
	}
	if r.table.dialect == core.DBaseIII || r.table.dialect == core.DBaseIV || r.table.dialect == core.Clipper {
		payload = trimTrailingASCIIWhitespace(payload)
	}
	if fd.Type == core.Memo {
		if fd.Binary() {
			return string(payload), nil
		}
		return r.table.codepage.Decode(payload), nil
	}
	return payload, nil
}

func trimTrailingASCIIWhitespace(b []byte) []byte {
	end := len(b)
	for end > 0 {
		c := b[end-1]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == 0 {
			end--
			continue
		}
		break
	}
	return b[:end]
}

// Set writes a field's value by name. Outside of flux the write is
// committed to the buffer immediately; inside flux it is applied to the
// shadow copy only.
func (r *Record) Set(name string, value interface{}) error {
	fd, idx, err := r.table.fieldByName(name)
	if err != nil {
		return err
	}
	return r.setField(fd, idx, value)
}

func (r *Record) setField(fd core.FieldDescriptor, _ int, value interface{}) error {
	encoded, err := r.encodeField(fd, value)
	if err != nil {
		return err
	}
	dst := r.activeBuf()
	copy(dst[fd.Start:fd.Start+fd.Length], encoded)
	if !r.flux {
		if err := r.table.flushRecord(r); err != nil {
			return err
		}
	}
	return nil
}

func (r *Record) encodeField(fd core.FieldDescriptor, value interface{}) ([]byte, error) {
	switch fd.Type {
	case core.Character:
		s, ok := value.(string)
		if !ok {
			s = fmt.Sprintf("%v", value)
		}
		b, status := core.EncodeCharacter(s, fd.Length, r.table.codepage, fd.Binary())
		if status == core.StatusOverflow {
			return nil, NewDataOverflowError(fmt.Sprintf("%s: value too long for field", fd.Name), s)
		}
		return b, nil
	case core.Numeric, core.Float:
		v, err := toFloat64(value)
		if err != nil {
			return nil, err
		}
		b, status := core.EncodeNumeric(v, fd.Length, fd.Decimals)
		if status == core.StatusOverflow {
			return nil, NewDataOverflowError(fmt.Sprintf("%s: value does not fit field width", fd.Name), v)
		}
		return b, nil
	case core.Integer:
		v, err := toInt32(value)
		if err != nil {
			return nil, err
		}
		return core.EncodeInteger(v), nil
	case core.Currency:
		v, err := toFloat64(value)
		if err != nil {
			return nil, err
		}
		return core.EncodeCurrency(v), nil
	case core.Double:
		v, err := toFloat64(value)
		if err != nil {
			return nil, err
		}
		return core.EncodeDouble(v), nil
	case core.Date:
		d, ok := value.(core.Date)
		if !ok {
			return nil, NewFieldSpecError(fmt.Sprintf("%s: expected core.Date", fd.Name))
		}
		return core.EncodeDate(d), nil
	case core.DateTime:
		dt, ok := value.(core.DateTime)
		if !ok {
			return nil, NewFieldSpecError(fmt.Sprintf("%s: expected core.DateTime", fd.Name))
		}
		return core.EncodeDateTime(dt), nil
	case core.Logical:
		lv, err := toLogical(value)
		if err != nil {
			return nil, err
		}
		return core.EncodeLogical(lv), nil
	case core.Memo, core.General, core.Picture:
		return r.encodeMemo(fd, value)
	default:
		return nil, NewBadDataError(fmt.Sprintf("%s: unsupported field type %c", fd.Name, fd.Type), nil)
	}
}

func (r *Record) encodeMemo(fd core.FieldDescriptor, value interface{}) ([]byte, error) {
	var payload []byte
	switch v := value.(type) {
	case string:
		if v == "" {
			return core.EncodeMemoBlock(0, fd.Length, r.table.dialect), nil
		}
		if fd.Type == core.Memo && !fd.Binary() {
			payload = r.table.codepage.Encode(v)
		} else {
			payload = []byte(v)
		}
	case []byte:
		if len(v) == 0 {
			return core.EncodeMemoBlock(0, fd.Length, r.table.dialect), nil
		}
		payload = v
	case nil:
		return core.EncodeMemoBlock(0, fd.Length, r.table.dialect), nil
	default:
		return nil, NewFieldSpecError(fmt.Sprintf("%s: expected string or []byte for memo field", fd.Name))
	}
	if r.table.memos == nil {
		if err := r.table.ensureMemoStore(); err != nil {
			return nil, err
		}
	}
	block, status := r.table.memos.Write(payload)
	if status != core.StatusOK {
		return nil, Wrap(statusErrorPublic(status), fmt.Sprintf("%s: memo write failed", fd.Name))
	}
	return core.EncodeMemoBlock(block, fd.Length, r.table.dialect), nil
}

// Reset restores the record to the table's blank template, except for
// fields named in keepFields (case-insensitive), which retain their
// current values.
func (r *Record) Reset(keepFields []string) error {
	keep := make(map[string]bool, len(keepFields))
	for _, k := range keepFields {
		keep[strings.ToUpper(k)] = true
	}
	blank := r.table.blankTemplate()
	dst := r.activeBuf()
	for _, fd := range r.table.fields {
		if keep[strings.ToUpper(fd.Name)] {
			continue
		}
		copy(dst[fd.Start:fd.Start+fd.Length], blank[fd.Start:fd.Start+fd.Length])
	}
	if !r.flux {
		return r.table.flushRecord(r)
	}
	return nil
}

// Scatter returns the record's fields as a name→value map.
func (r *Record) Scatter() (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(r.table.fields))
	for i, fd := range r.table.fields {
		v, err := r.getField(fd, i)
		if err != nil {
			return nil, err
		}
		out[fd.Name] = v
	}
	return out, nil
}

// Gather writes every entry of values into the matching field. Unknown
// field names raise FieldMissingError unless dropUnknown is set.
func (r *Record) Gather(values map[string]interface{}, dropUnknown bool) error {
	for name, v := range values {
		fd, idx, err := r.table.fieldByName(name)
		if err != nil {
			if dropUnknown {
				continue
			}
			return err
		}
		if err := r.setField(fd, idx, v); err != nil {
			return err
		}
	}
	return nil
}

// StartFlux begins a scoped edit: further Set/Gather/Reset calls apply to
// a shadow copy until CommitFlux or RollbackFlux is called.
func (r *Record) StartFlux() error {
	if r.flux {
		return NewTableStateError("record is already in flux")
	}
	r.flux = true
	r.fluxShadow = append([]byte{}, r.buf...)
	return nil
}

// CommitFlux swaps the shadow buffer into place and flushes it.
func (r *Record) CommitFlux() error {
	if !r.flux {
		return NewTableStateError("record is not in flux")
	}
	r.buf = r.fluxShadow
	r.flux = false
	r.fluxShadow = nil
	return r.table.flushRecord(r)
}

// RollbackFlux discards the shadow buffer, leaving the committed buffer
// untouched.
func (r *Record) RollbackFlux() error {
	if !r.flux {
		return NewTableStateError("record is not in flux")
	}
	r.flux = false
	r.fluxShadow = nil
	return nil
}

func statusErrorPublic(s core.Status) error {
	return fmt.Errorf("core: %s", s)
}
