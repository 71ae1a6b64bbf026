package xbase

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// This file is the Go translation of the original library's exception
// taxonomy (see original_source/dbf/exceptions.py): a fatal-error family and
// a separate warning family, both carrying an optional payload and an
// optional wrapped cause. Go has no exception hierarchy to mirror, so each
// Python subclass becomes a distinct exported error type; errors.Is/As
//(via github.com/cockroachdb/errors, which re-exports the standard
// library's matching semantics) replaces isinstance checks against the
// shared DbfError/DbfWarning base.

// Error is the fatal-error family. Every error this package returns for a
// broken invariant, not a normal end-of-iteration condition, implements
// this interface.
type Error interface {
	error
	xbaseError()
}

// Warning is the non-fatal family: conditions that are part of normal
// control flow (end of file, beginning of file, "don't index this
// record") rather than broken invariants.
type Warning interface {
	error
	xbaseWarning()
}

type baseError struct {
	msg   string
	cause error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.cause)
	}
	return e.msg
}

// CausedBy returns the error this one wraps, or nil if there is none.
func (e *baseError) CausedBy() error { return e.cause }

func (e *baseError) Unwrap() error { return e.cause }

// DataOverflowError reports a value that does not fit the field's on-disk
// width (§4.1's overflow cases: numeric too wide, character too long).
type DataOverflowError struct {
	baseError
	Data interface{}
}

func (e *DataOverflowError) xbaseError() {}

func NewDataOverflowError(message string, data interface{}) *DataOverflowError {
	return &DataOverflowError{baseError: baseError{msg: message}, Data: data}
}

// BadDataError reports a record or header byte pattern that doesn't match
// any documented encoding (e.g. an unrecognized logical byte).
type BadDataError struct {
	baseError
	Data interface{}
}

func (e *BadDataError) xbaseError() {}

func NewBadDataError(message string, data interface{}) *BadDataError {
	return &BadDataError{baseError: baseError{msg: message}, Data: data}
}

func WrapBadDataError(message string, cause error) *BadDataError {
	return &BadDataError{baseError: baseError{msg: message, cause: cause}}
}

// FieldMissingError reports a lookup by a field name the table schema
// doesn't have.
type FieldMissingError struct {
	baseError
	FieldName string
}

func (e *FieldMissingError) xbaseError() {}

func NewFieldMissingError(fieldName string) *FieldMissingError {
	return &FieldMissingError{
		baseError: baseError{msg: fmt.Sprintf("%s: no such field in table", fieldName)},
		FieldName: fieldName,
	}
}

// FieldSpecError reports an invalid field specification supplied when
// creating a table or adding a field (bad type letter, length/decimals out
// of range for the type, duplicate or malformed name).
type FieldSpecError struct {
	baseError
}

func (e *FieldSpecError) xbaseError() {}

func NewFieldSpecError(message string) *FieldSpecError {
	return &FieldSpecError{baseError: baseError{msg: message}}
}

// TableStateError reports a generic table-level problem that is neither bad
// field data nor an invalid field spec: a corrupt or unrecognized header,
// an unsupported dialect byte, or an operation attempted against a table
// that is closed or read-only. This is the Go counterpart of tables.py
// raising a bare DbfError for "unsupported dbf type" or "has been closed,
// records are unavailable", kept distinct from the more specific fatal
// kinds above.
type TableStateError struct {
	baseError
}

func (e *TableStateError) xbaseError() {}

func NewTableStateError(message string) *TableStateError {
	return &TableStateError{baseError: baseError{msg: message}}
}

func WrapTableStateError(message string, cause error) *TableStateError {
	return &TableStateError{baseError: baseError{msg: message, cause: cause}}
}

// NonUnicodeError reports character data that could not be interpreted
// under the table's codepage.
type NonUnicodeError struct {
	baseError
}

func (e *NonUnicodeError) xbaseError() {}

func NewNonUnicodeError(message string) *NonUnicodeError {
	return &NonUnicodeError{baseError: baseError{msg: message}}
}

// NotFoundError reports a search or index lookup whose criteria matched no
// record.
type NotFoundError struct {
	baseError
	Data interface{}
}

func (e *NotFoundError) xbaseError() {}

func NewNotFoundError(message string, data interface{}) *NotFoundError {
	return &NotFoundError{baseError: baseError{msg: message}, Data: data}
}

type baseWarning struct {
	msg string
}

func (w *baseWarning) Error() string { return w.msg }

// Eof is returned by cursor navigation once positioned past the last
// record.
type Eof struct{ baseWarning }

func (w *Eof) xbaseWarning() {}

var ErrEof = &Eof{baseWarning{msg: "end of file reached"}}

// Bof is returned by cursor navigation once positioned before the first
// record.
type Bof struct{ baseWarning }

func (w *Bof) xbaseWarning() {}

var ErrBof = &Bof{baseWarning{msg: "beginning of file reached"}}

// DoNotIndex is returned by an index key function to suppress a record
// from becoming part of the index, rather than indexing it under a zero
// or error key.
type DoNotIndex struct{ baseWarning }

func (w *DoNotIndex) xbaseWarning() {}

var ErrDoNotIndex = &DoNotIndex{baseWarning{msg: "not indexing record"}}

// FieldNameWarning reports a field name accepted despite containing
// characters outside the classic 10-character A-Z0-9_ convention.
type FieldNameWarning struct{ baseWarning }

func (w *FieldNameWarning) xbaseWarning() {}

func NewFieldNameWarning(name string) *FieldNameWarning {
	return &FieldNameWarning{baseWarning{msg: fmt.Sprintf("%s: non-standard characters in field name", name)}}
}

// Wrap attaches message context to an error the way errors.Wrap does,
// preserving it for errors.Is/As/Unwrap. Used at I/O boundaries where a
// core.Status has already been translated to a plain error.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
