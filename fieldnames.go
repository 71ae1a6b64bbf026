package xbase

import "strings"

// FieldNameList is a case-insensitive, order-preserving list of field
// names (§4.11): containment, equality, sort, and index lookup all
// compare case-insensitively, but Names() returns the caller's original
// casing for display.
type FieldNameList struct {
	names []string
}

// NewFieldNameList validates and wraps a slice of field names.
func NewFieldNameList(names []string) (*FieldNameList, error) {
	fnl := &FieldNameList{}
	for _, n := range names {
		if err := fnl.Add(n); err != nil {
			return nil, err
		}
	}
	return fnl, nil
}

// ValidateFieldName rejects names starting with an underscore or digit,
// longer than 10 characters, or containing characters outside
// [A-Za-z0-9_].
func ValidateFieldName(name string) error {
	if name == "" {
		return NewFieldSpecError("field name is empty")
	}
	if len(name) > 10 {
		return NewFieldSpecError(name + ": field name longer than 10 characters")
	}
	first := name[0]
	if first == '_' || (first >= '0' && first <= '9') {
		return NewFieldSpecError(name + ": field name cannot start with '_' or a digit")
	}
	for _, c := range name {
		ok := c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
		if !ok {
			return NewFieldSpecError(name + ": field name contains non-standard characters")
		}
	}
	return nil
}

// Add appends a name after validating it and checking for a
// case-insensitive duplicate.
func (l *FieldNameList) Add(name string) error {
	if err := ValidateFieldName(name); err != nil {
		return err
	}
	if l.Contains(name) {
		return NewFieldSpecError(name + ": duplicate field name")
	}
	l.names = append(l.names, name)
	return nil
}

// Contains reports case-insensitive membership.
func (l *FieldNameList) Contains(name string) bool {
	return l.IndexOf(name) >= 0
}

// IndexOf returns the case-insensitive position of name, or -1.
func (l *FieldNameList) IndexOf(name string) int {
	upper := strings.ToUpper(name)
	for i, n := range l.names {
		if strings.ToUpper(n) == upper {
			return i
		}
	}
	return -1
}

// Names returns the names in declaration order with original casing.
func (l *FieldNameList) Names() []string {
	return append([]string{}, l.names...)
}

// Len returns the number of names.
func (l *FieldNameList) Len() int { return len(l.names) }

// Equal reports whether two lists have the same names, case-insensitively,
// in the same order.
func (l *FieldNameList) Equal(other *FieldNameList) bool {
	if len(l.names) != len(other.names) {
		return false
	}
	for i := range l.names {
		if strings.ToUpper(l.names[i]) != strings.ToUpper(other.names[i]) {
			return false
		}
	}
	return true
}

// Sorted returns a case-insensitively sorted copy of the names.
func (l *FieldNameList) Sorted() []string {
	out := append([]string{}, l.names...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && strings.ToUpper(out[j-1]) > strings.ToUpper(out[j]); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
