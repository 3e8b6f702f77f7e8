package spec

import "strings"

// Well-known field names.
const (
	FlagsFieldName   = "flags"
	OpCodeFieldName  = "op code"
	OpCodesFieldName = "op codes"
)

// IsFlagsField returns true if f is named "flags" and has a bit field.
func IsFlagsField(f *Field) bool {
	return f != nil && strings.EqualFold(f.Name(), FlagsFieldName) && f.BitField() != nil
}

// IsOpCodesField returns true if f is named "op code" or "op codes" and has
// a non-empty enumeration table.
func IsOpCodesField(f *Field) bool {
	if f == nil {
		return false
	}
	name := f.Name()
	return (strings.EqualFold(name, OpCodeFieldName) || strings.EqualFold(name, OpCodesFieldName)) &&
		f.HasEnumerations()
}

// FlagsField returns the first flags field, or nil.
func FlagsField(fields []*Field) *Field {
	for _, f := range fields {
		if IsFlagsField(f) {
			return f
		}
	}
	return nil
}

// OpCodesField returns the first op code field, or nil.
func OpCodesField(fields []*Field) *Field {
	for _, f := range fields {
		if IsOpCodesField(f) {
			return f
		}
	}
	return nil
}

// AllFlags returns every tag the flags field could signal, over all bits
// and all rows.
func AllFlags(flagsField *Field) Tags {
	result := NewTags()
	if flagsField == nil {
		return result
	}
	for _, bit := range flagsField.BitField().Bits() {
		for _, e := range bit.Enumerations().Rows() {
			result.Union(e.RequiredTags())
		}
	}
	return result
}

// AllOpCodes returns every tag the op code field could signal.
func AllOpCodes(opCodesField *Field) Tags {
	result := NewTags()
	if opCodesField == nil {
		return result
	}
	for _, e := range opCodesField.Enumerations().Rows() {
		result.Union(e.RequiredTags())
	}
	return result
}
