// Package spec implements the read-only specification model for GATT
// characteristic values.
//
// # Model
//
// A Characteristic is an ordered list of Fields. Each Field has a format
// that fixes its bit width, and may carry:
//   - a BitField: named, sized sub-ranges of the field's bits (Bit)
//   - an Enumerations table mapping keys or values to "requires" tags
//   - a reference to another specification, which makes its width unknown
//
// Fields are built once with NewField and never mutated afterwards, so a
// published model can be shared between goroutines without locking.
//
// # Capability Tags
//
// The "requires" attribute of an enumeration row names one or more
// optional sub-specifications (e.g. "C1" or "C2,C3"). Tags collects them
// as a set:
//
//	tags := spec.NewTags()
//	tags.AddRequires("C2,C3")
//	tags.Has("C3") // true
//
// # Well-Known Fields
//
// Two field names carry special meaning. A field named "Flags" with a
// BitField signals tags per bit range, and a field named "Op Code" (or
// "Op Codes") with an enumeration table signals a tag per decoded value.
// IsFlagsField and IsOpCodesField recognise them; AllFlags and AllOpCodes
// list every tag they could ever signal.
package spec
