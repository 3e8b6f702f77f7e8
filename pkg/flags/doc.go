// Package flags resolves the capability tags signalled by a characteristic
// payload.
//
// A characteristic specification is an ordered list of fields. The resolver
// walks it, advancing a bit offset by each field's format size, until it
// reaches the target field:
//
//   - the flags field, a bit-field whose ranges each carry their own
//     enumeration table; every matching row contributes its requires tags
//   - the op code field, an enumerated field whose matching row contributes
//     its requires tags
//
// The walk stops early when a field references another specification, since
// its size is unknown. A field without a format is a malformed specification
// and yields ErrSpecIntegrity.
//
// # Basic Usage
//
//	r := flags.NewResolver(flags.Config{})
//	tags, err := r.ResolveFlags(ch.Fields(), payload)
//	if err != nil {
//	    return err
//	}
//	if tags.Has("C1") {
//	    // uint8 heart rate value is present
//	}
//
// The Detailed variants also report whether the result is definitive. An
// empty tag set from ResolveFlags may mean the flags field does not exist
// (OutcomeAbsent) or that its position could not be determined
// (OutcomeIndeterminate). A payload that is too short for the target field
// is a caller error and fails with bits.ErrOutOfRange.
package flags
