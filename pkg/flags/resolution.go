package flags

import (
	"math/big"

	"github.com/gattkit/gattkit-go/pkg/log"
	"github.com/gattkit/gattkit-go/pkg/spec"
)

// Outcome classifies a resolution result.
type Outcome uint8

const (
	// OutcomeResolved means the target field was located and decoded.
	OutcomeResolved Outcome = iota
	// OutcomeAbsent means there is no target field, or no row for its value.
	OutcomeAbsent
	// OutcomeIndeterminate means the position of the target could not be
	// determined from the layout.
	OutcomeIndeterminate
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeAbsent:
		return "absent"
	case OutcomeIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o Outcome) event() log.Outcome {
	switch o {
	case OutcomeResolved:
		return log.OutcomeResolved
	case OutcomeAbsent:
		return log.OutcomeAbsent
	default:
		return log.OutcomeIndeterminate
	}
}

// Target is the field a resolution looks for.
type Target uint8

const (
	// TargetFlags is the field named Flags that carries a bit field.
	TargetFlags Target = iota
	// TargetOpCode is the Op Code field with a non-empty key table.
	TargetOpCode
)

// String returns the target name.
func (t Target) String() string {
	switch t {
	case TargetFlags:
		return "flags"
	case TargetOpCode:
		return "op code"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t Target) event() log.Kind {
	if t == TargetOpCode {
		return log.KindOpCode
	}
	return log.KindFlags
}

// BitValue is one decoded range of a flags field.
type BitValue struct {
	Name     string   `json:"name"`
	Index    int      `json:"index"`
	Offset   int      `json:"offset"`
	Size     int      `json:"size"`
	Value    *big.Int `json:"value"`
	Requires string   `json:"requires,omitempty"`
}

// Resolution is the detailed result of resolving one payload.
type Resolution struct {
	Target  Target    `json:"target"`
	Outcome Outcome   `json:"outcome"`
	Tags    spec.Tags `json:"tags"`

	// Field is the located target field name.
	Field string `json:"field,omitempty"`

	// Offset is the bit offset of the target field, or of the field at
	// which the walk stopped.
	Offset int `json:"offset"`

	// Reason explains an absent or indeterminate outcome.
	Reason string `json:"reason,omitempty"`

	// Bits holds every decoded range of a resolved flags field.
	Bits []BitValue `json:"bits,omitempty"`

	// Value is the decoded op code.
	Value *big.Int `json:"value,omitempty"`

	requires    string
	hasRequires bool
}

// Requires returns the raw requires attribute of the matched op code row.
func (r Resolution) Requires() (string, bool) {
	return r.requires, r.hasRequires
}

// SortedTags returns the tags in ascending order.
func (r Resolution) SortedTags() []string {
	return r.Tags.Sorted()
}

// Report holds both resolutions for a characteristic payload.
type Report struct {
	Characteristic string     `json:"characteristic"`
	Flags          Resolution `json:"flags"`
	OpCode         Resolution `json:"op_code"`
}

// Tags returns the union of the flags and op code tags.
func (r Report) Tags() spec.Tags {
	out := spec.NewTags()
	out.Union(r.Flags.Tags)
	out.Union(r.OpCode.Tags)
	return out
}
