package log

import (
	"strings"
	"time"
)

// Event records one resolution of a characteristic payload.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the resolution ran (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ID uniquely identifies the event (UUID).
	ID string `cbor:"2,keyasint"`

	// Source names the characteristic that was resolved, when known.
	Source string `cbor:"3,keyasint,omitempty"`

	// Kind is the resolution target.
	Kind Kind `cbor:"4,keyasint"`

	// Outcome classifies the result.
	Outcome Outcome `cbor:"5,keyasint"`

	// Payload is the raw characteristic value (may be truncated).
	Payload []byte `cbor:"6,keyasint,omitempty"`

	// Truncated indicates if Payload was truncated.
	Truncated bool `cbor:"7,keyasint,omitempty"`

	// Field is the name of the flags or op code field, if located.
	Field string `cbor:"8,keyasint,omitempty"`

	// Offset is the bit offset at which the walk ended.
	Offset int `cbor:"9,keyasint"`

	// Tags are the resolved capability tags in sorted order.
	Tags []string `cbor:"10,keyasint,omitempty"`

	// Value is the decoded op code, in decimal.
	Value string `cbor:"11,keyasint,omitempty"`

	// Reason explains an absent or indeterminate outcome.
	Reason string `cbor:"12,keyasint,omitempty"`

	// Error is set when resolution failed.
	Error *ErrorEventData `cbor:"13,keyasint,omitempty"`
}

// MaxPayload is the number of payload bytes kept in an event.
const MaxPayload = 64

// TruncatePayload copies at most MaxPayload bytes of p into the event.
func (e *Event) TruncatePayload(p []byte) {
	n := len(p)
	if n > MaxPayload {
		n = MaxPayload
		e.Truncated = true
	}
	e.Payload = make([]byte, n)
	copy(e.Payload, p[:n])
}

// Kind indicates what was resolved.
type Kind uint8

const (
	// KindFlags indicates a flags bit-field resolution.
	KindFlags Kind = 0
	// KindOpCode indicates an op code resolution.
	KindOpCode Kind = 1
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFlags:
		return "FLAGS"
	case KindOpCode:
		return "OPCODE"
	default:
		return "UNKNOWN"
	}
}

// ParseKind returns the kind with the given name, case-insensitively.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FLAGS":
		return KindFlags, true
	case "OPCODE", "OP_CODE":
		return KindOpCode, true
	}
	return 0, false
}

// Outcome classifies a resolution result.
type Outcome uint8

const (
	// OutcomeResolved indicates the target was found and decoded.
	OutcomeResolved Outcome = 0
	// OutcomeAbsent indicates the target field or row does not exist.
	OutcomeAbsent Outcome = 1
	// OutcomeIndeterminate indicates the layout could not be followed.
	OutcomeIndeterminate Outcome = 2
	// OutcomeError indicates the specification was malformed.
	OutcomeError Outcome = 3
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "RESOLVED"
	case OutcomeAbsent:
		return "ABSENT"
	case OutcomeIndeterminate:
		return "INDETERMINATE"
	case OutcomeError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseOutcome returns the outcome with the given name, case-insensitively.
func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RESOLVED":
		return OutcomeResolved, true
	case "ABSENT":
		return OutcomeAbsent, true
	case "INDETERMINATE":
		return OutcomeIndeterminate, true
	case "ERROR":
		return OutcomeError, true
	}
	return 0, false
}

// ErrorEventData captures a failed resolution.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
