package spec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Specification errors.
var (
	ErrUnknownFormat = errors.New("unknown field format")
	ErrMissingFormat = errors.New("field is missing its format")
)

// VariableSize is the size of formats whose width depends on the payload.
const VariableSize = -1

// FormatType classifies a field format.
type FormatType uint8

const (
	FormatUnknown FormatType = iota
	FormatBoolean
	FormatUint
	FormatSint
	FormatFloat     // IEEE-754 float32/float64
	FormatSFloat    // IEEE-11073 16-bit SFLOAT
	FormatIEEEFloat // IEEE-11073 32-bit FLOAT
	FormatUTF8S
	FormatUTF16S
	FormatStruct
	FormatRegCert
)

// String returns the format type name.
func (t FormatType) String() string {
	names := []string{
		"unknown", "boolean", "uint", "sint", "float", "sfloat",
		"ieee-float", "utf8s", "utf16s", "struct", "reg-cert",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// FieldFormat is a parsed format tag such as "uint16", "8bit" or "SFLOAT".
type FieldFormat struct {
	name string
	typ  FormatType
	size int
}

// ParseFieldFormat parses a format name. Names are matched case-insensitively.
func ParseFieldFormat(name string) (FieldFormat, error) {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)

	switch lower {
	case "boolean":
		return FieldFormat{name: trimmed, typ: FormatBoolean, size: 1}, nil
	case "nibble":
		return FieldFormat{name: trimmed, typ: FormatUint, size: 4}, nil
	case "float32":
		return FieldFormat{name: trimmed, typ: FormatFloat, size: 32}, nil
	case "float64":
		return FieldFormat{name: trimmed, typ: FormatFloat, size: 64}, nil
	case "sfloat":
		return FieldFormat{name: trimmed, typ: FormatSFloat, size: 16}, nil
	case "float":
		return FieldFormat{name: trimmed, typ: FormatIEEEFloat, size: 32}, nil
	case "duint16":
		return FieldFormat{name: trimmed, typ: FormatUint, size: 32}, nil
	case "utf8s":
		return FieldFormat{name: trimmed, typ: FormatUTF8S, size: VariableSize}, nil
	case "utf16s":
		return FieldFormat{name: trimmed, typ: FormatUTF16S, size: VariableSize}, nil
	case "struct", "variable":
		return FieldFormat{name: trimmed, typ: FormatStruct, size: VariableSize}, nil
	case "reg-cert":
		return FieldFormat{name: trimmed, typ: FormatRegCert, size: VariableSize}, nil
	}

	switch {
	case strings.HasPrefix(lower, "uint"):
		if n, ok := parseWidth(lower[len("uint"):]); ok {
			return FieldFormat{name: trimmed, typ: FormatUint, size: n}, nil
		}
	case strings.HasPrefix(lower, "sint"):
		if n, ok := parseWidth(lower[len("sint"):]); ok {
			return FieldFormat{name: trimmed, typ: FormatSint, size: n}, nil
		}
	case strings.HasSuffix(lower, "bit"):
		if n, ok := parseWidth(lower[:len(lower)-len("bit")]); ok {
			return FieldFormat{name: trimmed, typ: FormatUint, size: n}, nil
		}
	}

	return FieldFormat{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// MustParseFieldFormat is like ParseFieldFormat but panics on error.
func MustParseFieldFormat(name string) FieldFormat {
	f, err := ParseFieldFormat(name)
	if err != nil {
		panic(err)
	}
	return f
}

func parseWidth(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Name returns the format name as written in the specification.
func (f FieldFormat) Name() string { return f.name }

// Type returns the format classification.
func (f FieldFormat) Type() FormatType { return f.typ }

// Size returns the width in bits. ok is false for variable-size formats.
func (f FieldFormat) Size() (bits int, ok bool) {
	if f.size == VariableSize {
		return 0, false
	}
	return f.size, true
}

// IsReal returns true for floating point formats.
func (f FieldFormat) IsReal() bool {
	return f.typ == FormatFloat || f.typ == FormatSFloat || f.typ == FormatIEEEFloat
}

// IsInteger returns true for boolean, unsigned and signed formats.
func (f FieldFormat) IsInteger() bool {
	return f.typ == FormatBoolean || f.typ == FormatUint || f.typ == FormatSint
}

// Signed returns true if values of this format use two's complement.
func (f FieldFormat) Signed() bool { return f.typ == FormatSint }

// String returns the format name.
func (f FieldFormat) String() string { return f.name }
