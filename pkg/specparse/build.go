package specparse

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/gattkit/gattkit-go/pkg/spec"
)

// Build converts a raw definition into an immutable characteristic.
func Build(raw *RawCharacteristic) (*spec.Characteristic, error) {
	if raw == nil || strings.TrimSpace(raw.Name) == "" {
		return nil, fmt.Errorf("characteristic definition: %w", ErrMissingName)
	}

	fields := make([]*spec.Field, 0, len(raw.Fields))
	for i, rf := range raw.Fields {
		f, err := buildField(rf)
		if err != nil {
			return nil, fmt.Errorf("%s: field %d (%q): %w", raw.Name, i, rf.Name, err)
		}
		fields = append(fields, f)
	}

	return spec.NewCharacteristic(spec.CharacteristicDef{
		Name:     strings.TrimSpace(raw.Name),
		Type:     strings.TrimSpace(raw.Type),
		UUID:     strings.TrimSpace(raw.UUID),
		Abstract: raw.Abstract,
		Summary:  raw.Summary,
		Fields:   fields,
	}), nil
}

func buildField(rf RawField) (*spec.Field, error) {
	if strings.TrimSpace(rf.Name) == "" {
		return nil, ErrMissingName
	}

	def := spec.FieldDef{
		Name:            rf.Name,
		InformativeText: rf.InformativeText,
		Requirements:    rf.Requirements,
		Reference:       rf.Reference,
		Unit:            rf.Unit,
		DecimalExponent: rf.DecimalExponent,
		BinaryExponent:  rf.BinaryExponent,
		Multiplier:      rf.Multiplier,
		Minimum:         rf.Minimum,
		Maximum:         rf.Maximum,
		Offset:          rf.Offset,
		Unknown:         rf.Unknown,
		System:          rf.System,
	}

	if name := strings.TrimSpace(rf.Format); name != "" {
		format, err := spec.ParseFieldFormat(name)
		if err != nil {
			return nil, err
		}
		def.Format = &format
	}

	enums, err := buildEnumerations(rf.Enumerations, rf.Reserved)
	if err != nil {
		return nil, err
	}
	def.Enumerations = enums

	if len(rf.Bits) > 0 {
		bits := make([]spec.Bit, 0, len(rf.Bits))
		for _, rb := range rf.Bits {
			enums, err := buildEnumerations(rb.Enumerations, rb.Reserved)
			if err != nil {
				return nil, fmt.Errorf("bit %d: %w", rb.Index, err)
			}
			bits = append(bits, spec.NewBit(rb.Index, rb.Size, rb.Name, enums))
		}
		def.BitField = spec.NewBitField(bits...)
	}

	return spec.NewField(def), nil
}

func buildEnumerations(rows []RawEnumeration, reserved []RawReserved) (*spec.Enumerations, error) {
	if rows == nil && reserved == nil {
		return nil, nil
	}

	out := make([]spec.Enumeration, 0, len(rows))
	for _, r := range rows {
		key, err := ParseKey(r.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, spec.NewEnumeration(spec.EnumerationDef{
			Key:         key,
			Value:       r.Value,
			Requires:    r.Requires,
			Description: r.Description,
		}))
	}

	ranges := make([]spec.Reserved, 0, len(reserved))
	for _, r := range reserved {
		start, err := ParseKey(r.Start)
		if err != nil {
			return nil, err
		}
		end, err := ParseKey(r.End)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, spec.NewReserved(start, end))
	}

	return spec.NewEnumerations(out, ranges...), nil
}

// ParseKey parses an enumeration key. Keys are decimal unless prefixed with
// 0x or 0b; a leading zero does not mean octal. It returns nil for an empty
// key.
func ParseKey(k RawKey) (*big.Int, error) {
	s := strings.TrimSpace(string(k))
	if s == "" {
		return nil, nil
	}

	digits, neg := s, false
	if digits[0] == '-' || digits[0] == '+' {
		digits, neg = digits[1:], digits[0] == '-'
	}
	base := 10
	if len(digits) > 2 && digits[0] == '0' {
		switch digits[1] {
		case 'x', 'X':
			digits, base = digits[2:], 16
		case 'b', 'B':
			digits, base = digits[2:], 2
		}
	}
	if digits == "" || digits[0] == '-' || digits[0] == '+' {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}

	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}
