package spec

import (
	"math/big"
	"strings"
)

// FieldDef describes a field of a characteristic value.
type FieldDef struct {
	// Name is the field name. Surrounding whitespace is trimmed.
	Name string

	// InformativeText is free text from the specification.
	InformativeText string

	// Requirements lists requirement tags, e.g. "Mandatory" or "C1".
	Requirements []string

	// Reference names another specification this field depends on.
	// Empty when the field is self-contained.
	Reference string

	// Format fixes the field width. Nil when the specification omits it.
	Format *FieldFormat

	// BitField decomposes the field into named bit ranges.
	BitField *BitField

	// Enumerations maps decoded values to rows.
	Enumerations *Enumerations

	// Unit is the unit type, e.g. "org.bluetooth.unit.period.beats_per_minute".
	Unit string

	DecimalExponent *int
	BinaryExponent  *int
	Multiplier      *int
	Minimum         *float64
	Maximum         *float64
	Offset          *float64

	// Unknown and System are extension flags.
	Unknown bool
	System  bool
}

// Field is an immutable field specification.
type Field struct {
	def FieldDef
}

// NewField creates a field from its definition. The definition is copied.
func NewField(def FieldDef) *Field {
	def.Name = strings.TrimSpace(def.Name)
	def.Reference = strings.TrimSpace(def.Reference)
	if def.Requirements != nil {
		reqs := make([]string, len(def.Requirements))
		copy(reqs, def.Requirements)
		def.Requirements = reqs
	}
	if def.Format != nil {
		f := *def.Format
		def.Format = &f
	}
	def.DecimalExponent = copyInt(def.DecimalExponent)
	def.BinaryExponent = copyInt(def.BinaryExponent)
	def.Multiplier = copyInt(def.Multiplier)
	def.Minimum = copyFloat(def.Minimum)
	def.Maximum = copyFloat(def.Maximum)
	def.Offset = copyFloat(def.Offset)
	return &Field{def: def}
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Name returns the trimmed field name.
func (f *Field) Name() string { return f.def.Name }

// InformativeText returns the field description.
func (f *Field) InformativeText() string { return f.def.InformativeText }

// Requirements returns a copy of the requirement tags.
func (f *Field) Requirements() []string {
	if f.def.Requirements == nil {
		return nil
	}
	out := make([]string, len(f.def.Requirements))
	copy(out, f.def.Requirements)
	return out
}

// Reference returns the referenced specification, if any.
func (f *Field) Reference() (string, bool) {
	return f.def.Reference, f.def.Reference != ""
}

// Format returns the field format, if any.
func (f *Field) Format() (FieldFormat, bool) {
	if f.def.Format == nil {
		return FieldFormat{}, false
	}
	return *f.def.Format, true
}

// BitField returns the bit decomposition, or nil.
func (f *Field) BitField() *BitField { return f.def.BitField }

// Enumerations returns the enumeration table, or nil.
func (f *Field) Enumerations() *Enumerations { return f.def.Enumerations }

// HasEnumerations returns true if the field has a non-empty table.
func (f *Field) HasEnumerations() bool { return f.def.Enumerations.Len() > 0 }

// Unit returns the unit type.
func (f *Field) Unit() string { return f.def.Unit }

// DecimalExponent returns the decimal exponent, if any.
func (f *Field) DecimalExponent() (int, bool) { return derefInt(f.def.DecimalExponent) }

// BinaryExponent returns the binary exponent, if any.
func (f *Field) BinaryExponent() (int, bool) { return derefInt(f.def.BinaryExponent) }

// Multiplier returns the multiplier, if any.
func (f *Field) Multiplier() (int, bool) { return derefInt(f.def.Multiplier) }

// Minimum returns the minimum value, if any.
func (f *Field) Minimum() (float64, bool) { return derefFloat(f.def.Minimum) }

// Maximum returns the maximum value, if any.
func (f *Field) Maximum() (float64, bool) { return derefFloat(f.def.Maximum) }

// Offset returns the value offset, if any.
func (f *Field) Offset() (float64, bool) { return derefFloat(f.def.Offset) }

// IsUnknown reports the "unknown" extension flag.
func (f *Field) IsUnknown() bool { return f.def.Unknown }

// IsSystem reports the "system" extension flag.
func (f *Field) IsSystem() bool { return f.def.System }

// IsFlagsField returns true if this is the distinguished flags field.
func (f *Field) IsFlagsField() bool { return IsFlagsField(f) }

// IsOpCodesField returns true if this is the distinguished op code field.
func (f *Field) IsOpCodesField() bool { return IsOpCodesField(f) }

// Enumeration returns the row of the field table whose key equals key.
func (f *Field) Enumeration(key *big.Int) (Enumeration, bool) {
	return f.def.Enumerations.FindByKey(key)
}

// EnumerationsByValue returns every row of the field table with the given value.
func (f *Field) EnumerationsByValue(value string) []Enumeration {
	return f.def.Enumerations.FindAllByValue(value)
}

func derefInt(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func derefFloat(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Bit is a named sub-range of a BitField.
type Bit struct {
	index        int
	size         int
	name         string
	enumerations *Enumerations
}

// NewBit creates a bit range of size bits.
func NewBit(index, size int, name string, enums *Enumerations) Bit {
	return Bit{
		index:        index,
		size:         size,
		name:         strings.TrimSpace(name),
		enumerations: enums,
	}
}

// Index returns the ordinal position from the specification.
func (b Bit) Index() int { return b.index }

// Size returns the width in bits.
func (b Bit) Size() int { return b.size }

// Name returns the bit range name.
func (b Bit) Name() string { return b.name }

// Enumerations returns the bit's own table, or nil.
func (b Bit) Enumerations() *Enumerations { return b.enumerations }

// Flag returns the requires attribute of the row whose key equals value.
// ok is false when no row matches or the row requires nothing.
func (b Bit) Flag(value *big.Int) (requires string, ok bool) {
	e, found := b.enumerations.FindByKey(value)
	if !found {
		return "", false
	}
	return e.Requires()
}

// BitField is an ordered list of bit ranges.
type BitField struct {
	bits []Bit
}

// NewBitField creates a bit field from bits in declaration order.
func NewBitField(bits ...Bit) *BitField {
	bf := &BitField{bits: make([]Bit, len(bits))}
	copy(bf.bits, bits)
	return bf
}

// Bits returns a copy of the bit ranges in declaration order.
func (bf *BitField) Bits() []Bit {
	if bf == nil {
		return nil
	}
	out := make([]Bit, len(bf.bits))
	copy(out, bf.bits)
	return out
}

// Len returns the number of bit ranges.
func (bf *BitField) Len() int {
	if bf == nil {
		return 0
	}
	return len(bf.bits)
}

// Size returns the total width of all bit ranges.
func (bf *BitField) Size() int {
	if bf == nil {
		return 0
	}
	total := 0
	for _, b := range bf.bits {
		total += b.size
	}
	return total
}
