package spec

import (
	"math/big"
)

// EnumerationDef describes one row of an enumeration table.
type EnumerationDef struct {
	// Key is the integer key. Nil for rows keyed only by value.
	Key *big.Int

	// Value is the textual value of the row.
	Value string

	// Requires lists the capability tags this row signals, comma separated.
	// Nil when the row signals nothing.
	Requires *string

	// Description is free text from the specification.
	Description string
}

// Enumeration is an immutable enumeration row.
type Enumeration struct {
	key         *big.Int
	value       string
	requires    string
	hasRequires bool
	description string
}

// NewEnumeration creates an enumeration row from its definition.
func NewEnumeration(def EnumerationDef) Enumeration {
	e := Enumeration{
		value:       def.Value,
		description: def.Description,
	}
	if def.Key != nil {
		e.key = new(big.Int).Set(def.Key)
	}
	if def.Requires != nil {
		e.requires = *def.Requires
		e.hasRequires = true
	}
	return e
}

// Key returns a copy of the row key, or nil if the row has none.
func (e Enumeration) Key() *big.Int {
	if e.key == nil {
		return nil
	}
	return new(big.Int).Set(e.key)
}

// HasKey returns true if the row carries an integer key.
func (e Enumeration) HasKey() bool { return e.key != nil }

// KeyEquals reports exact arbitrary-precision equality with key.
func (e Enumeration) KeyEquals(key *big.Int) bool {
	return e.key != nil && key != nil && e.key.Cmp(key) == 0
}

// Value returns the textual value.
func (e Enumeration) Value() string { return e.value }

// Requires returns the raw requires attribute.
func (e Enumeration) Requires() (string, bool) { return e.requires, e.hasRequires }

// Description returns the row description.
func (e Enumeration) Description() string { return e.description }

// RequiredTags returns the comma-split requires attribute.
func (e Enumeration) RequiredTags() Tags {
	tags := NewTags()
	if e.hasRequires {
		tags.AddRequires(e.requires)
	}
	return tags
}

// Reserved is an inclusive range of keys the specification reserves.
type Reserved struct {
	start *big.Int
	end   *big.Int
}

// NewReserved creates a reserved key range [start, end].
func NewReserved(start, end *big.Int) Reserved {
	r := Reserved{}
	if start != nil {
		r.start = new(big.Int).Set(start)
	}
	if end != nil {
		r.end = new(big.Int).Set(end)
	}
	return r
}

// Start returns a copy of the first reserved key.
func (r Reserved) Start() *big.Int {
	if r.start == nil {
		return nil
	}
	return new(big.Int).Set(r.start)
}

// End returns a copy of the last reserved key.
func (r Reserved) End() *big.Int {
	if r.end == nil {
		return nil
	}
	return new(big.Int).Set(r.end)
}

// Contains returns true if key lies in the range. An open bound matches
// everything on that side.
func (r Reserved) Contains(key *big.Int) bool {
	if key == nil {
		return false
	}
	if r.start != nil && key.Cmp(r.start) < 0 {
		return false
	}
	if r.end != nil && key.Cmp(r.end) > 0 {
		return false
	}
	return r.start != nil || r.end != nil
}

// Enumerations is an ordered enumeration table. A nil *Enumerations is a
// valid, empty table.
type Enumerations struct {
	rows     []Enumeration
	reserved []Reserved
}

// NewEnumerations creates a table from the given rows.
func NewEnumerations(rows []Enumeration, reserved ...Reserved) *Enumerations {
	t := &Enumerations{
		rows: make([]Enumeration, len(rows)),
	}
	copy(t.rows, rows)
	if len(reserved) > 0 {
		t.reserved = make([]Reserved, len(reserved))
		copy(t.reserved, reserved)
	}
	return t
}

// Len returns the number of rows.
func (t *Enumerations) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns a copy of the rows in table order.
func (t *Enumerations) Rows() []Enumeration {
	if t == nil {
		return nil
	}
	out := make([]Enumeration, len(t.rows))
	copy(out, t.rows)
	return out
}

// Reserved returns the reserved key ranges.
func (t *Enumerations) Reserved() []Reserved {
	if t == nil || len(t.reserved) == 0 {
		return nil
	}
	out := make([]Reserved, len(t.reserved))
	copy(out, t.reserved)
	return out
}

// IsReserved returns true if key falls into a reserved range.
func (t *Enumerations) IsReserved(key *big.Int) bool {
	if t == nil {
		return false
	}
	for _, r := range t.reserved {
		if r.Contains(key) {
			return true
		}
	}
	return false
}

// FindByKey returns the first row whose key equals key.
func (t *Enumerations) FindByKey(key *big.Int) (Enumeration, bool) {
	if t == nil || key == nil {
		return Enumeration{}, false
	}
	for _, e := range t.rows {
		if e.KeyEquals(key) {
			return e, true
		}
	}
	return Enumeration{}, false
}

// FindAllByValue returns every row whose value equals value, in table order.
// An empty value matches nothing.
func (t *Enumerations) FindAllByValue(value string) []Enumeration {
	if t == nil || value == "" {
		return []Enumeration{}
	}
	out := []Enumeration{}
	for _, e := range t.rows {
		if e.value == value {
			out = append(out, e)
		}
	}
	return out
}

// RequiresOf returns the tags signalled by a lookup result. Pass the pair
// returned by FindByKey directly:
//
//	tags := spec.RequiresOf(table.FindByKey(key))
func RequiresOf(e Enumeration, found bool) Tags {
	if !found {
		return NewTags()
	}
	return e.RequiredTags()
}
