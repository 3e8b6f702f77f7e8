package spec

import "strings"

// CharacteristicDef describes a characteristic specification.
type CharacteristicDef struct {
	Name     string
	Type     string // e.g. "org.bluetooth.characteristic.heart_rate_measurement"
	UUID     string // short ("2A37") or full form
	Abstract string
	Summary  string
	Fields   []*Field
}

// Characteristic is an immutable characteristic specification.
type Characteristic struct {
	def CharacteristicDef
}

// NewCharacteristic creates a characteristic from its definition.
func NewCharacteristic(def CharacteristicDef) *Characteristic {
	def.Name = strings.TrimSpace(def.Name)
	def.Type = strings.TrimSpace(def.Type)
	def.UUID = strings.TrimSpace(def.UUID)
	fields := make([]*Field, len(def.Fields))
	copy(fields, def.Fields)
	def.Fields = fields
	return &Characteristic{def: def}
}

// Name returns the characteristic name.
func (c *Characteristic) Name() string { return c.def.Name }

// Type returns the characteristic type identifier.
func (c *Characteristic) Type() string { return c.def.Type }

// UUID returns the UUID as written in the specification.
func (c *Characteristic) UUID() string { return c.def.UUID }

// Abstract returns the informative abstract.
func (c *Characteristic) Abstract() string { return c.def.Abstract }

// Summary returns the informative summary.
func (c *Characteristic) Summary() string { return c.def.Summary }

// Fields returns the fields in specification order.
func (c *Characteristic) Fields() []*Field {
	out := make([]*Field, len(c.def.Fields))
	copy(out, c.def.Fields)
	return out
}

// Field returns the first field with the given name, compared
// case-insensitively, or nil.
func (c *Characteristic) Field(name string) *Field {
	name = strings.TrimSpace(name)
	for _, f := range c.def.Fields {
		if f != nil && strings.EqualFold(f.Name(), name) {
			return f
		}
	}
	return nil
}

// FlagsField returns the flags field, or nil.
func (c *Characteristic) FlagsField() *Field { return FlagsField(c.def.Fields) }

// OpCodesField returns the op code field, or nil.
func (c *Characteristic) OpCodesField() *Field { return OpCodesField(c.def.Fields) }
