// Package specparse reads characteristic specification documents into the
// spec model. Bluetooth SIG GATT XML files and an equivalent YAML form are
// supported; both are first decoded into the Raw* types, then built.
package specparse

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Parse errors.
var (
	ErrMissingName       = errors.New("specparse: missing name")
	ErrInvalidKey        = errors.New("specparse: invalid enumeration key")
	ErrUnsupportedFormat = errors.New("specparse: unsupported document format")
)

// RawCharacteristic represents a characteristic definition loaded from a
// document.
type RawCharacteristic struct {
	Name     string     `yaml:"name"`
	Type     string     `yaml:"type"` // "org.bluetooth.characteristic.heart_rate_measurement"
	UUID     string     `yaml:"uuid"` // "2A37"
	Abstract string     `yaml:"abstract"`
	Summary  string     `yaml:"summary"`
	Fields   []RawField `yaml:"fields"`
}

// RawField represents one field of the characteristic value.
type RawField struct {
	Name            string           `yaml:"name"`
	InformativeText string           `yaml:"informativeText"`
	Requirements    []string         `yaml:"requirements"` // "Mandatory", "C1"
	Reference       string           `yaml:"reference"`
	Format          string           `yaml:"format"` // "uint8", "8bit", "utf8s"
	Unit            string           `yaml:"unit"`
	DecimalExponent *int             `yaml:"decimalExponent"`
	BinaryExponent  *int             `yaml:"binaryExponent"`
	Multiplier      *int             `yaml:"multiplier"`
	Minimum         *float64         `yaml:"minimum"`
	Maximum         *float64         `yaml:"maximum"`
	Offset          *float64         `yaml:"offset"`
	Unknown         bool             `yaml:"unknown"`
	System          bool             `yaml:"system"`
	Bits            []RawBit         `yaml:"bits"`
	Enumerations    []RawEnumeration `yaml:"enumerations"`
	Reserved        []RawReserved    `yaml:"reserved"`
}

// RawBit represents one bit range of a flags field.
type RawBit struct {
	Index        int              `yaml:"index"`
	Size         int              `yaml:"size"`
	Name         string           `yaml:"name"`
	Enumerations []RawEnumeration `yaml:"enumerations"`
	Reserved     []RawReserved    `yaml:"reserved"`
}

// RawEnumeration represents a single enumeration row.
type RawEnumeration struct {
	Key         RawKey  `yaml:"key"`
	Value       string  `yaml:"value"`
	Requires    *string `yaml:"requires"` // "C1" or "C1,C2"
	Description string  `yaml:"description"`
}

// RawReserved represents a reserved key range.
type RawReserved struct {
	Start RawKey `yaml:"start"`
	End   RawKey `yaml:"end"`
}

// RawKey is an integer key kept in its document form: decimal, or with a
// 0x, 0o or 0b prefix. Empty means absent.
type RawKey string

// UnmarshalYAML accepts integer and string scalars.
func (k *RawKey) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected scalar", ErrInvalidKey, node.Line)
	}
	*k = RawKey(node.Value)
	return nil
}

// ParseYAML parses a characteristic definition from YAML bytes.
func ParseYAML(data []byte) (*RawCharacteristic, error) {
	var def RawCharacteristic
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing characteristic yaml: %w", err)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("characteristic definition: %w", ErrMissingName)
	}
	return &def, nil
}
