package specparse

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// xmlCharacteristic mirrors the Bluetooth SIG GATT characteristic schema.
type xmlCharacteristic struct {
	XMLName         xml.Name `xml:"Characteristic"`
	Name            string   `xml:"name,attr"`
	Type            string   `xml:"type,attr"`
	UUID            string   `xml:"uuid,attr"`
	InformativeText struct {
		Abstract string `xml:"Abstract"`
		Summary  string `xml:"Summary"`
	} `xml:"InformativeText"`
	Fields []xmlField `xml:"Value>Field"`
}

type xmlField struct {
	Name            string           `xml:"name,attr"`
	Unknown         bool             `xml:"unknown,attr"`
	System          bool             `xml:"system,attr"`
	InformativeText string           `xml:"InformativeText"`
	Requirements    []string         `xml:"Requirement"`
	Reference       string           `xml:"Reference"`
	Format          string           `xml:"Format"`
	Unit            string           `xml:"Unit"`
	DecimalExponent *int             `xml:"DecimalExponent"`
	BinaryExponent  *int             `xml:"BinaryExponent"`
	Multiplier      *int             `xml:"Multiplier"`
	Minimum         *float64         `xml:"Minimum"`
	Maximum         *float64         `xml:"Maximum"`
	Offset          *float64         `xml:"Offset"`
	Bits            []xmlBit         `xml:"BitField>Bit"`
	Enumerations    *xmlEnumerations `xml:"Enumerations"`
}

type xmlBit struct {
	Index        int              `xml:"index,attr"`
	Size         int              `xml:"size,attr"`
	Name         string           `xml:"name,attr"`
	Enumerations *xmlEnumerations `xml:"Enumerations"`
}

type xmlEnumerations struct {
	Rows     []xmlEnumeration `xml:"Enumeration"`
	Reserved []xmlReserved    `xml:"Reserved"`
}

type xmlEnumeration struct {
	Key         string  `xml:"key,attr"`
	Value       string  `xml:"value,attr"`
	Requires    *string `xml:"requires,attr"`
	Description string  `xml:"description,attr"`
}

type xmlReserved struct {
	Start string `xml:"start,attr"`
	End   string `xml:"end,attr"`
}

// ParseXML parses a Bluetooth SIG GATT characteristic document.
func ParseXML(data []byte) (*RawCharacteristic, error) {
	var doc xmlCharacteristic
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing characteristic xml: %w", err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, fmt.Errorf("characteristic definition: %w", ErrMissingName)
	}

	raw := &RawCharacteristic{
		Name:     doc.Name,
		Type:     doc.Type,
		UUID:     doc.UUID,
		Abstract: collapse(doc.InformativeText.Abstract),
		Summary:  collapse(doc.InformativeText.Summary),
		Fields:   make([]RawField, 0, len(doc.Fields)),
	}
	for _, f := range doc.Fields {
		rf := RawField{
			Name:            f.Name,
			InformativeText: collapse(f.InformativeText),
			Reference:       strings.TrimSpace(f.Reference),
			Format:          strings.TrimSpace(f.Format),
			Unit:            strings.TrimSpace(f.Unit),
			DecimalExponent: f.DecimalExponent,
			BinaryExponent:  f.BinaryExponent,
			Multiplier:      f.Multiplier,
			Minimum:         f.Minimum,
			Maximum:         f.Maximum,
			Offset:          f.Offset,
			Unknown:         f.Unknown,
			System:          f.System,
		}
		for _, req := range f.Requirements {
			rf.Requirements = append(rf.Requirements, strings.TrimSpace(req))
		}
		rf.Enumerations, rf.Reserved = f.Enumerations.raw()
		for _, b := range f.Bits {
			rb := RawBit{Index: b.Index, Size: b.Size, Name: b.Name}
			rb.Enumerations, rb.Reserved = b.Enumerations.raw()
			rf.Bits = append(rf.Bits, rb)
		}
		raw.Fields = append(raw.Fields, rf)
	}
	return raw, nil
}

func (e *xmlEnumerations) raw() ([]RawEnumeration, []RawReserved) {
	if e == nil {
		return nil, nil
	}
	rows := make([]RawEnumeration, 0, len(e.Rows))
	for _, r := range e.Rows {
		rows = append(rows, RawEnumeration{
			Key:         RawKey(r.Key),
			Value:       r.Value,
			Requires:    r.Requires,
			Description: r.Description,
		})
	}
	var reserved []RawReserved
	for _, r := range e.Reserved {
		reserved = append(reserved, RawReserved{Start: RawKey(r.Start), End: RawKey(r.End)})
	}
	return rows, reserved
}

// collapse folds runs of whitespace in free text to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
