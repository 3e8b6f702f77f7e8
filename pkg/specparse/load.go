package specparse

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gattkit/gattkit-go/pkg/spec"
)

// ParseRaw decodes a document of the given extension (".xml", ".yaml" or
// ".yml") without building it.
func ParseRaw(ext string, data []byte) (*RawCharacteristic, error) {
	switch strings.ToLower(ext) {
	case ".xml":
		return ParseXML(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Parse decodes a document of the given extension and builds the
// characteristic.
func Parse(ext string, data []byte) (*spec.Characteristic, error) {
	raw, err := ParseRaw(ext, data)
	if err != nil {
		return nil, err
	}
	return Build(raw)
}

// LoadRaw reads a file and decodes it without building it.
func LoadRaw(path string) (*RawCharacteristic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	raw, err := ParseRaw(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// LoadCharacteristic loads a characteristic from a file, choosing the
// parser by extension.
func LoadCharacteristic(path string) (*spec.Characteristic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	c, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// IsDocument returns true if path has a supported extension.
func IsDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDir loads every supported document in dir, sorted by file name.
// Subdirectories and other files are skipped.
func LoadDir(dir string) ([]*spec.Characteristic, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []*spec.Characteristic
	for _, e := range entries {
		if e.IsDir() || !IsDocument(e.Name()) {
			continue
		}
		c, err := LoadCharacteristic(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
