package spec

import (
	"encoding/json"
	"sort"
	"strings"
)

// Tags is a set of capability tags.
type Tags map[string]struct{}

// NewTags creates a set holding the given tags.
func NewTags(tags ...string) Tags {
	t := make(Tags, len(tags))
	for _, tag := range tags {
		t.Add(tag)
	}
	return t
}

// ParseTags splits a comma separated requires attribute into a set.
func ParseTags(requires string) Tags {
	t := NewTags()
	t.AddRequires(requires)
	return t
}

// Add adds a single tag. Surrounding whitespace is trimmed and empty tags
// are ignored.
func (t Tags) Add(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	t[tag] = struct{}{}
}

// AddRequires adds every tag of a comma separated requires attribute.
func (t Tags) AddRequires(requires string) {
	for _, tag := range strings.Split(requires, ",") {
		t.Add(tag)
	}
}

// Has returns true if tag is in the set.
func (t Tags) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// Union adds every tag of other to t.
func (t Tags) Union(other Tags) {
	for tag := range other {
		t[tag] = struct{}{}
	}
}

// Len returns the number of tags.
func (t Tags) Len() int { return len(t) }

// Equal returns true if both sets hold the same tags.
func (t Tags) Equal(other Tags) bool {
	if len(t) != len(other) {
		return false
	}
	for tag := range t {
		if !other.Has(tag) {
			return false
		}
	}
	return true
}

// Sorted returns the tags in lexical order.
func (t Tags) Sorted() []string {
	out := make([]string, 0, len(t))
	for tag := range t {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// String returns the sorted tags joined by ", ".
func (t Tags) String() string {
	return strings.Join(t.Sorted(), ", ")
}

// MarshalJSON encodes the set as a sorted array.
func (t Tags) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Sorted())
}
