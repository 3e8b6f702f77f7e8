// Package registry provides read-only lookup of characteristic
// specifications by name, type or Bluetooth UUID.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/gattkit/gattkit-go/pkg/spec"
	"github.com/gattkit/gattkit-go/pkg/specparse"
)

// Registry errors.
var (
	ErrNotFound  = errors.New("registry: characteristic not found")
	ErrDuplicate = errors.New("registry: duplicate characteristic")
)

// Provider supplies characteristic specifications.
type Provider interface {
	// Characteristic returns the specification identified by id: a name,
	// a type such as "org.bluetooth.characteristic.heart_rate_measurement",
	// its short form, or a UUID.
	Characteristic(id string) (*spec.Characteristic, error)
}

// snapshot is an immutable set of indexes.
type snapshot struct {
	all    []*spec.Characteristic
	byName map[string]*spec.Characteristic
	byType map[string]*spec.Characteristic
	byUUID map[uuid.UUID]*spec.Characteristic
}

// Registry is a Provider backed by an atomically published snapshot.
// Lookups never block; Replace swaps the whole set at once.
type Registry struct {
	snap   atomic.Pointer[snapshot]
	logger *slog.Logger
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{logger: logger}
	r.snap.Store(&snapshot{
		byName: map[string]*spec.Characteristic{},
		byType: map[string]*spec.Characteristic{},
		byUUID: map[uuid.UUID]*spec.Characteristic{},
	})
	return r
}

// Load creates a registry from every document in dirs.
func Load(logger *slog.Logger, dirs ...string) (*Registry, error) {
	r := New(logger)
	if err := r.Reload(dirs...); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload replaces the registry contents with every document in dirs.
// On error the previous contents stay published.
func (r *Registry) Reload(dirs ...string) error {
	var chars []*spec.Characteristic
	for _, dir := range dirs {
		loaded, err := specparse.LoadDir(dir)
		if err != nil {
			return err
		}
		r.logger.Debug("loaded specifications", "dir", dir, "count", len(loaded))
		chars = append(chars, loaded...)
	}
	return r.Replace(chars)
}

// Replace publishes chars as the new contents.
func (r *Registry) Replace(chars []*spec.Characteristic) error {
	s := &snapshot{
		all:    make([]*spec.Characteristic, 0, len(chars)),
		byName: make(map[string]*spec.Characteristic, len(chars)),
		byType: make(map[string]*spec.Characteristic, 2*len(chars)),
		byUUID: make(map[uuid.UUID]*spec.Characteristic, len(chars)),
	}

	for _, c := range chars {
		if c == nil {
			continue
		}
		if err := s.add(c); err != nil {
			return err
		}
	}
	sort.Slice(s.all, func(i, j int) bool { return s.all[i].Name() < s.all[j].Name() })

	r.snap.Store(s)
	r.logger.Info("specification registry updated", "characteristics", len(s.all))
	return nil
}

func (s *snapshot) add(c *spec.Characteristic) error {
	name := normalize(c.Name())
	if prev, ok := s.byName[name]; ok {
		return fmt.Errorf("%w: name %q (%s, %s)", ErrDuplicate, c.Name(), prev.Type(), c.Type())
	}

	var typeKeys []string
	if t := normalize(c.Type()); t != "" {
		typeKeys = append(typeKeys, t)
		if short := normalize(specparse.ShortType(t)); short != t {
			typeKeys = append(typeKeys, short)
		}
	}
	for _, k := range typeKeys {
		if _, ok := s.byType[k]; ok {
			return fmt.Errorf("%w: type %q", ErrDuplicate, k)
		}
	}

	var (
		id    uuid.UUID
		hasID bool
	)
	if raw := strings.TrimSpace(c.UUID()); raw != "" {
		u, err := ParseUUID(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
		if _, ok := s.byUUID[u]; ok {
			return fmt.Errorf("%w: uuid %s", ErrDuplicate, u)
		}
		id, hasID = u, true
	}

	s.all = append(s.all, c)
	s.byName[name] = c
	for _, k := range typeKeys {
		s.byType[k] = c
	}
	if hasID {
		s.byUUID[id] = c
	}
	return nil
}

// Characteristic implements Provider.
func (r *Registry) Characteristic(id string) (*spec.Characteristic, error) {
	s := r.snap.Load()
	key := normalize(id)
	if key == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if c, ok := s.byName[key]; ok {
		return c, nil
	}
	if c, ok := s.byType[key]; ok {
		return c, nil
	}
	if u, err := ParseUUID(key); err == nil {
		if c, ok := s.byUUID[u]; ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// All returns every characteristic sorted by name.
func (r *Registry) All() []*spec.Characteristic {
	s := r.snap.Load()
	out := make([]*spec.Characteristic, len(s.all))
	copy(out, s.all)
	return out
}

// Len returns the number of characteristics.
func (r *Registry) Len() int {
	return len(r.snap.Load().all)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Compile-time interface satisfaction check.
var _ Provider = (*Registry)(nil)
