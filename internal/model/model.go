package model

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var _ pgbulk.Model = (*Model)(nil)

// Model is an in-memory pgbulk.Model. Entities are added with Register or
// loaded from YAML; lookups are safe for concurrent use.
type Model struct {
	mu       sync.RWMutex
	entities []*pgbulk.EntityType
	byType   map[reflect.Type]*pgbulk.EntityType
}

// New creates an empty Model.
func New() *Model {
	return &Model{byType: make(map[reflect.Type]*pgbulk.EntityType)}
}

// FindEntityType returns the entity registered for t.
func (m *Model) FindEntityType(t reflect.Type) (*pgbulk.EntityType, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byType[t]
	return e, ok
}

// EntityTypes returns the entities in registration order.
func (m *Model) EntityTypes() []*pgbulk.EntityType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*pgbulk.EntityType, len(m.entities))
	copy(out, m.entities)
	return out
}

// Add registers a fully described entity.
func (m *Model) Add(e *pgbulk.EntityType) error {
	if err := validateEntity(e); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.entities {
		if existing.Table == e.Table && existing.Schema == e.Schema {
			return fmt.Errorf("table %s is already mapped by entity %s: %w",
				e.QualifiedTable(), existing.Name, pgbulk.ErrInvalidConfig)
		}
	}
	if e.GoType != nil {
		if existing, ok := m.byType[e.GoType]; ok {
			return fmt.Errorf("type %s is already mapped to %s: %w",
				e.GoType, existing.QualifiedTable(), pgbulk.ErrInvalidConfig)
		}
		m.byType[e.GoType] = e
	}
	m.entities = append(m.entities, e)
	return nil
}

func validateEntity(e *pgbulk.EntityType) error {
	if e == nil {
		return pgbulk.ErrNullArgument
	}
	if e.Table == "" {
		return fmt.Errorf("entity %s has no table: %w", e.Name, pgbulk.ErrInvalidConfig)
	}

	columns := make(map[string]string, len(e.Properties))
	for _, p := range e.Properties {
		if p.Name == "" || p.Column == "" {
			return fmt.Errorf("entity %s: property needs a name and a column: %w", e.Name, pgbulk.ErrInvalidConfig)
		}
		if p.GoType == nil && p.ColumnType == "" {
			return fmt.Errorf("entity %s: property %s has no type: %w", e.Name, p.Name, pgbulk.ErrInvalidConfig)
		}
		if other, dup := columns[p.Column]; dup {
			return fmt.Errorf("entity %s: properties %s and %s both map to column %q: %w",
				e.Name, other, p.Name, p.Column, pgbulk.ErrInvalidConfig)
		}
		columns[p.Column] = p.Name
	}
	return nil
}
