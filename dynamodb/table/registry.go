package table

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownCollection   = errors.New("unknown collection")
	ErrUnknownIndex        = errors.New("unknown index")
	ErrDuplicateCollection = errors.New("duplicate collection")
	ErrInvalidDefinition   = errors.New("invalid definition")
)

// Registry holds the table definitions known to the process.
//
// Tables and indexes are registered once during configuration. After that the
// registry is only read, so it has no locking and may be shared freely by
// concurrent lookups as long as no registration happens concurrently.
type Registry struct {
	tables map[string]TableDefinition
}

func NewRegistry(defs ...TableDefinition) (*Registry, error) {
	r := &Registry{tables: make(map[string]TableDefinition, len(defs))}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a table together with any indexes it already declares.
func (r *Registry) Register(def TableDefinition) error {
	if _, ok := r.tables[def.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateCollection, def.Name)
	}
	indexes := def.Indexes
	def.Indexes = nil
	for _, idx := range indexes {
		def.Indexes = append(def.Indexes, inheritPartitionKey(def, idx))
	}
	if err := def.Validate(); err != nil {
		return err
	}
	r.tables[def.Name] = def
	return nil
}

// AddIndex attaches a secondary index to a registered table.
// A local index that leaves its partition key empty inherits the table's.
func (r *Registry) AddIndex(tableName string, idx IndexDefinition) error {
	def, err := r.Resolve(tableName)
	if err != nil {
		return err
	}
	if _, ok := def.Index(idx.Name); ok {
		return fmt.Errorf("%w: table %q: duplicate index %q", ErrInvalidDefinition, tableName, idx.Name)
	}
	idx = inheritPartitionKey(def, idx)
	if err := idx.validate(def); err != nil {
		return fmt.Errorf("%w: table %q: %v", ErrInvalidDefinition, tableName, err)
	}
	// copy so definitions handed out earlier keep their own slice
	indexes := make([]IndexDefinition, 0, len(def.Indexes)+1)
	indexes = append(indexes, def.Indexes...)
	def.Indexes = append(indexes, idx)
	r.tables[tableName] = def
	return nil
}

func (r *Registry) Resolve(tableName string) (TableDefinition, error) {
	def, ok := r.tables[tableName]
	if !ok {
		return TableDefinition{}, fmt.Errorf("%w: %q", ErrUnknownCollection, tableName)
	}
	return def, nil
}

func (r *Registry) ResolveIndex(tableName, indexName string) (IndexDefinition, error) {
	def, err := r.Resolve(tableName)
	if err != nil {
		return IndexDefinition{}, err
	}
	idx, ok := def.Index(indexName)
	if !ok {
		return IndexDefinition{}, fmt.Errorf("%w: %q on table %q", ErrUnknownIndex, indexName, tableName)
	}
	return idx, nil
}

// Tables returns all registered tables sorted by name.
func (r *Registry) Tables() []TableDefinition {
	defs := make([]TableDefinition, 0, len(r.tables))
	for _, def := range r.tables {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

func inheritPartitionKey(def TableDefinition, idx IndexDefinition) IndexDefinition {
	if idx.Kind == IndexKindLocal && idx.KeyDefinitions.PartitionKey.Name == "" {
		idx.KeyDefinitions.PartitionKey = def.KeyDefinitions.PartitionKey
	}
	return idx
}
