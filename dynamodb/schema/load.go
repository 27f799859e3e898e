package schema

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/acksell/highscores/dynamodb/table"
	"gopkg.in/yaml.v3"
)

// Load reads and parses the schema file at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a YAML schema. Unknown fields are rejected.
func Parse(data []byte) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Schema
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if len(s.Tables) == 0 {
		return nil, fmt.Errorf("%w: schema declares no tables", table.ErrInvalidDefinition)
	}
	return &s, nil
}

// Marshal renders the schema as YAML.
func (s *Schema) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TableDefinitions converts the schema into table definitions.
func (s *Schema) TableDefinitions() ([]table.TableDefinition, error) {
	defs := make([]table.TableDefinition, 0, len(s.Tables))
	for _, t := range s.Tables {
		def, err := t.definition()
		if err != nil {
			return nil, fmt.Errorf("%w: table %q: %v", table.ErrInvalidDefinition, t.Name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Registry builds a registry holding every table in the schema.
func (s *Schema) Registry() (*table.Registry, error) {
	defs, err := s.TableDefinitions()
	if err != nil {
		return nil, err
	}
	return table.NewRegistry(defs...)
}

// FromDefinitions is the inverse of TableDefinitions.
func FromDefinitions(defs ...table.TableDefinition) *Schema {
	s := &Schema{}
	for _, def := range defs {
		t := Table{
			Name:         def.Name,
			PartitionKey: fromKeyDef(def.KeyDefinitions.PartitionKey),
			SortKey:      optionalKeyDef(def.KeyDefinitions.SortKey),
		}
		for _, idx := range def.Indexes {
			i := Index{
				Name:    idx.Name,
				Kind:    string(idx.Kind),
				SortKey: optionalKeyDef(idx.KeyDefinitions.SortKey),
			}
			if idx.IsGlobal() {
				i.PartitionKey = optionalKeyDef(idx.KeyDefinitions.PartitionKey)
			}
			if idx.Projection.Kind != "" {
				i.Projection = &Projection{
					Type:             string(idx.Projection.Kind),
					NonKeyAttributes: idx.Projection.NonKeyAttributes,
				}
			}
			t.Indexes = append(t.Indexes, i)
		}
		s.Tables = append(s.Tables, t)
	}
	return s
}

func (t Table) definition() (table.TableDefinition, error) {
	pk, err := t.PartitionKey.keyDef()
	if err != nil {
		return table.TableDefinition{}, fmt.Errorf("partition key: %w", err)
	}
	def := table.TableDefinition{
		Name:           t.Name,
		KeyDefinitions: table.PrimaryKeyDefinition{PartitionKey: pk},
	}
	if t.SortKey != nil {
		if def.KeyDefinitions.SortKey, err = t.SortKey.keyDef(); err != nil {
			return table.TableDefinition{}, fmt.Errorf("sort key: %w", err)
		}
	}
	for _, idx := range t.Indexes {
		idxDef, err := idx.definition()
		if err != nil {
			return table.TableDefinition{}, fmt.Errorf("index %q: %w", idx.Name, err)
		}
		def.Indexes = append(def.Indexes, idxDef)
	}
	return def, nil
}

func (i Index) definition() (table.IndexDefinition, error) {
	if i.Kind == "" {
		return table.IndexDefinition{}, fmt.Errorf("kind is required")
	}
	kind, err := table.ParseIndexKind(i.Kind)
	if err != nil {
		return table.IndexDefinition{}, err
	}
	def := table.IndexDefinition{Name: i.Name, Kind: kind}
	if i.PartitionKey != nil {
		if def.KeyDefinitions.PartitionKey, err = i.PartitionKey.keyDef(); err != nil {
			return table.IndexDefinition{}, fmt.Errorf("partition key: %w", err)
		}
	}
	if i.SortKey != nil {
		if def.KeyDefinitions.SortKey, err = i.SortKey.keyDef(); err != nil {
			return table.IndexDefinition{}, fmt.Errorf("sort key: %w", err)
		}
	}
	if i.Projection != nil {
		def.Projection = table.Projection{
			Kind:             table.ProjectionKind(strings.ToUpper(i.Projection.Type)),
			NonKeyAttributes: i.Projection.NonKeyAttributes,
		}
	}
	return def, nil
}

func (k KeyDef) keyDef() (table.KeyDef, error) {
	kind := table.KeyKind(strings.ToUpper(k.Kind))
	if !kind.Valid() {
		return table.KeyDef{}, fmt.Errorf("attribute %q has invalid kind %q, want S, N or B", k.Name, k.Kind)
	}
	return table.KeyDef{Name: k.Name, Kind: kind}, nil
}

func fromKeyDef(k table.KeyDef) KeyDef {
	return KeyDef{Name: k.Name, Kind: string(k.Kind)}
}

func optionalKeyDef(k table.KeyDef) *KeyDef {
	if k.Name == "" {
		return nil
	}
	kd := fromKeyDef(k)
	return &kd
}
