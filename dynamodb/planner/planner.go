// Package planner turns lookup intents into query plans.
//
// A plan names the access path (the table's primary key, or one of its local
// or global secondary indexes), the key condition, the scan direction and the
// limit. Planning is a pure function of the registry and the intent: it does
// no I/O and never retries, so every error it returns is a configuration or
// programming error.
package planner

import (
	"fmt"

	"github.com/acksell/highscores/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

func (o Order) valid() bool {
	return o == Ascending || o == Descending
}

// Path identifies which key structure a plan reads through.
type Path string

const (
	PathPrimary Path = "PRIMARY"
	PathLocal   Path = "LOCAL"
	PathGlobal  Path = "GLOBAL"
)

// Intent describes what the caller wants to read.
type Intent struct {
	Table string
	// PartitionValue is the table's partition value, or the index's own
	// partition value when IndexName names a global index. Nil means absent.
	PartitionValue any
	Sort           *SortCondition
	IndexName      string
	Order          Order
	// Limit caps the number of items returned. Nil means no limit.
	Limit *int32
}

// Condition is a key attribute together with the value(s) it is compared to.
type Condition struct {
	Key    table.KeyDef
	Op     SortOp
	Values []any
}

// Plan is the resolved, storage-independent form of an Intent.
type Plan struct {
	Table     table.TableDefinition
	Index     *table.IndexDefinition
	Path      Path
	Partition Condition
	Sort      *Condition
	Direction Order
	Limit     *int32
}

// IndexName returns the index the plan reads, or "" for the primary key.
func (p Plan) IndexName() string {
	if p.Index == nil {
		return ""
	}
	return p.Index.Name
}

// KeyDefinitions returns the key of the access path.
func (p Plan) KeyDefinitions() table.PrimaryKeyDefinition {
	if p.Index == nil {
		return p.Table.KeyDefinitions
	}
	return p.Index.KeyDefinitions
}

// Guarantees reports whether every item returned by the plan is certain to
// carry attr.
func (p Plan) Guarantees(attr string) bool {
	if p.Index == nil {
		return p.Table.KeyDefinitions.Has(attr)
	}
	return p.Index.Guarantees(attr, p.Table)
}

func (p Plan) String() string {
	s := p.Table.Name
	if p.Index != nil {
		s += "/" + p.Index.Name
	}
	s += fmt.Sprintf(" [%s] %s = %v", p.Path, p.Partition.Key.Name, p.Partition.Values[0])
	if p.Sort != nil {
		s += fmt.Sprintf(" AND %s %s %v", p.Sort.Key.Name, p.Sort.Op, p.Sort.Values)
	}
	s += " " + p.Direction.String()
	if p.Limit != nil {
		s += fmt.Sprintf(" limit %d", *p.Limit)
	}
	return s
}

// Planner resolves intents against a registry. The registry must not be
// modified while the planner is in use.
type Planner struct {
	registry *table.Registry
}

func New(reg *table.Registry) *Planner {
	return &Planner{registry: reg}
}

// Plan resolves intent into a query plan.
func (p *Planner) Plan(intent Intent) (Plan, error) {
	def, err := p.registry.Resolve(intent.Table)
	if err != nil {
		return Plan{}, planError(intent, err)
	}
	if !intent.Order.valid() {
		return Plan{}, planError(intent, fmt.Errorf("%w: unknown order %s", ErrInvalidLookup, intent.Order))
	}
	plan := Plan{
		Table:     def,
		Path:      PathPrimary,
		Direction: intent.Order,
	}

	keys := def.KeyDefinitions
	if intent.IndexName != "" {
		idx, err := p.registry.ResolveIndex(intent.Table, intent.IndexName)
		if err != nil {
			return Plan{}, planError(intent, err)
		}
		switch idx.Kind {
		case table.IndexKindLocal:
			plan.Path = PathLocal
			// local indexes share the table partition key
			keys = table.PrimaryKeyDefinition{
				PartitionKey: def.KeyDefinitions.PartitionKey,
				SortKey:      idx.KeyDefinitions.SortKey,
			}
		case table.IndexKindGlobal:
			plan.Path = PathGlobal
			keys = idx.KeyDefinitions
		}
		plan.Index = &idx
	}

	if intent.PartitionValue == nil {
		return Plan{}, planError(intent, fmt.Errorf("%w: %s path requires a value for partition key %q", ErrInvalidLookup, plan.Path, keys.PartitionKey.Name))
	}
	pv, err := keyValue(keys.PartitionKey, intent.PartitionValue)
	if err != nil {
		return Plan{}, planError(intent, err)
	}
	plan.Partition = Condition{Key: keys.PartitionKey, Op: SortEqual, Values: []any{pv}}

	if intent.Sort != nil {
		sort, err := sortCondition(keys, intent.Sort)
		if err != nil {
			return Plan{}, planError(intent, err)
		}
		plan.Sort = sort
	}

	if intent.Limit != nil {
		if *intent.Limit <= 0 {
			return Plan{}, planError(intent, fmt.Errorf("%w: must be positive, got %d", ErrInvalidLimit, *intent.Limit))
		}
		limit := *intent.Limit
		plan.Limit = &limit
	}
	return plan, nil
}

func sortCondition(keys table.PrimaryKeyDefinition, sc *SortCondition) (*Condition, error) {
	if !keys.HasSortKey() {
		return nil, fmt.Errorf("%w: sort condition given but key has no sort attribute", ErrInvalidLookup)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLookup, err)
	}
	if sc.Op == SortBeginsWith && keys.SortKey.Kind != table.KeyKindS {
		return nil, fmt.Errorf("%w: begins_with needs a string sort key, %q is %s", ErrInvalidLookup, keys.SortKey.Name, keys.SortKey.Kind)
	}
	values := make([]any, len(sc.Values))
	for i, v := range sc.Values {
		kv, err := keyValue(keys.SortKey, v)
		if err != nil {
			return nil, err
		}
		values[i] = kv
	}
	return &Condition{Key: keys.SortKey, Op: sc.Op, Values: values}, nil
}

// keyValue checks v against the key kind. Numeric strings for number keys are
// converted so they marshal as numbers.
func keyValue(key table.KeyDef, v any) (any, error) {
	if !key.Kind.Accepts(v) {
		return nil, fmt.Errorf("%w: key %q of kind %s does not accept %T value %v", ErrInvalidLookup, key.Name, key.Kind, v, v)
	}
	if s, ok := v.(string); ok && key.Kind == table.KeyKindN {
		return attributevalue.Number(s), nil
	}
	return v, nil
}
