package planner

import "fmt"

// SortOp is the comparison applied to the sort key.
type SortOp string

const (
	SortEqual          SortOp = "="
	SortLessThan       SortOp = "<"
	SortLessOrEqual    SortOp = "<="
	SortGreaterThan    SortOp = ">"
	SortGreaterOrEqual SortOp = ">="
	SortBetween        SortOp = "BETWEEN"
	SortBeginsWith     SortOp = "begins_with"
)

// SortCondition restricts the sort key within a partition.
// Values holds one operand, or two for SortBetween.
type SortCondition struct {
	Op     SortOp
	Values []any
}

// SortEquals returns items where the sort key equals v.
func SortEquals(v any) *SortCondition {
	return &SortCondition{Op: SortEqual, Values: []any{v}}
}

// BeginsWith returns items where the sort key starts with the provided prefix.
func BeginsWith(prefix string) *SortCondition {
	return &SortCondition{Op: SortBeginsWith, Values: []any{prefix}}
}

// Between returns items where the sort key is between start and end (inclusive).
func Between(start, end any) *SortCondition {
	return &SortCondition{Op: SortBetween, Values: []any{start, end}}
}

func GreaterThan(v any) *SortCondition        { return &SortCondition{Op: SortGreaterThan, Values: []any{v}} }
func GreaterThanOrEqual(v any) *SortCondition { return &SortCondition{Op: SortGreaterOrEqual, Values: []any{v}} }
func LessThan(v any) *SortCondition           { return &SortCondition{Op: SortLessThan, Values: []any{v}} }
func LessThanOrEqual(v any) *SortCondition    { return &SortCondition{Op: SortLessOrEqual, Values: []any{v}} }

func (c *SortCondition) arity() int {
	if c.Op == SortBetween {
		return 2
	}
	return 1
}

func (c *SortCondition) validate() error {
	switch c.Op {
	case SortEqual, SortLessThan, SortLessOrEqual, SortGreaterThan, SortGreaterOrEqual, SortBetween, SortBeginsWith:
	default:
		return fmt.Errorf("unsupported sort key operator %q", c.Op)
	}
	if len(c.Values) != c.arity() {
		return fmt.Errorf("sort key operator %q takes %d values, got %d", c.Op, c.arity(), len(c.Values))
	}
	return nil
}
