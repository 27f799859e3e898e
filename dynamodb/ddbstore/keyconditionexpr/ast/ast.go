/*
Package ast represents parsed key conditions.

A key condition always holds exactly one partition key equality and at most
one sort key condition. Names and values in the tree are already resolved
from their #name and :value placeholders.
*/
package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/acksell/highscores/dynamodb/ddbstore/ddbnum"
	"golang.org/x/exp/constraints"
)

// Struct representing the KeyCondition.
// Allows you to introspect the key condition in a strictly typed way.
type KeyCondition struct {
	PartitionKeyCond PartitionKeyCondition
	SortKeyCond      *SortKeyCondition
}

type KeyType string

const (
	STRING KeyType = "S"
	NUMBER KeyType = "N"
	BINARY KeyType = "B"
)

// KeyValue is a key attribute value. Value is a string for STRING and
// NUMBER (the decimal literal) and a []byte for BINARY.
type KeyValue struct {
	Value any
	Type  KeyType
}

func (v KeyValue) String() string {
	if b, ok := v.Value.([]byte); ok {
		return fmt.Sprintf("%s:%x", v.Type, b)
	}
	return fmt.Sprintf("%s:%v", v.Type, v.Value)
}

// Compare returns -1, 0 or 1. Values of different types do not compare.
func (v KeyValue) Compare(o KeyValue) (int, error) {
	if v.Type != o.Type {
		return 0, fmt.Errorf("can not compare %s with %s", v.Type, o.Type)
	}
	switch v.Type {
	case STRING:
		return compareOrdered(v.Value.(string), o.Value.(string)), nil
	case NUMBER:
		l, err := ddbnum.Parse(v.Value.(string))
		if err != nil {
			return 0, err
		}
		r, err := ddbnum.Parse(o.Value.(string))
		if err != nil {
			return 0, err
		}
		return l.Compare(r), nil
	case BINARY:
		return bytes.Compare(v.Value.([]byte), o.Value.([]byte)), nil
	}
	return 0, fmt.Errorf("unknown key type %q", v.Type)
}

func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type PartitionKeyCondition struct {
	KeyName string
	Value   KeyValue
}

type SortKeyCondition struct {
	// exactly one is set
	Between    *KeyBetween
	BeginsWith *KeyBeginsWith
	Compare    *KeyComparison
}

func (c *SortKeyCondition) KeyName() string {
	switch {
	case c.Between != nil:
		return c.Between.KeyName
	case c.BeginsWith != nil:
		return c.BeginsWith.KeyName
	case c.Compare != nil:
		return c.Compare.KeyName
	}
	return ""
}

// Values returns the operands of the condition.
func (c *SortKeyCondition) Values() []KeyValue {
	switch {
	case c.Between != nil:
		return []KeyValue{c.Between.Lower, c.Between.Upper}
	case c.BeginsWith != nil:
		return []KeyValue{c.BeginsWith.Prefix}
	case c.Compare != nil:
		return []KeyValue{c.Compare.Value}
	}
	return nil
}

// Matches reports whether a sort key value satisfies the condition.
func (c *SortKeyCondition) Matches(v KeyValue) (bool, error) {
	switch {
	case c.Compare != nil:
		n, err := v.Compare(c.Compare.Value)
		if err != nil {
			return false, err
		}
		return c.Compare.Comp.holds(n), nil
	case c.Between != nil:
		lo, err := v.Compare(c.Between.Lower)
		if err != nil {
			return false, err
		}
		hi, err := v.Compare(c.Between.Upper)
		if err != nil {
			return false, err
		}
		return lo >= 0 && hi <= 0, nil
	case c.BeginsWith != nil:
		prefix := c.BeginsWith.Prefix
		switch v.Type {
		case STRING:
			p, ok := prefix.Value.(string)
			return ok && strings.HasPrefix(v.Value.(string), p), nil
		case BINARY:
			p, ok := prefix.Value.([]byte)
			return ok && bytes.HasPrefix(v.Value.([]byte), p), nil
		}
		return false, fmt.Errorf("begins_with is not supported on %s keys", v.Type)
	}
	return true, nil
}

type KeyBetween struct {
	KeyName string
	Lower   KeyValue
	Upper   KeyValue
}

type KeyBeginsWith struct {
	KeyName string
	Prefix  KeyValue
}

type KeyComparison struct {
	KeyName string
	Comp    KeyComparator
	Value   KeyValue
}

type KeyComparator string

const (
	Equal          KeyComparator = "="
	LessThan       KeyComparator = "<"
	LessOrEqual    KeyComparator = "<="
	GreaterThan    KeyComparator = ">"
	GreaterOrEqual KeyComparator = ">="
)

// holds reports whether a comparison result n (as from KeyValue.Compare)
// satisfies the comparator.
func (c KeyComparator) holds(n int) bool {
	switch c {
	case Equal:
		return n == 0
	case LessThan:
		return n < 0
	case LessOrEqual:
		return n <= 0
	case GreaterThan:
		return n > 0
	case GreaterOrEqual:
		return n >= 0
	}
	return false
}
