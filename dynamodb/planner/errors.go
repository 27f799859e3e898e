package planner

import (
	"errors"
	"fmt"

	"github.com/acksell/highscores/dynamodb/table"
)

var (
	ErrUnknownCollection = table.ErrUnknownCollection
	ErrUnknownIndex      = table.ErrUnknownIndex
	// ErrInvalidLookup is returned when an intent lacks a value the chosen
	// access path requires, or supplies a value of the wrong key kind.
	ErrInvalidLookup = errors.New("invalid lookup")
	ErrInvalidLimit  = errors.New("invalid limit")
)

// Error describes a failed planning call. It matches the underlying sentinel
// with errors.Is.
type Error struct {
	Op    string
	Table string
	Index string
	Err   error
}

func (e *Error) Error() string {
	if e.Index != "" {
		return fmt.Sprintf("planner: %s %s/%s: %v", e.Op, e.Table, e.Index, e.Err)
	}
	return fmt.Sprintf("planner: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func planError(intent Intent, err error) error {
	return &Error{Op: "plan", Table: intent.Table, Index: intent.IndexName, Err: err}
}
