package models

import (
	"errors"
	"fmt"
)

var (
	// ErrParse marks text that could not be read as a number.
	ErrParse = errors.New("parse error")
	// ErrStructure marks a table that lacks the expected layout.
	ErrStructure = errors.New("structure error")
)

// ParseError reports a cell that failed numeric conversion.
type ParseError struct {
	Sheet  string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	loc := e.Column
	if e.Sheet != "" {
		loc = fmt.Sprintf("%s row %d column %q", e.Sheet, e.Row, e.Column)
	}
	return fmt.Sprintf("parse %s: invalid number %q: %v", loc, e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// StructureError reports a table that is missing or malformed.
type StructureError struct {
	Table  string
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("table %q: %s", e.Table, e.Reason)
}

func (e *StructureError) Unwrap() error {
	return ErrStructure
}
