package parser

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every parse and validation error.
var ErrSyntax = errors.New("invalid dbml")

// Error is a DBML syntax or validation error at a source position.
type Error struct {
	Line    int
	Column  int
	Message string
}

func newError(line, column int, format string, args ...any) *Error {
	return &Error{Line: line, Column: column, Message: fmt.Sprintf(format, args...)}
}

// Error returns the error string.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: line %d, column %d: %s", ErrSyntax, e.Line, e.Column, e.Message)
}

// Is reports whether target is ErrSyntax.
func (e *Error) Is(target error) bool {
	return target == ErrSyntax
}
