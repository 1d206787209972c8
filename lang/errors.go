package lang

import (
	"errors"
	"fmt"

	"github.com/sergev/lexa/parser"
)

// ErrorKind classifies evaluation failures.
type ErrorKind int

const (
	UnknownVariable ErrorKind = iota + 1
	MissingArgument
	UnexpectedArgument
	DuplicateNamedArgument
	DuplicateParameterName
	MalformedParameterPattern
	InvalidOperation
	ImportFailed
	AssertionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownVariable:
		return "UnknownVariable"
	case MissingArgument:
		return "MissingArgument"
	case UnexpectedArgument:
		return "UnexpectedArgument"
	case DuplicateNamedArgument:
		return "DuplicateNamedArgument"
	case DuplicateParameterName:
		return "DuplicateParameterName"
	case MalformedParameterPattern:
		return "MalformedParameterPattern"
	case InvalidOperation:
		return "InvalidOperation"
	case ImportFailed:
		return "ImportFailed"
	case AssertionFailed:
		return "AssertionFailed"
	default:
		return "Unknown"
	}
}

// Error is a classified evaluation error. Name holds the variable,
// parameter or argument name the error is about; Index is the zero-based
// call-order index of an offending argument, or -1.
type Error struct {
	Kind   ErrorKind
	Name   string
	Index  int
	Pos    parser.Position
	Detail string
	Err    error
}

// Message renders the error without its position.
func (e *Error) Message() string {
	switch e.Kind {
	case UnknownVariable:
		return "unknown variable: " + e.Name
	case MissingArgument:
		return "missing argument: " + e.Name
	case UnexpectedArgument:
		if e.Name == "" {
			return "unexpected argument"
		}
		return "unexpected argument: " + e.Name
	case DuplicateNamedArgument:
		return "duplicate argument: " + e.Name
	case DuplicateParameterName:
		return "duplicate parameter: " + e.Name
	case ImportFailed:
		if e.Err != nil {
			return fmt.Sprintf("cannot import %q: %s", e.Name, e.Err)
		}
		return fmt.Sprintf("cannot import %q: %s", e.Name, e.Detail)
	case AssertionFailed:
		if e.Detail == "" {
			return "assertion failed"
		}
		return "assertion failed: " + e.Detail
	}
	if e.Detail == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 {
		return e.Message()
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err, or any error it wraps, is a *Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var le *Error
	for err != nil {
		if !errors.As(err, &le) {
			return false
		}
		if le.Kind == kind {
			return true
		}
		err = le.Err
	}
	return false
}

func newError(kind ErrorKind, name string) *Error {
	return &Error{Kind: kind, Name: name, Index: -1}
}

func invalidf(pos parser.Position, format string, args ...interface{}) *Error {
	return &Error{
		Kind:   InvalidOperation,
		Index:  -1,
		Pos:    pos,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Errorf builds an InvalidOperation error for use by native functions.
func Errorf(format string, args ...interface{}) error {
	return invalidf(parser.Position{}, format, args...)
}

// attachPos fills in the position of an error raised without one.
func attachPos(err error, pos parser.Position) error {
	if le, ok := err.(*Error); ok && le.Pos.Line == 0 {
		le.Pos = pos
	}
	return err
}
