package parser

import (
	"errors"
	"fmt"
)

// Error represents a parser error with optional metadata.
type Error struct {
	Err        error
	Pos        Position
	Incomplete bool
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	if e.Pos.Line == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Err.Error())
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Message returns the error text without position information.
func (e *Error) Message() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newError(pos Position, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, Pos: pos}
}

func newIncompleteError(pos Position, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Err:        err,
		Pos:        pos,
		Incomplete: true,
	}
}

// IsIncomplete reports whether the supplied error represents incomplete input.
func IsIncomplete(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Incomplete
	}
	return false
}
