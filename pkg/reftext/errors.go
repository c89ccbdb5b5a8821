package reftext

import (
	"fmt"

	"github.com/matzehuels/reftext/pkg/errors"
)

// CharacterLocation localises a deserialization error. Line counts line
// breaks seen so far (starting at 1, CRLF counted once); Space and Tab count
// the spaces and tabs scanned since the last line break. Offset is the byte
// offset into the input at which the error was raised.
type CharacterLocation struct {
	Line   int
	Space  int
	Tab    int
	Offset int
}

// String returns the location in human readable form.
func (l CharacterLocation) String() string {
	return fmt.Sprintf("line %d, space %d, tab %d, offset %d", l.Line, l.Space, l.Tab, l.Offset)
}

// DeserializeError reports text that could not be turned back into a value.
// Its code is MALFORMED for grammar and resolution failures and BUG for
// states the lexer asserts are unreachable.
type DeserializeError struct {
	Err      *errors.Error
	Method   string
	Location CharacterLocation
}

// Error implements the error interface.
func (e *DeserializeError) Error() string {
	return fmt.Sprintf("deserialize %s: %s (%s)", e.Method, e.Err.Error(), e.Location)
}

// Unwrap exposes the coded error to errors.Is/As and to errors.GetCode.
func (e *DeserializeError) Unwrap() error { return e.Err }

// Code returns the error code.
func (e *DeserializeError) Code() errors.Code { return e.Err.Code }

// SerializeError reports a value that could not be written. Path is the
// reference path text of the offending value.
type SerializeError struct {
	Err  *errors.Error
	Path string
}

// Error implements the error interface.
func (e *SerializeError) Error() string {
	return fmt.Sprintf("serialize %s: %s", e.Path, e.Err.Error())
}

// Unwrap exposes the coded error to errors.Is/As and to errors.GetCode.
func (e *SerializeError) Unwrap() error { return e.Err }

// Code returns the error code.
func (e *SerializeError) Code() errors.Code { return e.Err.Code }

func serializeError(code errors.Code, path, format string, args ...any) *SerializeError {
	return &SerializeError{Err: errors.New(code, format, args...), Path: path}
}
