// Package kerr implements the runtime's closed error taxonomy (spec §4.E,
// §7). An *Error is also a heap Value (spec §3 "errors are first-class
// values"), so it can be thrown, caught, and inspected by a script like any
// other object; object.Type wiring for it lives in internal/typesys.
package kerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"kslang/internal/object"
)

// Kind is the closed set of error kinds a script can catch on (spec §7).
type Kind string

const (
	AttrError     Kind = "AttrError"
	KeyError      Kind = "KeyError"
	TypeError     Kind = "TypeError"
	ArgError      Kind = "ArgError"
	MathError     Kind = "MathError"
	SizeError     Kind = "SizeError"
	SyntaxError   Kind = "SyntaxError"
	InternalError Kind = "InternalError"
	ToDoError     Kind = "ToDoError"
)

// Location mirrors the teacher's SourceLocation: where in source an error
// was raised.
type Location struct {
	File   string
	Line   int
	Column int
}

// StackFrame is one entry of a call stack attached to an error.
type StackFrame struct {
	Function string
	File     string
	Line     int
	Column   int
}

// Error is the single error type flowing through every component. It
// carries an object.Header so it can live on the VM's value stack and be
// decref'd like any other heap value.
type Error struct {
	object.Header
	Kind      Kind
	Message   string
	Location  Location
	Source    string
	CallStack []StackFrame

	// cause holds the wrapped Go error for InternalError, captured with
	// github.com/pkg/errors so embedders get a real stack trace out of
	// "should not happen" failures.
	cause error
}

// DecRef satisfies object.Value; errors have no child references to
// release, so this is just the header bookkeeping.
func (e *Error) DecRef() { e.Header.DecRef(nil) }

// Error implements the standard library's error interface so a *kerr.Error
// can also travel through ordinary Go error-returning code (operator
// slots, native functions) without a second error type.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))
	if e.Location.File != "" {
		sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n", e.Location.File, e.Location.Line, e.Location.Column))
		if e.Source != "" {
			prefix := fmt.Sprintf("%d | ", e.Location.Line)
			sb.WriteString(fmt.Sprintf("\n  %s%s\n", prefix, e.Source))
			sb.WriteString("  " + strings.Repeat(" ", len(prefix)))
			if e.Location.Column > 0 {
				sb.WriteString(strings.Repeat(" ", e.Location.Column-1))
			}
			sb.WriteString("^\n")
		}
	}
	if len(e.CallStack) > 0 {
		sb.WriteString("\nCall Stack:\n")
		for _, f := range e.CallStack {
			if f.Function != "" {
				sb.WriteString(fmt.Sprintf("  at %s (%s:%d:%d)\n", f.Function, f.File, f.Line, f.Column))
			} else {
				sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n", f.File, f.Line, f.Column))
			}
		}
	}
	if e.cause != nil {
		sb.WriteString(fmt.Sprintf("\ncaused by: %+v\n", e.cause))
	}
	return sb.String()
}

func newError(kind Kind, msg string) *Error {
	e := &Error{Kind: kind, Message: msg}
	e.Header = object.NewHeader(nil)
	return e
}

func New(kind Kind, format string, args ...any) *Error {
	return newError(kind, fmt.Sprintf(format, args...))
}

// NewAt is the common case: a kind plus the source position that raised it.
func NewAt(kind Kind, file string, line, column int, format string, args ...any) *Error {
	e := newError(kind, fmt.Sprintf(format, args...))
	e.Location = Location{File: file, Line: line, Column: column}
	return e
}

// NewSyntaxError mirrors the teacher's constructor of the same name.
func NewSyntaxError(message, file string, line, column int) *Error {
	return NewAt(SyntaxError, file, line, column, "%s", message)
}

// Internal wraps an unexpected Go error as an InternalError, capturing a
// stack trace via github.com/pkg/errors so embedders can diagnose runtime
// bugs rather than user mistakes.
func Internal(cause error, format string, args ...any) *Error {
	e := newError(InternalError, fmt.Sprintf(format, args...))
	e.cause = errors.WithStack(cause)
	return e
}

// WithSource attaches the offending source line, for caret-underline
// diagnostics.
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

// WithStack replaces the call stack wholesale.
func (e *Error) WithStack(stack []StackFrame) *Error {
	e.CallStack = stack
	return e
}

// AddStackFrame appends one frame, used as the VM unwinds (spec §4.I).
func (e *Error) AddStackFrame(function, file string, line, column int) *Error {
	e.CallStack = append(e.CallStack, StackFrame{Function: function, File: file, Line: line, Column: column})
	return e
}
