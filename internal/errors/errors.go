// Package errors defines the error kinds shared across appline and the
// structured error type rendered by the mainline when something goes wrong.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes
const (
	ExitSuccess = iota
	ExitGeneralError
	ExitInvalidArguments
)

// Kind is a sentinel error with a display name used in the error banner.
type Kind struct {
	name string
	desc string
}

func (k *Kind) Error() string {
	return k.desc
}

// Name returns the display name of the kind, e.g. "BadOption".
func (k *Kind) Name() string {
	return k.name
}

var (
	ErrBadOption      = &Kind{name: "BadOption", desc: "Bad option"}
	ErrUserQuit       = &Kind{name: "UserQuit", desc: "User Quit"}
	ErrUsage          = &Kind{name: "UsageError", desc: "usage error"}
	ErrConfigNotFound = &Kind{name: "ConfigNotFound", desc: "configuration not found"}
	ErrTaskNotFound   = &Kind{name: "TaskNotFound", desc: "task not found"}
	ErrCommandFailed  = &Kind{name: "CommandFailed", desc: "command failed"}
)

// Field is a single piece of key/value context attached to an error.
type Field struct {
	Key   string
	Value any
}

// F builds a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Fielder is implemented by errors that carry key/value context.
type Fielder interface {
	Fields() []Field
}

// Error is a structured error: a kind, a message, key/value context and
// optionally a list of nested errors.
type Error struct {
	Kind    *Kind
	Message string
	fields  []Field
	errs    []error
}

// New creates a structured error of the given kind.
func New(kind *Kind, message string, fields ...Field) *Error {
	return &Error{Kind: kind, Message: message, fields: fields}
}

// WithErrors attaches nested errors, shown under "errors:" in the banner.
func (e *Error) WithErrors(errs ...error) *Error {
	e.errs = append(e.errs, errs...)
	return e
}

// Fields returns the key/value context of the error.
func (e *Error) Fields() []Field {
	return e.fields
}

// Errors returns the nested errors.
func (e *Error) Errors() []error {
	return e.errs
}

func (e *Error) Error() string {
	message := e.Message
	if message == "" && e.Kind != nil {
		message = e.Kind.desc
	}
	return describe(message, e.fields)
}

func (e *Error) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	return append(out, e.errs...)
}

// describe renders `"message"\tkey=value\tkey=value`.
func describe(message string, fields []Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q", message)
	for _, f := range fields {
		fmt.Fprintf(&b, "\t%s=%v", f.Key, f.Value)
	}
	return b.String()
}

// Name returns the display name for an error: the name of the first Kind
// found in its chain, or "Error" when it has none.
func Name(err error) string {
	var k *Kind
	if errors.As(err, &k) {
		return k.name
	}
	return "Error"
}

// IsStructured reports whether err carries an appline Kind.
func IsStructured(err error) bool {
	var k *Kind
	return errors.As(err, &k)
}

// Banner renders err the way the mainline prints it.
func Banner(err error) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(strings.Repeat("!", 80))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Something went wrong! -- %s\n", Name(err))
	fmt.Fprintf(&b, "\t%s\n", summary(err))

	var nested []error
	var se *Error
	if errors.As(err, &se) {
		nested = se.errs
	}
	if len(nested) > 0 {
		b.WriteString("errors:\n=======\n\n")
		for _, sub := range nested {
			fmt.Fprintf(&b, "\t%s\n-------\n", summary(sub))
		}
	}
	return b.String()
}

// summary renders one error line for the banner.
func summary(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Error()
	}
	var f Fielder
	if errors.As(err, &f) {
		return describe(messageOf(err), f.Fields())
	}
	return describe(err.Error(), nil)
}

type messager interface {
	Msg() string
}

func messageOf(err error) string {
	var m messager
	if errors.As(err, &m) {
		return m.Msg()
	}
	return err.Error()
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrUsage):
		return ExitInvalidArguments
	default:
		return ExitGeneralError
	}
}
