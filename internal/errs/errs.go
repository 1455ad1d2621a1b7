// Package errs defines the error kinds surfaced to users.
//
// Every failure is one of three kinds: the schema could not be read or is
// malformed, the parameters do not make sense together, or the filesystem
// refused a read or write. Callers match kinds with errors.Is against the
// sentinels below.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	KindSchema Kind = iota + 1
	KindConfig
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema error"
	case KindConfig:
		return "config error"
	case KindIO:
		return "io error"
	}
	return "error"
}

// Sentinels for errors.Is.
var (
	ErrSchema = &Error{Kind: KindSchema}
	ErrConfig = &Error{Kind: KindConfig}
	ErrIO     = &Error{Kind: KindIO}
)

// Error carries a kind, the operation that failed and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return e.Op
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrConfig) works
// regardless of Op and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Schemaf returns a schema error with a formatted message.
func Schemaf(format string, a ...any) error {
	return &Error{Kind: KindSchema, Err: fmt.Errorf(format, a...)}
}

// Configf returns a config error with a formatted message.
func Configf(format string, a ...any) error {
	return &Error{Kind: KindConfig, Err: fmt.Errorf(format, a...)}
}

// IO wraps err as an io error for op. A nil err stays nil.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIO, Op: op, Err: err}
}

// Schema wraps err as a schema error for op. A nil err stays nil.
func Schema(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindSchema, Op: op, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
