// Package errs defines the five error kinds the core engine raises, all
// implementing a single interface so callers can catch generically or,
// with errors.As, recover the concrete kind and its fields.
package errs

import "fmt"

// ErrorInterface is implemented by every error kind this package defines.
type ErrorInterface interface {
	error
	lucene()
}

// InvalidArgument signals malformed input from the caller: a bad field
// name, an out-of-bounds parameter, a document with no fields, and so on.
type InvalidArgument struct {
	Msg string
}

func NewInvalidArgument(format string, args ...any) *InvalidArgument {
	return &InvalidArgument{Msg: fmt.Sprintf(format, args...)}
}

func (e *InvalidArgument) Error() string { return e.Msg }
func (*InvalidArgument) lucene()         {}

// OutOfRange signals a document id at or beyond docCount.
type OutOfRange struct {
	Msg string
	ID  int
	Max int
}

func NewOutOfRange(id, max int) *OutOfRange {
	return &OutOfRange{
		Msg: fmt.Sprintf("docID must be >= 0 and < maxDoc=%d (got docID=%d)", max, id),
		ID:  id,
		Max: max,
	}
}

func (e *OutOfRange) Error() string { return e.Msg }
func (*OutOfRange) lucene()         {}

// InvalidFileFormat signals an unknown format marker, bad magic, or a
// segment-info layout the reader cannot make sense of.
type InvalidFileFormat struct {
	Msg string
}

func NewInvalidFileFormat(format string, args ...any) *InvalidFileFormat {
	return &InvalidFileFormat{Msg: fmt.Sprintf(format, args...)}
}

func (e *InvalidFileFormat) Error() string { return e.Msg }
func (*InvalidFileFormat) lucene()         {}

// Runtime signals lock contention, IO failures, missing files, or
// unsupported configuration (e.g. separate per-field norm files).
type Runtime struct {
	Msg string
	Err error
}

func NewRuntime(format string, args ...any) *Runtime {
	return &Runtime{Msg: fmt.Sprintf(format, args...)}
}

func WrapRuntime(err error, format string, args ...any) *Runtime {
	return &Runtime{Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Runtime) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Runtime) Unwrap() error { return e.Err }
func (*Runtime) lucene()         {}

// QueryParserError signals a syntax error in a query string, carrying the
// character position of the offending lexeme, per spec §4.8/§7.
type QueryParserError struct {
	Msg string
	Pos int
}

// NewQueryParserError takes pos as the offending token's 0-based rune
// index and reports it 1-based, matching spec §8's literal char-position
// examples.
func NewQueryParserError(pos int) *QueryParserError {
	pos++
	return &QueryParserError{
		Msg: fmt.Sprintf("Syntax error at char position %d.", pos),
		Pos: pos,
	}
}

func NewQueryParserErrorMsg(msg string) *QueryParserError {
	return &QueryParserError{Msg: msg, Pos: -1}
}

func (e *QueryParserError) Error() string { return e.Msg }
func (*QueryParserError) lucene()         {}
