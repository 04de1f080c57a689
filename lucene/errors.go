package lucene

import (
	"errors"
	"fmt"
)

var (
	// ErrQueryParse signals input that does not match the query grammar.
	ErrQueryParse = errors.New("query parse failed")
	// ErrEmptyField signals a fielded clause with nothing after the colon.
	ErrEmptyField = errors.New("empty field query")
	// ErrFieldNotFound signals a field outside the allowed search fields.
	ErrFieldNotFound = errors.New("field not found")
)

// QueryParseError wraps ErrQueryParse with the rejected input and the rune
// offset of the furthest position the parser reached.
type QueryParseError struct {
	Input  string
	Offset int
}

func (e *QueryParseError) Error() string {
	return fmt.Sprintf("%s at offset %d in %q", ErrQueryParse.Error(), e.Offset, e.Input)
}

func (e *QueryParseError) Unwrap() error { return ErrQueryParse }

// EmptyFieldQueryError wraps ErrEmptyField with the offending field name.
type EmptyFieldQueryError struct {
	Field string
}

func (e *EmptyFieldQueryError) Error() string {
	return fmt.Sprintf("%s: there must be some text following the colon in %q",
		ErrEmptyField.Error(), e.Field+":")
}

func (e *EmptyFieldQueryError) Unwrap() error { return ErrEmptyField }

// FieldNotFoundError wraps ErrFieldNotFound with the offending field name.
type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q is not a valid search field", ErrFieldNotFound.Error(), e.Field)
}

func (e *FieldNotFoundError) Unwrap() error { return ErrFieldNotFound }
