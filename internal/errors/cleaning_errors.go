package errors

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed data-quality errors.
var (
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrParse          = errors.New("parse error")
)

// NoRow marks a data-quality error that is not tied to a single row, such
// as a missing header column.
const NoRow = -1

// SchemaMismatchError reports input whose shape does not fit the declared
// column schema: an expected column is missing, a categorical value falls
// outside its domain, or a column holds the wrong kind for its stage.
type SchemaMismatchError struct {
	Column string
	RowID  int
	Value  string
	Reason string
}

// NewMissingColumnError reports an expected raw column absent from the header.
func NewMissingColumnError(column string) *SchemaMismatchError {
	return &SchemaMismatchError{Column: column, RowID: NoRow, Reason: "column not found"}
}

// NewDomainError reports a categorical value outside its declared domain.
func NewDomainError(column string, rowID int, value string) *SchemaMismatchError {
	return &SchemaMismatchError{Column: column, RowID: rowID, Value: value, Reason: "value outside categorical domain"}
}

// NewKindError reports a column whose representation does not satisfy the
// precondition of the stage processing it.
func NewKindError(column, want, got string) *SchemaMismatchError {
	return &SchemaMismatchError{
		Column: column,
		RowID:  NoRow,
		Reason: fmt.Sprintf("expected %s column, got %s", want, got),
	}
}

func (e *SchemaMismatchError) Error() string {
	if e.RowID == NoRow {
		return fmt.Sprintf("schema mismatch: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("schema mismatch: column %q row %d: %s: %q", e.Column, e.RowID, e.Reason, e.Value)
}

// Is matches ErrSchemaMismatch.
func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// ParseError reports a cell that cannot be parsed under its column's
// semantic type.
type ParseError struct {
	Column string
	RowID  int
	Value  string
	Cause  error
}

// NewParseError creates a parse error for one cell.
func NewParseError(column string, rowID int, value string, cause error) *ParseError {
	return &ParseError{Column: column, RowID: rowID, Value: value, Cause: cause}
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error: column %q row %d: cannot parse %q", e.Column, e.RowID, e.Value)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// IsDataError reports whether err is caused by the content of the input
// rather than by the environment.
func IsDataError(err error) bool {
	return errors.Is(err, ErrSchemaMismatch) || errors.Is(err, ErrParse)
}
