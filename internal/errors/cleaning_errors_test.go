package errors

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaMismatchError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *SchemaMismatchError
		want string
	}{
		{
			name: "missing column",
			err:  NewMissingColumnError(" Units Sold "),
			want: `schema mismatch: column " Units Sold ": column not found`,
		},
		{
			name: "domain violation",
			err:  NewDomainError("month_name", 4, "Jan"),
			want: `schema mismatch: column "month_name" row 4: value outside categorical domain: "Jan"`,
		},
		{
			name: "kind precondition",
			err:  NewKindError("units_sold", "integer", "text"),
			want: `schema mismatch: column "units_sold": expected integer column, got text`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestParseError_Error(t *testing.T) {
	_, cause := strconv.ParseInt("x", 10, 64)
	err := NewParseError("year", 7, "x", cause)

	assert.Contains(t, err.Error(), `column "year" row 7: cannot parse "x"`)
	assert.ErrorIs(t, err, strconv.ErrSyntax)

	noCause := NewParseError("date", 2, "31-12-2014", nil)
	assert.Equal(t, `parse error: column "date" row 2: cannot parse "31-12-2014"`, noCause.Error())
}

func TestDataErrors_MatchThroughWrapping(t *testing.T) {
	schema := fmt.Errorf("normalize: %w", NewMissingColumnError("Date"))
	parse := fmt.Errorf("coerce: %w", NewParseError("sales", 1, "abc", nil))

	assert.True(t, errors.Is(schema, ErrSchemaMismatch))
	assert.False(t, errors.Is(schema, ErrParse))
	assert.True(t, errors.Is(parse, ErrParse))
	assert.False(t, errors.Is(parse, ErrSchemaMismatch))

	var se *SchemaMismatchError
	require.True(t, errors.As(schema, &se))
	assert.Equal(t, "Date", se.Column)
	assert.Equal(t, NoRow, se.RowID)

	var pe *ParseError
	require.True(t, errors.As(parse, &pe))
	assert.Equal(t, 1, pe.RowID)
	assert.Equal(t, "abc", pe.Value)
}

func TestIsDataError(t *testing.T) {
	assert.True(t, IsDataError(NewDomainError("month_name", 0, "Smarch")))
	assert.True(t, IsDataError(NewAppError(ErrTypeParsing, "wrapped", NewParseError("cogs", 3, "?", nil))))
	assert.False(t, IsDataError(errors.New("disk full")))
	assert.False(t, IsDataError(nil))
}

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageError("failed to open input", cause).WithContext("location", "s3://bucket/in.csv")

	assert.Equal(t, "[STORAGE] failed to open input: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "s3://bucket/in.csv", err.Context["location"])

	bare := &AppError{Type: ErrTypeConfig, Message: "bad format"}
	bare.WithContext("field", "format")
	assert.Equal(t, "[CONFIG] bad format", bare.Error())
	assert.Equal(t, "format", bare.Context["field"])
}
