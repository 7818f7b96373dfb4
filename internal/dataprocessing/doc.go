// Package dataprocessing implements the stages that turn a raw sales export
// into a typed, deduplicated and statistically bounded table.
//
// # Architecture
//
// Every stage is a transformation from one domain.Table to the next. A stage
// takes ownership of its input and returns a new table; it never mutates a
// table it has already handed on.
//
// 1. Normalizer: renames raw columns, removes duplicate rows, drops the
// redundant month number column
// 2. Coercer: converts currency and integer text into int64 columns
// 3. Parser: parses day/month/year dates and restricts month labels
// 4. Clipper: computes IQR fences per numeric column and winsorizes
//
// Readers (ReadCSV, ReadXLSX, ReadCanonical) build the input tables and
// Verify checks the cleaned table against its post-conditions.
//
// # Usage
//
//	raw, err := dataprocessing.ReadCSV(f, dataprocessing.ReaderOptions{})
//	if err != nil {
//	    return err
//	}
//	schema := domain.FinancialsSchema()
//	table, err := dataprocessing.NewNormalizer(schema, logger).Rename(raw)
//
// The operations package sequences the stages; most callers should use it
// rather than calling the stages directly.
//
// # Error Handling
//
// Stages fail on the first bad cell. Missing columns, out-of-domain labels
// and columns of the wrong kind are reported as *errors.SchemaMismatchError;
// unparseable cells as *errors.ParseError. Both carry the column, the input
// row position and the offending text.
package dataprocessing
