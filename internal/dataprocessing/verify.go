package dataprocessing

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	apperrors "bizreport/internal/errors"
	"bizreport/pkg/contracts/domain"
)

// Verify checks the post-conditions of a cleaned table: exact canonical
// column set and order, expected column kinds, no duplicate rows and month
// labels inside their domain. When report is non-nil every outlier column
// must also lie within the reported bounds.
func Verify(t *domain.Table, schema domain.ColumnSchema, report *domain.OutlierReport) error {
	if err := VerifyStructure(t, schema); err != nil {
		return err
	}
	if err := VerifyUnique(t); err != nil {
		return err
	}
	if report == nil {
		return nil
	}
	return VerifyBounds(t, schema, *report)
}

// VerifyStructure checks column names, order and kinds, and the month domain.
func VerifyStructure(t *domain.Table, schema domain.ColumnSchema) error {
	want := schema.CanonicalNames()
	if got := t.Names(); !slices.Equal(got, want) {
		return &apperrors.SchemaMismatchError{
			Column: strings.Join(got, ","),
			RowID:  apperrors.NoRow,
			Reason: fmt.Sprintf("columns differ from canonical set %v", want),
		}
	}

	months := make(map[string]bool, len(domain.MonthLabels))
	for _, m := range domain.MonthLabels {
		months[m] = true
	}

	for _, spec := range schema.Canonical() {
		col, _ := t.Column(spec.Canonical)
		if kind := expectedKind(spec.Type); col.Kind != kind {
			return apperrors.NewKindError(spec.Canonical, kind.String(), col.Kind.String())
		}
		if spec.Type == domain.SemanticCategoricalText {
			for i, v := range col.Text {
				if !months[v] {
					return apperrors.NewDomainError(spec.Canonical, t.RowIDs[i], v)
				}
			}
		}
	}
	return nil
}

// VerifyUnique fails on the first row equal to an earlier one.
func VerifyUnique(t *domain.Table) error {
	dups := DuplicateRows(t)
	if len(dups) == 0 {
		return nil
	}
	d := dups[0]
	return &apperrors.SchemaMismatchError{
		Column: "*",
		RowID:  t.RowIDs[d.Position],
		Value:  strconv.Itoa(t.RowIDs[d.First]),
		Reason: "row duplicates an earlier row",
	}
}

// Duplicate pairs a repeated row with the position of its first occurrence.
type Duplicate struct {
	Position int
	First    int
}

// DuplicateRows lists every row whose formatted values equal an earlier row.
func DuplicateRows(t *domain.Table) []Duplicate {
	var dups []Duplicate
	seen := make(map[string]int, t.Len())
	var b strings.Builder
	for i := 0; i < t.Len(); i++ {
		b.Reset()
		for _, v := range t.Row(i) {
			writeKeyPart(&b, v)
		}
		if first, dup := seen[b.String()]; dup {
			dups = append(dups, Duplicate{Position: i, First: first})
			continue
		}
		seen[b.String()] = i
	}
	return dups
}

// CollapseDuplicates drops every row equal to an earlier one, keeping the
// first occurrence, and removes the dropped rows from report. It returns the
// number of rows dropped.
func CollapseDuplicates(t *domain.Table, report domain.OutlierReport) (*domain.Table, domain.OutlierReport, int) {
	dups := DuplicateRows(t)
	if len(dups) == 0 {
		return t, report, 0
	}

	dropped := make(map[int]bool, len(dups))
	for _, d := range dups {
		dropped[d.Position] = true
	}
	keep := make([]int, 0, t.Len()-len(dups))
	droppedIDs := make(map[int]bool, len(dups))
	for i := 0; i < t.Len(); i++ {
		if dropped[i] {
			droppedIDs[t.RowIDs[i]] = true
			continue
		}
		keep = append(keep, i)
	}

	out := domain.OutlierReport{Columns: make([]domain.ColumnOutliers, len(report.Columns))}
	for i, c := range report.Columns {
		entries := make([]domain.OutlierEntry, 0, len(c.Entries))
		for _, e := range c.Entries {
			if !droppedIDs[e.RowID] {
				entries = append(entries, e)
			}
		}
		out.Columns[i] = domain.ColumnOutliers{Column: c.Column, Bounds: c.Bounds, Entries: entries}
	}
	return t.Take(keep), out, len(dups)
}

// VerifyBounds checks every outlier column against its reported bounds.
func VerifyBounds(t *domain.Table, schema domain.ColumnSchema, report domain.OutlierReport) error {
	for _, name := range schema.OutlierColumns() {
		bounds, ok := report.Bounds(name)
		if !ok {
			return fmt.Errorf("outlier report has no bounds for column %q", name)
		}
		col, ok := t.Column(name)
		if !ok {
			return apperrors.NewMissingColumnError(name)
		}
		for i, v := range col.Ints {
			if !bounds.Contains(float64(v)) {
				return &apperrors.SchemaMismatchError{
					Column: name,
					RowID:  t.RowIDs[i],
					Value:  strconv.FormatInt(v, 10),
					Reason: fmt.Sprintf("value outside bounds [%g, %g]", bounds.Lower, bounds.Upper),
				}
			}
		}
	}
	return nil
}

func expectedKind(t domain.SemanticType) domain.Kind {
	switch t {
	case domain.SemanticCurrencyText, domain.SemanticIntegerText, domain.SemanticNumeric:
		return domain.KindInteger
	case domain.SemanticDateText, domain.SemanticDate:
		return domain.KindDate
	case domain.SemanticCategoricalText:
		return domain.KindCategory
	default:
		return domain.KindText
	}
}
