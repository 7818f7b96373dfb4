package domain

// SemanticType declares how the text of a raw column is interpreted.
type SemanticType string

const (
	// SemanticPlainText columns are passed through unchanged.
	SemanticPlainText SemanticType = "plain-text"
	// SemanticCurrencyText columns hold amounts like " $1,200.50 " or " $-   ".
	SemanticCurrencyText SemanticType = "currency-text"
	// SemanticDateText columns hold day/month/year dates.
	SemanticDateText SemanticType = "date-text"
	// SemanticCategoricalText columns are restricted to an enumerated domain.
	SemanticCategoricalText SemanticType = "categorical-text"
	// SemanticIntegerText columns hold plain base-10 integers.
	SemanticIntegerText SemanticType = "integer-text"
	// SemanticNumeric columns already hold integer values and skip coercion.
	SemanticNumeric SemanticType = "numeric"
	// SemanticDate columns already hold calendar dates and skip parsing.
	SemanticDate SemanticType = "date"
)

// ColumnSpec maps one raw column to its canonical name and semantic type.
type ColumnSpec struct {
	Raw       string       `json:"raw" yaml:"raw"`
	Canonical string       `json:"canonical" yaml:"canonical"`
	Type      SemanticType `json:"type" yaml:"type"`

	// Redundant columns take part in renaming but are dropped after
	// deduplication; they never reach the cleaned table.
	Redundant bool `json:"redundant,omitempty" yaml:"redundant,omitempty"`

	// Outliers marks the numeric columns that are winsorized.
	Outliers bool `json:"outliers,omitempty" yaml:"outliers,omitempty"`
}

// ColumnSchema is the ordered raw -> canonical mapping for one dataset.
type ColumnSchema struct {
	Columns []ColumnSpec `json:"columns" yaml:"columns"`
}

// Canonical returns the specs of the columns kept in the cleaned table,
// in canonical order.
func (s ColumnSchema) Canonical() []ColumnSpec {
	out := make([]ColumnSpec, 0, len(s.Columns))
	for _, c := range s.Columns {
		if !c.Redundant {
			out = append(out, c)
		}
	}
	return out
}

// CanonicalNames returns the cleaned table's column names in order.
func (s ColumnSchema) CanonicalNames() []string {
	specs := s.Canonical()
	names := make([]string, len(specs))
	for i, c := range specs {
		names[i] = c.Canonical
	}
	return names
}

// Redundant returns the canonical names of the columns dropped after dedup.
func (s ColumnSchema) Redundant() []string {
	var names []string
	for _, c := range s.Columns {
		if c.Redundant {
			names = append(names, c.Canonical)
		}
	}
	return names
}

// OutlierColumns returns the canonical names of winsorized columns in
// canonical order.
func (s ColumnSchema) OutlierColumns() []string {
	var names []string
	for _, c := range s.Columns {
		if c.Outliers && !c.Redundant {
			names = append(names, c.Canonical)
		}
	}
	return names
}

// Lookup finds a spec by canonical name.
func (s ColumnSchema) Lookup(canonical string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Canonical == canonical {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// MonthLabels is the categorical domain of the month_name column.
var MonthLabels = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// DateLayout is the day/month/year layout of raw date cells. Day and month
// accept one or two digits, the year exactly four.
const DateLayout = "2/1/2006"

// ISODateLayout is the export layout of calendar dates.
const ISODateLayout = "2006-01-02"

// FinancialsSchema returns the schema of the per-transaction sales export.
// Raw names keep the surrounding whitespace present in the source header.
func FinancialsSchema() ColumnSchema {
	return ColumnSchema{Columns: []ColumnSpec{
		{Raw: "Segment", Canonical: "segment", Type: SemanticPlainText},
		{Raw: "Country", Canonical: "country", Type: SemanticPlainText},
		{Raw: " Product ", Canonical: "product", Type: SemanticPlainText},
		{Raw: " Discount Band ", Canonical: "discount_band", Type: SemanticPlainText},
		{Raw: " Units Sold ", Canonical: "units_sold", Type: SemanticCurrencyText, Outliers: true},
		{Raw: " Manufacturing Price ", Canonical: "manufacturing_price", Type: SemanticCurrencyText, Outliers: true},
		{Raw: " Sale Price ", Canonical: "sale_price", Type: SemanticCurrencyText, Outliers: true},
		{Raw: " Gross Sales ", Canonical: "gross_sales", Type: SemanticCurrencyText, Outliers: true},
		{Raw: " Discounts ", Canonical: "discounts", Type: SemanticCurrencyText, Outliers: true},
		{Raw: "  Sales ", Canonical: "sales", Type: SemanticCurrencyText, Outliers: true},
		{Raw: " COGS ", Canonical: "cogs", Type: SemanticCurrencyText, Outliers: true},
		{Raw: " Profit ", Canonical: "profit", Type: SemanticCurrencyText, Outliers: true},
		{Raw: "Date", Canonical: "date", Type: SemanticDateText},
		{Raw: "Month Number", Canonical: "month_number", Type: SemanticIntegerText, Redundant: true},
		{Raw: " Month Name ", Canonical: "month_name", Type: SemanticCategoricalText},
		{Raw: "Year", Canonical: "year", Type: SemanticIntegerText},
	}}
}

// CanonicalFinancialsSchema describes an already cleaned export, where every
// column carries its canonical name and numeric columns hold integers.
func CanonicalFinancialsSchema() ColumnSchema {
	src := FinancialsSchema().Canonical()
	out := make([]ColumnSpec, len(src))
	for i, c := range src {
		c.Raw = c.Canonical
		switch c.Type {
		case SemanticCurrencyText, SemanticIntegerText:
			c.Type = SemanticNumeric
		case SemanticDateText:
			c.Type = SemanticDate
		}
		out[i] = c
	}
	return ColumnSchema{Columns: out}
}
