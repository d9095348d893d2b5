package models

// Row is one scraped table row. Cells stay as text, positional to the column schema.
type Row []string

// PageResult holds the rows extracted from a single page
type PageResult []Row

// Dataset is every row accumulated across one run, in fetch order
type Dataset []Row

// ColumnSchema is the ordered list of output column names
type ColumnSchema []string

// DefaultColumns is the header used for the H1B sponsor report
var DefaultColumns = ColumnSchema{"Rank", "H1B Visa Sponsor", "Number of LCA", "Average Salary"}

// Equal reports whether two rows hold the same cells in the same order
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// RowsEqual reports whether two page results are identical row by row
func RowsEqual(a, b PageResult) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
