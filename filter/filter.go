package filter

import (
	"h1b-scraper/models"
)

// DropEmptyRows removes rows that carry no data and returns the number dropped.
//
// The first pass drops rows whose cells are all missing. The second pass
// turns empty-string cells into missing cells and drops rows that end up
// all missing, which catches rows made only of empty strings.
func DropEmptyRows(t *models.Table) int {
	before := len(t.Rows)

	t.Rows = keepRows(t.Rows)

	for _, row := range t.Rows {
		normalizeEmpty(row)
	}
	t.Rows = keepRows(t.Rows)

	return before - len(t.Rows)
}

// keepRows returns the rows that have at least one present cell
func keepRows(rows [][]models.Cell) [][]models.Cell {
	var kept [][]models.Cell
	for _, row := range rows {
		if !allMissing(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

func allMissing(row []models.Cell) bool {
	for _, c := range row {
		if c.Valid {
			return false
		}
	}
	return true
}

// normalizeEmpty marks empty-string cells as missing
func normalizeEmpty(row []models.Cell) {
	for i := range row {
		if row[i].Valid && row[i].Value == "" {
			row[i] = models.Cell{}
		}
	}
}
