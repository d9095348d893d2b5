package parser

import (
	"bytes"
	"fmt"
	"strings"

	"h1b-scraper/models"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTableClass is the class token of the sponsor table on the report pages
const DefaultTableClass = "tbl"

// TableSelector returns the CSS selector matching tables with the given class token
func TableSelector(tableClass string) string {
	return "table." + strings.TrimSpace(tableClass)
}

// ParseTable extracts data rows from the first table carrying tableClass.
// The first row is treated as the header and skipped. found is false when
// no table matches.
func ParseTable(htmlContent []byte, tableClass string) (rows models.PageResult, found bool, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlContent))
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return ExtractRows(doc.Selection, tableClass)
}

// ExtractRows runs the table extraction against an already parsed document
func ExtractRows(s *goquery.Selection, tableClass string) (models.PageResult, bool, error) {
	if strings.TrimSpace(tableClass) == "" {
		return nil, false, fmt.Errorf("table class is empty")
	}

	table := s.Find(TableSelector(tableClass)).First()
	if table.Length() == 0 {
		return nil, false, nil
	}

	var rows models.PageResult
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		rows = append(rows, extractCells(tr))
	})

	return rows, true, nil
}

// extractCells returns the trimmed text of every td in the row
func extractCells(tr *goquery.Selection) models.Row {
	row := models.Row{}
	tr.Find("td").Each(func(_ int, td *goquery.Selection) {
		row = append(row, strings.TrimSpace(td.Text()))
	})
	return row
}
