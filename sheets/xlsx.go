package sheets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"h1b-scraper/models"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the name of the single sheet in the output workbook
const DefaultSheetName = "Sheet1"

// FileWriter writes a table to an .xlsx workbook on disk
type FileWriter struct {
	path      string
	sheetName string
}

// NewFileWriter creates a FileWriter for the given path. An empty sheet name
// falls back to DefaultSheetName.
func NewFileWriter(path, sheetName string) *FileWriter {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &FileWriter{path: path, sheetName: sheetName}
}

// Name implements Sink
func (w *FileWriter) Name() string {
	return "xlsx:" + w.path
}

// Path returns the output file path
func (w *FileWriter) Path() string {
	return w.path
}

// WriteTable implements Sink. The header row is the column schema and there
// is no index column. Missing cells are left blank.
func (w *FileWriter) WriteTable(_ context.Context, t *models.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if w.sheetName != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, w.sheetName); err != nil {
			return fmt.Errorf("invalid sheet name %q: %w", w.sheetName, err)
		}
	}

	for col, name := range t.Columns {
		if err := w.setCell(f, col+1, 1, name); err != nil {
			return err
		}
	}
	if err := w.styleHeader(f, len(t.Columns)); err != nil {
		return err
	}

	for i, row := range t.Rows {
		for col, c := range row {
			if !c.Valid {
				continue
			}
			if err := w.setCell(f, col+1, i+2, c.Value); err != nil {
				return err
			}
		}
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (w *FileWriter) setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell position (%d, %d): %w", col, row, err)
	}
	if err := f.SetCellStr(w.sheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}

// styleHeader bolds the header row
func (w *FileWriter) styleHeader(f *excelize.File, width int) error {
	if width == 0 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return fmt.Errorf("invalid header width %d: %w", width, err)
	}
	if err := f.SetCellStyle(w.sheetName, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}
