package sheets

import (
	"context"
	"fmt"

	"h1b-scraper/filter"
	"h1b-scraper/models"

	"github.com/charmbracelet/log"
)

// Sink receives the final table of a run
type Sink interface {
	// Name identifies the sink in logs
	Name() string

	// WriteTable writes the header and every row of t
	WriteTable(ctx context.Context, t *models.Table) error
}

// Save aligns rows to the column schema, drops empty rows and hands the
// table to each sink in order. It reports false without touching any sink
// when there is nothing to save. The first sink error stops the save.
func Save(ctx context.Context, logger *log.Logger, rows models.Dataset, columns models.ColumnSchema, sinks ...Sink) (bool, error) {
	if logger == nil {
		logger = log.Default()
	}

	if len(rows) == 0 {
		logger.Info("No data to save. Exiting.")
		return false, nil
	}
	if len(columns) == 0 {
		return false, fmt.Errorf("column schema is empty")
	}

	table := models.NewTable(rows, columns)
	if dropped := filter.DropEmptyRows(table); dropped > 0 {
		logger.Debug("dropped empty rows", "count", dropped)
	}

	for _, sink := range sinks {
		if err := sink.WriteTable(ctx, table); err != nil {
			return false, fmt.Errorf("failed to write to %s: %w", sink.Name(), err)
		}
		logger.Info("Data has been successfully saved", "sink", sink.Name(), "rows", table.Len())
	}

	return true, nil
}
