package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"h1b-scraper/models"

	"github.com/charmbracelet/log"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// CredentialsEnv holds service account JSON when no credentials file is given
const CredentialsEnv = "GOOGLE_SHEETS_CREDENTIALS"

// Writer handles writing tables to Google Sheets
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// NewWriter creates a new Google Sheets writer that adds a tab named sheetName
func NewWriter(ctx context.Context, spreadsheetID, sheetName, credentialsPath string, logger *log.Logger) (*Writer, error) {
	credsJSON, err := loadCredentials(credentialsPath, logger)
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewWriterWithService(service, spreadsheetID, sheetName, logger), nil
}

// NewWriterWithService wraps an already configured sheets service
func NewWriterWithService(service *sheets.Service, spreadsheetID, sheetName string, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.Default()
	}
	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sanitizeSheetName(sheetName),
		logger:        logger.With("component", "sheets"),
	}
}

// loadCredentials reads service account JSON from a file or from CredentialsEnv
func loadCredentials(credentialsPath string, logger *log.Logger) ([]byte, error) {
	var credsJSON []byte

	if credentialsPath != "" {
		data, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		credsJSON = data
	} else {
		credsEnv := strings.TrimSpace(os.Getenv(CredentialsEnv))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: %s environment variable is empty or not set", CredentialsEnv)
		}
		if logger != nil {
			logger.Debug("reading credentials from environment", "var", CredentialsEnv, "bytes", len(credsEnv))
		}
		credsJSON = []byte(credsEnv)
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON (check if JSON is properly formatted): %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}

	return credsJSON, nil
}

// Name implements Sink
func (w *Writer) Name() string {
	return "google-sheets:" + w.spreadsheetID
}

// WriteTable implements Sink. It inserts a new tab at the beginning of the
// spreadsheet and writes the header and rows to it.
func (w *Writer) WriteTable(ctx context.Context, t *models.Table) error {
	sheetID, err := w.addSheet(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("Created sheet", "name", w.sheetName, "id", sheetID)

	valueRange := &sheets.ValueRange{
		Values: tableValues(t),
	}

	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, fmt.Sprintf("%s!A1", w.sheetName), valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write to sheet: %w", err)
	}

	return nil
}

// addSheet creates the tab at index 0 and returns its sheet ID (gid)
func (w *Writer) addSheet(ctx context.Context) (int64, error) {
	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: w.sheetName,
						Index: 0,
					},
				},
			},
		},
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batchUpdateRequest).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	var sheetID int64
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}
	return sheetID, nil
}

// tableValues renders the header and rows, missing cells as empty strings
func tableValues(t *models.Table) [][]interface{} {
	values := make([][]interface{}, 0, t.Len()+1)

	header := make([]interface{}, len(t.Columns))
	for i, name := range t.Columns {
		header[i] = name
	}
	values = append(values, header)

	for i := range t.Rows {
		cells := t.Strings(i)
		row := make([]interface{}, len(cells))
		for j, v := range cells {
			row[j] = v
		}
		values = append(values, row)
	}
	return values
}

// maxSheetNameLength is the Google Sheets limit on tab titles, in characters
const maxSheetNameLength = 100

// sanitizeSheetName removes invalid characters from sheet name
func sanitizeSheetName(name string) string {
	// Google Sheets sheet names cannot contain: / \ ? * [ ]
	invalidChars := []string{"/", "\\", "?", "*", "[", "]"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if runes := []rune(result); len(runes) > maxSheetNameLength {
		result = string(runes[:maxSheetNameLength])
	}
	if result == "" {
		result = DefaultSheetName
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func ExtractSpreadsheetID(url string) string {
	// https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit?usp=sharing
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		return ""
	}

	idPart := parts[1]
	if idx := strings.Index(idPart, "/"); idx != -1 {
		idPart = idPart[:idx]
	}
	if idx := strings.Index(idPart, "?"); idx != -1 {
		idPart = idPart[:idx]
	}

	return strings.TrimSpace(idPart)
}
