package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"h1b-scraper/fetcher"
	"h1b-scraper/models"
	"h1b-scraper/pageurl"
	"h1b-scraper/parser"
	"h1b-scraper/sheets"

	"gopkg.in/yaml.v3"
)

// Defaults for a run against the data engineer report
const (
	DefaultBaseURL    = "https://www.myvisajobs.com/reports/h1b/job-title/data-engineer"
	DefaultOutputPath = "data_engineer_h1b_visa_jobs_combined.xlsx"
	DefaultLogLevel   = "info"
)

// Config represents the run configuration
type Config struct {
	Scraper      ScraperConfig      `yaml:"scraper"`
	Output       OutputConfig       `yaml:"output"`
	GoogleSheets GoogleSheetsConfig `yaml:"google_sheets"`
	Database     DatabaseConfig     `yaml:"database"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	Log          LogConfig          `yaml:"log"`
}

// ScraperConfig controls fetching and pagination
type ScraperConfig struct {
	BaseURL    string        `yaml:"base_url"`
	TableClass string        `yaml:"table_class"`
	MaxPages   int           `yaml:"max_pages"` // 0 means no limit
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
	Backend    string        `yaml:"backend"` // colly or rod
}

// OutputConfig controls the spreadsheet file
type OutputConfig struct {
	Path      string   `yaml:"path"`
	SheetName string   `yaml:"sheet_name"`
	Columns   []string `yaml:"columns"`
}

// GoogleSheetsConfig enables the Google Sheets sink when SpreadsheetURL is set
type GoogleSheetsConfig struct {
	SpreadsheetURL  string `yaml:"spreadsheet_url"`
	CredentialsPath string `yaml:"credentials_path"`
}

// DatabaseConfig enables the Postgres sink when URL is set
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// TelegramConfig enables the run summary message when both fields are set
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// LogConfig sets the log level (debug, info, warn, error)
type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig loads configuration from a YAML file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			BaseURL:    DefaultBaseURL,
			TableClass: parser.DefaultTableClass,
			MaxPages:   0,
			Timeout:    fetcher.DefaultTimeout,
			UserAgent:  fetcher.DefaultUserAgent,
			Backend:    fetcher.BackendColly,
		},
		Output: OutputConfig{
			Path:      DefaultOutputPath,
			SheetName: sheets.DefaultSheetName,
			Columns:   append([]string(nil), models.DefaultColumns...),
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// ApplyEnv fills unset secrets from the environment
func (c *Config) ApplyEnv() {
	if c.Database.URL == "" {
		c.Database.URL = os.Getenv("DATABASE_URL")
	}
	if c.Telegram.Token == "" {
		c.Telegram.Token = os.Getenv("H1B_TELEGRAM_TOKEN")
	}
}

// Validate checks that the configuration can drive a run
func (c *Config) Validate() error {
	var errs []error

	if err := pageurl.ValidateBase(c.Scraper.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Scraper.TableClass) == "" {
		errs = append(errs, errors.New("scraper.table_class is empty"))
	}
	if c.Scraper.MaxPages < 0 {
		errs = append(errs, fmt.Errorf("scraper.max_pages must not be negative, got %d", c.Scraper.MaxPages))
	}
	if c.Scraper.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("scraper.timeout must be positive, got %s", c.Scraper.Timeout))
	}
	switch strings.ToLower(c.Scraper.Backend) {
	case "", fetcher.BackendColly, fetcher.BackendRod:
	default:
		errs = append(errs, fmt.Errorf("scraper.backend %q is not one of %s, %s", c.Scraper.Backend, fetcher.BackendColly, fetcher.BackendRod))
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		errs = append(errs, errors.New("output.path is empty"))
	}
	if len(c.Output.Columns) == 0 {
		errs = append(errs, errors.New("output.columns is empty"))
	}
	if c.GoogleSheets.SpreadsheetURL != "" && sheets.ExtractSpreadsheetID(c.GoogleSheets.SpreadsheetURL) == "" {
		errs = append(errs, fmt.Errorf("could not extract spreadsheet ID from URL: %s", c.GoogleSheets.SpreadsheetURL))
	}

	return errors.Join(errs...)
}

// Columns returns the output column schema
func (c *Config) Columns() models.ColumnSchema {
	return models.ColumnSchema(c.Output.Columns)
}
