package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"h1b-scraper/config"
	"h1b-scraper/db"
	"h1b-scraper/fetcher"
	"h1b-scraper/logging"
	"h1b-scraper/notify"
	"h1b-scraper/scraper"
	"h1b-scraper/sheets"

	"github.com/charmbracelet/log"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	baseURL := flag.String("url", "", "Report base URL (overrides config)")
	maxPages := flag.Int("pages", -1, "Maximum number of pages to fetch, 0 for no limit (overrides config)")
	outputPath := flag.String("out", "", "Output .xlsx path (overrides config)")
	flag.Parse()

	logger := logging.MustNew(os.Stdout, config.DefaultLogLevel)

	cfg := loadConfig(*configPath, logger)
	if *baseURL != "" {
		cfg.Scraper.BaseURL = *baseURL
	}
	if *maxPages >= 0 {
		cfg.Scraper.MaxPages = *maxPages
	}
	if *outputPath != "" {
		cfg.Output.Path = *outputPath
	}
	cfg.ApplyEnv()

	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("Invalid log level, keeping info", "level", cfg.Log.Level)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Run failed", "err", err)
	}
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(configPath string, logger *log.Logger) *config.Config {
	if _, err := os.Stat(configPath); err != nil {
		logger.Info("Config file not found. Using default configuration.", "path", configPath)
		return config.GetDefaultConfig()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Warn("Failed to load config file. Using defaults.", "err", err)
		return config.GetDefaultConfig()
	}
	return cfg
}

// run fetches every report page and saves the combined rows.
// Only setup failures are returned; fetch and save problems are logged.
func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	f, err := fetcher.New(cfg.Scraper.Backend, fetcher.Options{
		Timeout:   cfg.Scraper.Timeout,
		UserAgent: cfg.Scraper.UserAgent,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close fetcher", "err", err)
		}
	}()

	s := scraper.New(f, scraper.Config{
		BaseURL:    cfg.Scraper.BaseURL,
		TableClass: cfg.Scraper.TableClass,
		MaxPages:   cfg.Scraper.MaxPages,
	}, logger)

	result := s.ScrapeAll(ctx)
	logger.Info("Pagination finished",
		"pages", result.Pages, "rows", len(result.Rows), "stop_reason", result.StopReason)

	// Saving still runs after an interrupt so fetched rows are not lost
	saveCtx := context.WithoutCancel(ctx)

	sinks := []sheets.Sink{sheets.NewFileWriter(cfg.Output.Path, cfg.Output.SheetName)}

	if w := newSheetsWriter(saveCtx, cfg, logger); w != nil {
		sinks = append(sinks, w)
	}

	if cfg.Database.URL != "" {
		database, err := db.NewDB(saveCtx, cfg.Database.URL, logger)
		if err != nil {
			logger.Warn("Failed to initialize database, skipping", "err", err)
		} else {
			defer database.Close()
			runID, err := database.CreateRun(saveCtx, db.Run{
				BaseURL:     cfg.Scraper.BaseURL,
				Columns:     cfg.Output.Columns,
				Pages:       result.Pages,
				RowsFetched: len(result.Rows),
				StopReason:  string(result.StopReason),
			})
			if err != nil {
				logger.Warn("Failed to record run", "err", err)
			} else {
				sinks = append(sinks, database.Sink(runID))
			}
		}
	}

	saved, saveErr := sheets.Save(saveCtx, logger, result.Rows, cfg.Columns(), sinks...)
	if saveErr != nil {
		logger.Error("Failed to save data", "err", saveErr)
	}

	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		notifier, err := notify.NewNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Warn("Failed to initialize Telegram notifier", "err", err)
		} else if err := notifier.Send(notify.Summary{
			BaseURL:    cfg.Scraper.BaseURL,
			Pages:      result.Pages,
			Rows:       len(result.Rows),
			StopReason: string(result.StopReason),
			OutputPath: cfg.Output.Path,
			Saved:      saved,
			Err:        saveErr,
		}); err != nil {
			logger.Warn("Failed to send run summary", "err", err)
		}
	}

	return nil
}

// newSheetsWriter returns the Google Sheets sink, or nil when it is not
// configured or cannot be initialized
func newSheetsWriter(ctx context.Context, cfg *config.Config, logger *log.Logger) *sheets.Writer {
	if cfg.GoogleSheets.SpreadsheetURL == "" {
		return nil
	}

	spreadsheetID := sheets.ExtractSpreadsheetID(cfg.GoogleSheets.SpreadsheetURL)
	sheetName := fmt.Sprintf("H1B_%s", time.Now().Format("20060102_150405"))

	w, err := sheets.NewWriter(ctx, spreadsheetID, sheetName, cfg.GoogleSheets.CredentialsPath, logger)
	if err != nil {
		logger.Warn("Failed to initialize Google Sheets writer, skipping", "err", err)
		return nil
	}
	return w
}
