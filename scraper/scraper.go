package scraper

import (
	"context"

	"h1b-scraper/fetcher"
	"h1b-scraper/models"
	"h1b-scraper/pageurl"
	"h1b-scraper/parser"

	"github.com/charmbracelet/log"
)

// StopReason tells why pagination ended
type StopReason string

const (
	StopEmptyPage  StopReason = "empty_page"
	StopRepeatPage StopReason = "repeat_page"
	StopPageLimit  StopReason = "page_limit"
	StopCanceled   StopReason = "canceled"
)

// Config holds the pagination settings
type Config struct {
	BaseURL    string
	TableClass string
	// MaxPages caps the number of pages fetched. Zero means no limit.
	MaxPages int
}

// Result is the outcome of one pagination run
type Result struct {
	Rows       models.Dataset
	Pages      int
	StopReason StopReason
	LastURL    string
}

// Scraper walks the report pages and extracts the sponsor table from each
type Scraper struct {
	fetcher fetcher.Fetcher
	cfg     Config
	logger  *log.Logger
}

// New creates a Scraper. An empty table class falls back to parser.DefaultTableClass.
func New(f fetcher.Fetcher, cfg Config, logger *log.Logger) *Scraper {
	if cfg.TableClass == "" {
		cfg.TableClass = parser.DefaultTableClass
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scraper{
		fetcher: f,
		cfg:     cfg,
		logger:  logger.With("component", "scraper"),
	}
}

// FetchPage fetches one page and extracts its rows.
// Fetch and parse failures are logged and reported as an empty result.
func (s *Scraper) FetchPage(ctx context.Context, url string) models.PageResult {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Warn("Error fetching data", "url", url, "err", err)
		return nil
	}

	rows, found, err := parser.ParseTable(body, s.cfg.TableClass)
	if err != nil {
		s.logger.Warn("Error parsing page", "url", url, "err", err)
		return nil
	}
	if !found {
		s.logger.Warn("No table found", "url", url, "selector", parser.TableSelector(s.cfg.TableClass))
		return nil
	}

	s.logger.Info("Data extracted", "url", url, "rows", len(rows))
	return rows
}

// ScrapeAll fetches pages starting at page 1 until a page comes back empty,
// a page repeats the previous one exactly, or MaxPages is reached.
// A repeated page is not added to the result.
func (s *Scraper) ScrapeAll(ctx context.Context) Result {
	var (
		result   Result
		previous models.PageResult
	)

	for page := pageurl.FirstPage; ; page++ {
		if ctx.Err() != nil {
			result.StopReason = StopCanceled
			s.logger.Warn("Pagination canceled", "page", page, "err", ctx.Err())
			return result
		}

		url := pageurl.Build(s.cfg.BaseURL, page)
		result.LastURL = url
		result.Pages++

		rows := s.FetchPage(ctx, url)

		if len(rows) == 0 {
			result.StopReason = StopEmptyPage
			s.logger.Info("No more data found. Stopping.", "url", url)
			return result
		}

		if previous != nil && models.RowsEqual(rows, previous) {
			result.StopReason = StopRepeatPage
			s.logger.Info("No new data found. Stopping.", "url", url)
			return result
		}

		result.Rows = append(result.Rows, rows...)
		previous = rows

		if s.cfg.MaxPages > 0 && page >= s.cfg.MaxPages {
			result.StopReason = StopPageLimit
			s.logger.Info("Reached maximum pages limit. Stopping.", "max_pages", s.cfg.MaxPages)
			return result
		}
	}
}
