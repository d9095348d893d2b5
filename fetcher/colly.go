package fetcher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gocolly/colly/v2"
)

// CollyFetcher implements the Fetcher interface using colly
type CollyFetcher struct {
	collector *colly.Collector
	logger    *log.Logger
}

// NewCollyFetcher creates a new CollyFetcher instance
func NewCollyFetcher(opts Options) *CollyFetcher {
	opts = opts.withDefaults()

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.SetRequestTimeout(opts.Timeout)

	return &CollyFetcher{
		collector: c,
		logger:    opts.Logger.With("backend", BackendColly),
	}
}

// Fetch implements the Fetcher interface. Any 2xx response is a success,
// every other status is returned as an error. Canceling ctx aborts the
// request in flight.
func (cf *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Callbacks are per request, so each fetch runs on a fresh clone
	c := cf.collector.Clone()
	c.Context = ctx

	var (
		body     []byte
		status   int
		received bool
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
		received = true
	})

	cf.logger.Debug("sending http request", "method", "GET", "url", url)

	if err := c.Visit(url); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", url, ctxErr)
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	c.Wait()

	if !received {
		return nil, fmt.Errorf("no response body from %s", url)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("failed to fetch %s: status %d %s", url, status, http.StatusText(status))
	}
	return body, nil
}

// Close implements the Fetcher interface
func (cf *CollyFetcher) Close() error {
	return nil
}
