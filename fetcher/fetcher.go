package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Backend names accepted by New
const (
	BackendColly = "colly"
	BackendRod   = "rod"
)

// DefaultTimeout bounds a single page request
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent with every request
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher interface defines the contract for fetching implementations
type Fetcher interface {
	// Fetch performs a single GET of url and returns the response body.
	// Transport failures and non-2xx statuses are returned as errors.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// Close releases any resources held by the backend
	Close() error
}

// Options configures a fetcher backend
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Logger    *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// New constructs the named backend. An empty name selects colly.
func New(backend string, opts Options) (Fetcher, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendColly:
		return NewCollyFetcher(opts), nil
	case BackendRod:
		rf, err := NewRodFetcher(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to construct rod fetcher: %w", err)
		}
		return rf, nil
	default:
		return nil, fmt.Errorf("unknown fetcher backend %q: available backends=[%s %s]", backend, BackendColly, BackendRod)
	}
}
