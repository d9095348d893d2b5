package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"h1b-scraper/fetcher"
	"h1b-scraper/models"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "http://reports.test/h1b/job-title/data-engineer"

// fakeFetcher serves canned bodies by URL and records every request
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, errors.New("Not Found")
	}
	return []byte(body), nil
}

func (f *fakeFetcher) Close() error { return nil }

// sponsorTable renders a header row plus the given data rows
func sponsorTable(rows ...models.Row) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><table class="tbl"><tr><th>Rank</th><th>Sponsor</th><th>LCA</th><th>Salary</th></tr>`)
	for _, row := range rows {
		sb.WriteString("<tr>")
		for _, cell := range row {
			sb.WriteString("<td> " + cell + " </td>")
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table></body></html>")
	return sb.String()
}

func pageRows(page, n int) []models.Row {
	rows := make([]models.Row, 0, n)
	for i := 1; i <= n; i++ {
		rank := (page-1)*n + i
		rows = append(rows, models.Row{fmt.Sprint(rank), fmt.Sprintf("Sponsor %d", rank), "10", "$100,000"})
	}
	return rows
}

func newTestScraper(f fetcher.Fetcher, maxPages int) *Scraper {
	return New(f, Config{BaseURL: base, TableClass: "tbl", MaxPages: maxPages}, log.New(io.Discard))
}

func TestScrapeAllStopsOnEmptyPage(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		base:         sponsorTable(pageRows(1, 3)...),
		base + "-2/": sponsorTable(pageRows(2, 3)...),
		base + "-3/": sponsorTable(),
		base + "-4/": sponsorTable(pageRows(4, 3)...),
	}}

	result := newTestScraper(f, 0).ScrapeAll(context.Background())

	assert.Equal(t, StopEmptyPage, result.StopReason)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, base+"-3/", result.LastURL)
	assert.Equal(t, []string{base, base + "-2/", base + "-3/"}, f.calls)

	want := append(pageRows(1, 3), pageRows(2, 3)...)
	assert.Equal(t, models.Dataset(want), result.Rows)
}

func TestScrapeAllStopsOnFetchError(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string]string{base: sponsorTable(pageRows(1, 2)...)},
		errs:  map[string]error{base + "-2/": errors.New("connection reset by peer")},
	}

	result := newTestScraper(f, 0).ScrapeAll(context.Background())

	assert.Equal(t, StopEmptyPage, result.StopReason)
	assert.Len(t, result.Rows, 2)
	assert.Len(t, f.calls, 2)
}

func TestScrapeAllStopsOnMissingTable(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		base:         sponsorTable(pageRows(1, 2)...),
		base + "-2/": `<html><body><p>No results</p></body></html>`,
	}}

	result := newTestScraper(f, 0).ScrapeAll(context.Background())

	assert.Equal(t, StopEmptyPage, result.StopReason)
	assert.Equal(t, models.Dataset(pageRows(1, 2)), result.Rows)
}

func TestScrapeAllFirstPageEmpty(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{base: sponsorTable()}}

	result := newTestScraper(f, 0).ScrapeAll(context.Background())

	assert.Equal(t, StopEmptyPage, result.StopReason)
	assert.Empty(t, result.Rows)
	assert.Equal(t, 1, result.Pages)
}

func TestScrapeAllStopsOnRepeatedPage(t *testing.T) {
	last := sponsorTable(pageRows(2, 3)...)
	f := &fakeFetcher{pages: map[string]string{
		base:         sponsorTable(pageRows(1, 3)...),
		base + "-2/": last,
		base + "-3/": last,
		base + "-4/": last,
	}}

	result := newTestScraper(f, 0).ScrapeAll(context.Background())

	assert.Equal(t, StopRepeatPage, result.StopReason)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, base+"-3/", result.LastURL)

	// the repeated page is kept exactly once
	want := append(pageRows(1, 3), pageRows(2, 3)...)
	assert.Equal(t, models.Dataset(want), result.Rows)
}

func TestScrapeAllReorderedPageIsNotARepeat(t *testing.T) {
	rows := pageRows(1, 2)
	f := &fakeFetcher{pages: map[string]string{
		base:         sponsorTable(rows[0], rows[1]),
		base + "-2/": sponsorTable(rows[1], rows[0]),
		base + "-3/": sponsorTable(),
	}}

	result := newTestScraper(f, 0).ScrapeAll(context.Background())

	assert.Equal(t, StopEmptyPage, result.StopReason)
	assert.Len(t, result.Rows, 4)
}

func TestScrapeAllMaxPages(t *testing.T) {
	tests := []struct {
		name      string
		maxPages  int
		wantPages int
		wantRows  int
		reason    StopReason
	}{
		{"one page", 1, 1, 2, StopPageLimit},
		{"three pages", 3, 3, 6, StopPageLimit},
		{"limit beyond data", 10, 6, 10, StopEmptyPage},
		{"unlimited", 0, 6, 10, StopEmptyPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := map[string]string{}
			for p := 1; p <= 5; p++ {
				pages[pageURL(p)] = sponsorTable(pageRows(p, 2)...)
			}
			f := &fakeFetcher{pages: pages}

			result := newTestScraper(f, tt.maxPages).ScrapeAll(context.Background())

			assert.Equal(t, tt.reason, result.StopReason)
			assert.Equal(t, tt.wantPages, result.Pages)
			assert.Len(t, f.calls, tt.wantPages)
			assert.Len(t, result.Rows, tt.wantRows)
		})
	}
}

func TestScrapeAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeFetcher{pages: map[string]string{base: sponsorTable(pageRows(1, 2)...)}}
	result := newTestScraper(f, 0).ScrapeAll(ctx)

	assert.Equal(t, StopCanceled, result.StopReason)
	assert.Empty(t, f.calls)
	assert.Empty(t, result.Rows)
}

func TestFetchPageTrimsCells(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		base: `<table class="tbl"><tr><th>Sponsor</th></tr><tr><td>  Acme Corp  </td></tr></table>`,
	}}

	rows := newTestScraper(f, 0).FetchPage(context.Background(), base)
	require.Len(t, rows, 1)
	assert.Equal(t, models.Row{"Acme Corp"}, rows[0])
}

func TestNewDefaultsTableClass(t *testing.T) {
	s := New(&fakeFetcher{}, Config{BaseURL: base}, nil)
	assert.Equal(t, "tbl", s.cfg.TableClass)
}

func TestScrapeAllOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sponsorTable(pageRows(1, 3)...))
	})
	mux.HandleFunc("/report-2/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>nothing here</body></html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cf := fetcher.NewCollyFetcher(fetcher.Options{Timeout: 2 * time.Second, Logger: log.New(io.Discard)})
	s := New(cf, Config{BaseURL: server.URL + "/report", TableClass: "tbl"}, log.New(io.Discard))

	result := s.ScrapeAll(context.Background())

	assert.Equal(t, StopEmptyPage, result.StopReason)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, models.Dataset(pageRows(1, 3)), result.Rows)
}

func TestFetchPageAcceptsAny2xx(t *testing.T) {
	tests := []struct {
		status int
		want   int
	}{
		{http.StatusOK, 2},
		{http.StatusAccepted, 2},
		{http.StatusNonAuthoritativeInfo, 2},
		{http.StatusPartialContent, 2},
		{http.StatusNotFound, 0},
		{http.StatusServiceUnavailable, 0},
	}

	cf := fetcher.NewCollyFetcher(fetcher.Options{Timeout: 2 * time.Second, Logger: log.New(io.Discard)})
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, sponsorTable(pageRows(1, 2)...))
			}))
			defer server.Close()

			s := New(cf, Config{BaseURL: server.URL, TableClass: "tbl"}, log.New(io.Discard))
			assert.Len(t, s.FetchPage(context.Background(), server.URL), tt.want)
		})
	}
}

func pageURL(p int) string {
	if p == 1 {
		return base
	}
	return fmt.Sprintf("%s-%d/", base, p)
}
