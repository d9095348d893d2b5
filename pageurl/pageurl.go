package pageurl

import (
	"fmt"
	"net/url"
	"strings"
)

// FirstPage is the number of the page served at the base URL itself
const FirstPage = 1

// Build returns the URL of the given page.
// Page 1 is the base URL verbatim, later pages append "-<n>/".
func Build(baseURL string, page int) string {
	if page <= FirstPage {
		return baseURL
	}
	return fmt.Sprintf("%s-%d/", baseURL, page)
}

// ValidateBase checks that the base URL is an absolute http(s) URL
// that can take the page suffix.
func ValidateBase(baseURL string) error {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base URL must use http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL has no host: %s", baseURL)
	}
	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return fmt.Errorf("base URL must not carry a query or fragment, page suffixes are appended to the path: %s", baseURL)
	}
	if strings.HasSuffix(parsedURL.Path, "/") {
		return fmt.Errorf("base URL must not end with a slash: %s", baseURL)
	}
	return nil
}
