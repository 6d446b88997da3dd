package fetcher

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	// searchURLTemplate sorts results by best match with price relevance
	// (_sop=15). The query is percent-encoded into _nkw.
	searchURLTemplate = "https://www.ebay.com/sch/i.html?_nkw=%s&_sop=15"

	// resultsSelector is the container that signals the search results
	// have rendered.
	resultsSelector = "#srp-river-results"

	resultsTimeout = 15 * time.Second

	// settleDelay gives dynamically injected listing content time to
	// finish rendering after the container appears.
	settleDelay = 2 * time.Second
)

var ErrResultsTimeout = errors.New("timed out waiting for search results")

// PageFetcher loads eBay search result pages through a shared browser page.
// Fetch navigates the page, so callers must not interleave fetches on the
// same page.
type PageFetcher struct {
	page   playwright.Page
	logger *slog.Logger
}

func New(page playwright.Page, logger *slog.Logger) *PageFetcher {
	if logger == nil {
		logger = slog.Default().With("component", "fetcher")
	}
	return &PageFetcher{
		page:   page,
		logger: logger,
	}
}

// SearchURL builds the search results URL for a product query.
func SearchURL(query string) string {
	return fmt.Sprintf(searchURLTemplate, url.QueryEscape(query))
}

// Fetch navigates to the search results page for query and returns the
// rendered markup. It waits up to resultsTimeout for the results container
// before giving up with ErrResultsTimeout.
func (f *PageFetcher) Fetch(query string) (string, error) {
	searchURL := SearchURL(query)
	f.logger.Debug("navigating to search page", "url", searchURL)

	if _, err := f.page.Goto(searchURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return "", fmt.Errorf("failed to navigate: %w", err)
	}

	if _, err := f.page.WaitForSelector(resultsSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(resultsTimeout.Milliseconds())),
	}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrResultsTimeout, err)
	}

	time.Sleep(settleDelay)

	html, err := f.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}

	return html, nil
}
