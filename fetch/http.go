package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"craigslist-rental-market/utils"
)

// HTTPFetcher performs one plain GET per call. Redirects are followed by the
// transport; nothing is retried.
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     *utils.Logger
}

// NewHTTPFetcher creates an HTTPFetcher whose requests give up after timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string, logger *utils.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		logger:     logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", Wrap(url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", Wrap(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", Wrap(url, fmt.Errorf("%w: %s", ErrStatus, resp.Status))
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", Wrap(url, fmt.Errorf("decode body: %w", err))
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", Wrap(url, fmt.Errorf("read body: %w", err))
	}

	f.logger.Debug("[fetch] GET %s -> %d (%d bytes, %v)", url, resp.StatusCode, len(body), time.Since(start))
	return string(body), nil
}
