// Package fetch retrieves raw page markup. Every backend satisfies Fetcher,
// and CachedFetcher can wrap any of them.
package fetch

import (
	"context"
	"errors"
	"fmt"
)

// ErrStatus is wrapped by fetch errors caused by a non-2xx response.
var ErrStatus = errors.New("unexpected status")

// Fetcher returns the body of one URL as text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// FetchError reports a failed page request together with its URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Wrap tags err with url unless it already carries a FetchError.
func Wrap(url string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{URL: url, Err: err}
}
