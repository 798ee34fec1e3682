package craigslist

import (
	"context"
	"iter"
	"strings"

	"craigslist-rental-market/fetch"
	"craigslist-rental-market/utils"
)

// Download fetches every URL in urls on a pool of workers and concatenates
// the bodies in input order, whatever order the fetches finish in. The
// first failure cancels the remaining fetches and is returned; no partial
// corpus is returned with it.
func Download(ctx context.Context, f fetch.Fetcher, urls iter.Seq[string], workers int) (string, error) {
	pool := utils.NewWorkerPool(ctx, workers)

	// Each job owns one slot, so no locking is needed.
	var slots []*string
	for u := range urls {
		slot := new(string)
		slots = append(slots, slot)
		pool.Submit(func(ctx context.Context) error {
			body, err := f.Fetch(ctx, u)
			if err != nil {
				return fetch.Wrap(u, err)
			}
			*slot = body
			return nil
		})
	}

	if err := pool.Wait(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, s := range slots {
		sb.WriteString(*s)
	}
	return sb.String(), nil
}
