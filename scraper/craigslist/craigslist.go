// Package craigslist builds the paginated rental searches for a site and
// downloads them concurrently.
package craigslist

import (
	"context"
	"time"

	"craigslist-rental-market/config"
	"craigslist-rental-market/fetch"
	"craigslist-rental-market/models"
	"craigslist-rental-market/utils"
)

// Scraper downloads search result pages through a Fetcher.
type Scraper struct {
	cfg     *config.Config
	fetcher fetch.Fetcher
	logger  *utils.Logger
	workers int
}

// New creates a Scraper sized to WorkersPerCPU workers per available CPU.
func New(cfg *config.Config, fetcher fetch.Fetcher, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		workers: utils.DefaultWorkers(cfg.WorkersPerCPU),
	}
}

// Scrape downloads every search page for q and returns the concatenated
// markup with the time the download took.
func (s *Scraper) Scrape(ctx context.Context, q models.Query) (string, time.Duration, error) {
	if err := q.Validate(); err != nil {
		return "", 0, err
	}

	pages := NewPages(q)
	s.logger.Info("[craigslist] Fetching %d pages for %s with %d workers", pages.Len(), q, s.workers)

	start := time.Now()
	corpus, err := Download(ctx, s.fetcher, pages.All(), s.workers)
	elapsed := time.Since(start)
	if err != nil {
		return "", elapsed, err
	}

	s.logger.Debug("[craigslist] Downloaded %d bytes in %v", len(corpus), elapsed)
	return corpus, elapsed, nil
}
