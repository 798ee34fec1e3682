package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"craigslist-rental-market/config"
	"craigslist-rental-market/fetch"
	"craigslist-rental-market/models"
	"craigslist-rental-market/prompt"
	"craigslist-rental-market/scraper/craigslist"
	"craigslist-rental-market/services"
	"craigslist-rental-market/storage"
	"craigslist-rental-market/utils"
)

const version = "0.1.0"

type options struct {
	cache        bool
	showVersion  bool
	site         string
	region       string
	neighborhood string
	bedrooms     int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "craigslist %s\n", version)
		return 0
	}

	cfg := config.Load()
	logger := utils.NewLoggerTo(stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fetcher, cache, closeFetcher, err := newFetcher(cfg, opts.cache, logger)
	if err != nil {
		logger.Error("Failed to start %s fetcher: %v", cfg.FetchBackend, err)
		return 1
	}
	defer closeFetcher()

	scraper := craigslist.New(cfg, fetcher, logger)

	q, err := buildQuery(ctx, opts, cfg, scraper)
	if errors.Is(err, models.ErrSelectionAbandoned) {
		logger.Info("Selection abandoned, nothing to do")
		return 0
	}
	if err != nil {
		logger.Error("Could not build query: %v", err)
		return 1
	}

	fmt.Fprintln(stdout, "Running query...")
	fmt.Fprintln(stdout)

	corpus, elapsed, err := scraper.Scrape(ctx, q)
	if err != nil {
		var fe *fetch.FetchError
		if errors.As(err, &fe) {
			logger.Error("Request failed for %s: %v", fe.URL, fe.Err)
		} else {
			logger.Error("Scrape failed: %v", err)
		}
		return 1
	}

	if cache != nil {
		if n, err := cache.PurgeExpired(); err != nil {
			logger.Warn("[cache] %v", err)
		} else if n > 0 {
			logger.Debug("[cache] Purged %d expired responses", n)
		}
	}

	prices := services.NewPriceExtractor(logger).Extract(corpus, q.Bedrooms)

	insights := services.NewInsightService(logger)
	report, statErr := insights.Generate(prices, elapsed)
	insights.Print(stdout, report, statErr)

	if statErr == nil {
		recordRun(cfg, logger, &models.Record{Query: q, Report: *report, CreatedAt: time.Now()})
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{cache: true}

	fs := flag.NewFlagSet("craigslist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Display Craigslist rental market statistics.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "usage: craigslist [OPTION]")
		fs.PrintDefaults()
	}
	// The last of --cache and --no-cache wins.
	fs.BoolFunc("cache", "cache network queries (default)", func(string) error {
		opts.cache = true
		return nil
	})
	fs.BoolFunc("no-cache", "do not cache network queries", func(string) error {
		opts.cache = false
		return nil
	})
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	fs.StringVar(&opts.site, "site", "", "site URL, skips the interactive prompts together with -bedrooms")
	fs.StringVar(&opts.region, "region", "", "region path segment")
	fs.StringVar(&opts.neighborhood, "neighborhood", "", "neighborhood token")
	fs.IntVar(&opts.bedrooms, "bedrooms", 0, "bedroom count (1-6)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

// buildQuery takes the query from flags when a site and bedroom count were
// given, and from the interactive prompts otherwise.
func buildQuery(ctx context.Context, opts options, cfg *config.Config, catalog prompt.Catalog) (models.Query, error) {
	if opts.site != "" && opts.bedrooms != 0 {
		q := models.Query{
			Site:         opts.site,
			Region:       opts.region,
			Neighborhood: opts.neighborhood,
			Bedrooms:     opts.bedrooms,
			MinPrice:     cfg.MinPrice,
			MaxPrice:     cfg.MaxPrice,
		}
		return q, q.Validate()
	}
	return prompt.Ask(ctx, catalog, cfg.MinPrice, cfg.MaxPrice)
}

// newFetcher builds the configured backend, wrapped in the response cache
// when enabled. A cache that cannot be opened is skipped with a warning.
func newFetcher(cfg *config.Config, useCache bool, logger *utils.Logger) (fetch.Fetcher, *fetch.CachedFetcher, func(), error) {
	var base fetch.Fetcher
	closers := []func() error{}

	switch cfg.FetchBackend {
	case config.BackendChrome:
		bf, err := fetch.NewBrowserFetcher(cfg.ChromeBin, cfg.UserAgent, cfg.HTTPTimeout(), logger)
		if err != nil {
			return nil, nil, nil, err
		}
		base = bf
		closers = append(closers, bf.Close)
	case config.BackendHTTP, "":
		base = fetch.NewHTTPFetcher(cfg.HTTPTimeout(), cfg.UserAgent, logger)
	default:
		return nil, nil, nil, fmt.Errorf("unknown FETCH_BACKEND %q", cfg.FetchBackend)
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("close: %v", err)
			}
		}
	}

	if !useCache {
		return base, nil, closeAll, nil
	}

	cache, err := fetch.NewCachedFetcher(cfg.CachePath, cfg.CacheTTL(), base, logger)
	if err != nil {
		logger.Warn("[cache] Disabled: %v", err)
		return base, nil, closeAll, nil
	}
	closers = append(closers, cache.Close)
	logger.Debug("[cache] Using %s (ttl %v)", cfg.CachePath, cfg.CacheTTL())
	return cache, cache, closeAll, nil
}

// recordRun appends the report to every configured history backend. Failures
// are logged; the run itself has already succeeded.
func recordRun(cfg *config.Config, logger *utils.Logger, rec *models.Record) {
	if cfg.ReportCSVPath != "" {
		w, err := storage.NewCSVWriter(cfg.ReportCSVPath)
		if err != nil {
			logger.Error("[csv] %v", err)
		} else {
			writeRecord(w, rec, logger, "csv")
		}
	}

	if !cfg.PostgresEnabled {
		return
	}
	pw, err := storage.NewPostgresWriter(cfg.DSN(), &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   time.Second,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("[postgres] %v", err)
		return
	}

	prev, err := pw.Latest(rec.Query)
	if err != nil {
		logger.Warn("[postgres] %v", err)
	} else if prev != nil {
		logger.Info("[postgres] Mean changed by $%.2f since %s",
			rec.Report.Mean-prev.Report.Mean, prev.CreatedAt.Format("2006-01-02 15:04"))
	}
	writeRecord(pw, rec, logger, "postgres")
}

func writeRecord(w storage.ReportWriter, rec *models.Record, logger *utils.Logger, name string) {
	defer w.Close()
	if err := w.Write(rec); err != nil {
		logger.Error("[%s] %v", name, err)
		return
	}
	logger.Debug("[%s] Stored report", name)
}
