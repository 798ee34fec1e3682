package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"craigslist-rental-market/models"
)

var csvHeader = []string{
	"created_at", "site", "region", "neighborhood", "bedrooms", "min_price", "max_price",
	"count", "duration_seconds", "mean", "median", "stdev", "high", "low",
}

var _ ReportWriter = (*CSVWriter)(nil)

// CSVWriter appends one row per run to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter opens the CSV file at the given path for appending, writing
// the header row when the file is new. Intermediate directories are created
// automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("csv: open file %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: stat file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
		w.Flush()
	}

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends rec as one row.
func (c *CSVWriter) Write(rec *models.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, r := rec.Query, rec.Report
	row := []string{
		rec.CreatedAt.Format(time.RFC3339),
		q.Site,
		q.Region,
		q.Neighborhood,
		strconv.Itoa(q.Bedrooms),
		strconv.Itoa(q.MinPrice),
		strconv.Itoa(q.MaxPrice),
		strconv.Itoa(r.Count),
		formatFloat(r.Duration.Seconds(), 3),
		formatFloat(r.Mean, 2),
		formatFloat(r.Median, 2),
		formatFloat(r.StDev, 2),
		formatFloat(r.High, 2),
		formatFloat(r.Low, 2),
	}
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func formatFloat(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}
