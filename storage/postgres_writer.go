package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"craigslist-rental-market/models"
	"craigslist-rental-market/utils"
)

var _ ReportWriter = (*PostgresWriter)(nil)

// PostgresWriter persists run reports to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, retrying the initial
// ping with retry, runs schema migrations, and returns a ready-to-use
// PostgresWriter.
func NewPostgresWriter(dsn string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do("postgres ping", db.Ping); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS rental_reports (
			id               SERIAL PRIMARY KEY,
			site             TEXT          NOT NULL,
			region           TEXT          NOT NULL DEFAULT '',
			neighborhood     TEXT          NOT NULL DEFAULT '',
			bedrooms         SMALLINT      NOT NULL,
			min_price        INTEGER       NOT NULL,
			max_price        INTEGER       NOT NULL,
			sample_count     INTEGER       NOT NULL,
			duration_seconds NUMERIC(10,3) NOT NULL,
			mean             NUMERIC(12,2) NOT NULL,
			median           NUMERIC(12,2) NOT NULL,
			stdev            NUMERIC(12,2) NOT NULL,
			high             NUMERIC(12,2) NOT NULL,
			low              NUMERIC(12,2) NOT NULL,
			created_at       TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_rental_reports_query
			ON rental_reports(site, region, neighborhood, bedrooms, min_price, max_price, created_at DESC);
	`)
	return err
}

// Write inserts one run report.
func (pw *PostgresWriter) Write(rec *models.Record) error {
	q, r := rec.Query, rec.Report
	err := pw.db.QueryRow(`
		INSERT INTO rental_reports (
			site, region, neighborhood, bedrooms, min_price, max_price,
			sample_count, duration_seconds, mean, median, stdev, high, low, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id
	`,
		q.Site, q.Region, q.Neighborhood, q.Bedrooms, q.MinPrice, q.MaxPrice,
		r.Count, r.Duration.Seconds(), r.Mean, r.Median, r.StDev, r.High, r.Low, rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("postgres: insert report: %w", err)
	}
	return nil
}

const latestReportQuery = `
		SELECT id, sample_count, duration_seconds, mean, median, stdev, high, low, created_at
		FROM rental_reports
		WHERE site = $1 AND region = $2 AND neighborhood = $3 AND bedrooms = $4
		  AND min_price = $5 AND max_price = $6
		ORDER BY created_at DESC
		LIMIT 1
	`

// latestReportArgs binds q to latestReportQuery.
func latestReportArgs(q models.Query) []any {
	return []any{q.Site, q.Region, q.Neighborhood, q.Bedrooms, q.MinPrice, q.MaxPrice}
}

// Latest returns the most recent stored report for the same query, price
// band included, or nil when there is none.
func (pw *PostgresWriter) Latest(q models.Query) (*models.Record, error) {
	rec := &models.Record{Query: q}
	var seconds float64
	err := pw.db.QueryRow(latestReportQuery, latestReportArgs(q)...).Scan(
		&rec.ID, &rec.Report.Count, &seconds, &rec.Report.Mean, &rec.Report.Median,
		&rec.Report.StDev, &rec.Report.High, &rec.Report.Low, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: latest report: %w", err)
	}
	rec.Report.Duration = time.Duration(seconds * float64(time.Second))
	return rec, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
