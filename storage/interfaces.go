package storage

import "craigslist-rental-market/models"

// ReportWriter is the interface any run-history backend must satisfy.
type ReportWriter interface {
	Write(rec *models.Record) error
	Close() error
}
