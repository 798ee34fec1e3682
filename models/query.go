package models

import (
	"errors"
	"fmt"
	"strings"
)

// Bedroom bounds offered by the site's housing filter.
const (
	MinBedrooms = 1
	MaxBedrooms = 6
)

// ErrSelectionAbandoned is returned when the user backs out of the query
// prompts. Callers treat it as a normal exit.
var ErrSelectionAbandoned = errors.New("selection abandoned")

// Query identifies one rental market search.
type Query struct {
	Site         string // URL origin, e.g. https://sfbay.craigslist.org
	Region       string // optional path segment below the site
	Neighborhood string // optional "nh" token
	Bedrooms     int
	MinPrice     int
	MaxPrice     int
}

// Validate checks the range constraints the URL generator relies on.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Site) == "" {
		return errors.New("query: site is required")
	}
	if q.Bedrooms < MinBedrooms || q.Bedrooms > MaxBedrooms {
		return fmt.Errorf("query: bedrooms must be between %d and %d, got %d",
			MinBedrooms, MaxBedrooms, q.Bedrooms)
	}
	if q.MinPrice < 0 || q.MinPrice > q.MaxPrice {
		return fmt.Errorf("query: invalid price range %d-%d", q.MinPrice, q.MaxPrice)
	}
	return nil
}

// String renders the query for log lines.
func (q Query) String() string {
	parts := []string{q.Site}
	if q.Region != "" {
		parts = append(parts, q.Region)
	}
	if q.Neighborhood != "" {
		parts = append(parts, "nh="+q.Neighborhood)
	}
	parts = append(parts, fmt.Sprintf("%dbr", q.Bedrooms),
		fmt.Sprintf("$%d-$%d", q.MinPrice, q.MaxPrice))
	return strings.Join(parts, " ")
}
