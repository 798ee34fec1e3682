package models

import (
	"errors"
	"time"
)

var (
	// ErrEmptySample means no prices were extracted at all.
	ErrEmptySample = errors.New("no prices in sample")
	// ErrInsufficientSample means fewer than two prices were extracted, so
	// the standard deviation is undefined.
	ErrInsufficientSample = errors.New("not enough prices for standard deviation")
)

// StatsReport holds the summary statistics for one run.
type StatsReport struct {
	Count    int
	Duration time.Duration
	Mean     float64
	Median   float64
	StDev    float64
	High     float64
	Low      float64
}

// Record is a persisted run: the query and its report. Raw listings are
// never stored.
type Record struct {
	ID        int64
	Query     Query
	Report    StatsReport
	CreatedAt time.Time
}
