package services

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"craigslist-rental-market/models"
	"craigslist-rental-market/utils"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(8)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// InsightService reduces a price sample to summary statistics.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes the statistics of prices. An empty sample returns
// models.ErrEmptySample and no report. A single price returns a report with
// count, mean and median filled in along with models.ErrInsufficientSample.
func (s *InsightService) Generate(prices []int, elapsed time.Duration) (*models.StatsReport, error) {
	if len(prices) == 0 {
		return nil, models.ErrEmptySample
	}

	report := &models.StatsReport{
		Count:    len(prices),
		Duration: elapsed,
		Mean:     mean(prices),
		Median:   median(prices),
	}

	if len(prices) < 2 {
		return report, models.ErrInsufficientSample
	}

	report.StDev = stdev(prices, report.Mean)
	report.High = report.Mean + report.StDev
	report.Low = report.Mean - report.StDev

	s.logger.Debug("[stats] n=%d mean=%.2f median=%.2f stdev=%.2f",
		report.Count, report.Mean, report.Median, report.StDev)
	return report, nil
}

// Print writes the outcome of Generate for a terminal.
func (s *InsightService) Print(w io.Writer, r *models.StatsReport, err error) {
	fmt.Fprintln(w, Render(r, err))
}

// Render formats the outcome of Generate.
func Render(r *models.StatsReport, err error) string {
	if errors.Is(err, models.ErrEmptySample) || r == nil {
		return noteStyle.Render("Nothing found for that search.")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", headerStyle.Render(fmt.Sprintf("Sourced %d %s in %.3f seconds",
		r.Count, plural(r.Count, "price", "prices"), r.Duration.Seconds())))

	row := func(label, value string) {
		fmt.Fprintf(&sb, "%s%s\n", labelStyle.Render(label), valueStyle.Render(value))
	}
	row("Mean:", fmt.Sprintf("$%.2f", r.Mean))
	row("Median:", fmt.Sprintf("$%.2f", r.Median))

	if errors.Is(err, models.ErrInsufficientSample) {
		sb.WriteString(noteStyle.Render("Not enough data for standard deviation."))
		return sb.String()
	}

	row("Hi/Lo:", fmt.Sprintf("$%.2f/$%.2f", r.High, r.Low))
	row("StDev:", fmt.Sprintf("%.2f", r.StDev))
	return strings.TrimSuffix(sb.String(), "\n")
}

func mean(xs []int) float64 {
	var total float64
	for _, x := range xs {
		total += float64(x)
	}
	return total / float64(len(xs))
}

func median(xs []int) float64 {
	sorted := append([]int(nil), xs...)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
}

// stdev is the Bessel-corrected sample standard deviation.
func stdev(xs []int, m float64) float64 {
	var ss float64
	for _, x := range xs {
		d := float64(x) - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
