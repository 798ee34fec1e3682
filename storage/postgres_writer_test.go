package storage

import (
	"reflect"
	"strings"
	"testing"

	"craigslist-rental-market/models"
)

func TestLatestReportMatchesPriceBand(t *testing.T) {
	for _, col := range []string{"min_price = $5", "max_price = $6"} {
		if !strings.Contains(latestReportQuery, col) {
			t.Errorf("latest report query missing %q", col)
		}
	}

	q := models.Query{Site: "https://sfbay.craigslist.org", Region: "sfc", Neighborhood: "7",
		Bedrooms: 2, MinPrice: 1000, MaxPrice: 4000}
	got := latestReportArgs(q)
	want := []any{"https://sfbay.craigslist.org", "sfc", "7", 2, 1000, 4000}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args: got %v, want %v", got, want)
	}
	if n := strings.Count(latestReportQuery, "$"); n != len(got) {
		t.Errorf("placeholders: got %d, want %d", n, len(got))
	}
}
