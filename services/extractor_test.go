package services

import (
	"io"
	"reflect"
	"strings"
	"testing"

	"craigslist-rental-market/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, "error") }

func listing(price string, br int) string {
	return `<li class="result-row"><span class="price">$` + price +
		`</span> <span class="housing">/ ` + string(rune('0'+br)) + `br - 900ft<sup>2</sup> - </span></li>`
}

func TestExtractMatchesBedroomCount(t *testing.T) {
	e := NewPriceExtractor(newTestLogger())
	corpus := `<span class="price">$2500</span> <span class="housing">/ 2br - 800ft</span>` +
		`<span class="price">$900</span> <span class="housing">/ 3br - 1200ft</span>`

	got := e.Extract(corpus, 2)
	if !reflect.DeepEqual(got, []int{2500}) {
		t.Errorf("Extract: got %v, want [2500]", got)
	}
}

func TestExtractPreservesCorpusOrder(t *testing.T) {
	e := NewPriceExtractor(newTestLogger())
	corpus := listing("3100", 1) + listing("1800", 1) + listing("4000", 2) + listing("12345678", 1)

	got := e.Extract(corpus, 1)
	want := []int{3100, 1800, 12345678}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract: got %v, want %v", got, want)
	}
}

func TestExtractRequiresAdjacentMarker(t *testing.T) {
	e := NewPriceExtractor(newTestLogger())
	tests := []struct {
		name   string
		corpus string
	}{
		{"no housing tag", `<span class="price">$1500</span> <span class="other">/ 2br</span>`},
		{"text between", `<span class="price">$1500</span> near <span class="housing">/ 2br </span>`},
		{"bedroom prefix", `<span class="price">$1500</span> <span class="housing">/ 12br </span>`},
		{"bare numeral", `$1500 / 2br`},
		{"empty price", `<span class="price">$</span> <span class="housing">/ 2br </span>`},
	}
	for _, tt := range tests {
		if got := e.Extract(tt.corpus, 2); len(got) != 0 {
			t.Errorf("%s: got %v, want none", tt.name, got)
		}
	}
}

func TestExtractToleratesWhitespaceAndCommas(t *testing.T) {
	e := NewPriceExtractor(newTestLogger())
	corpus := "<span class=\"price\">$2,750</span>\n\t<span class=\"housing\">/  2br\n</span>"

	got := e.Extract(corpus, 2)
	if !reflect.DeepEqual(got, []int{2750}) {
		t.Errorf("Extract: got %v, want [2750]", got)
	}
}

func TestExtractEmptyAndGarbage(t *testing.T) {
	e := NewPriceExtractor(newTestLogger())
	inputs := []string{
		"",
		"<html><body>503 Service Unavailable</body></html>",
		`<span class="price">$12`,
		strings.Repeat("\x00\xff<<>>", 100),
	}
	for _, in := range inputs {
		got := e.Extract(in, 3)
		if got == nil || len(got) != 0 {
			t.Errorf("Extract(%q): got %v, want empty slice", in, got)
		}
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	e := NewPriceExtractor(newTestLogger())
	corpus := listing("1000", 4) + listing("2000", 4)

	first := e.Extract(corpus, 4)
	second := e.Extract(corpus, 4)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Extract differs: %v vs %v", first, second)
	}
}
