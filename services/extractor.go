package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"craigslist-rental-market/utils"
)

// pricePattern matches a listing price immediately followed by the housing
// tag for the given bedroom count. The digits are the first capture group.
const pricePattern = `<span class="price">\$([0-9][0-9,]*)</span>\s*<span class="housing">/\s*%dbr\b`

// PriceExtractor pulls the prices of n-bedroom listings out of raw search
// result markup. Compiled patterns are cached per bedroom count; extraction
// has no other state.
type PriceExtractor struct {
	logger *utils.Logger

	mu       sync.Mutex
	patterns map[int]*regexp.Regexp
}

// NewPriceExtractor creates a PriceExtractor with the given logger.
func NewPriceExtractor(logger *utils.Logger) *PriceExtractor {
	return &PriceExtractor{
		logger:   logger,
		patterns: make(map[int]*regexp.Regexp),
	}
}

// Extract returns every matching price in corpus order. Markup without
// matches, including error pages and empty input, yields an empty slice.
func (e *PriceExtractor) Extract(corpus string, bedrooms int) []int {
	matches := e.pattern(bedrooms).FindAllStringSubmatch(corpus, -1)
	prices := make([]int, 0, len(matches))

	for _, m := range matches {
		digits := strings.ReplaceAll(m[1], ",", "")
		price, err := strconv.Atoi(digits)
		if err != nil {
			e.logger.Debug("[extract] Skipping unparseable price %q: %v", m[1], err)
			continue
		}
		prices = append(prices, price)
	}

	if len(prices) == 0 && corpus != "" {
		e.logger.Debug("[extract] No %dbr prices in %d bytes of markup", bedrooms, len(corpus))
	}
	return prices
}

func (e *PriceExtractor) pattern(bedrooms int) *regexp.Regexp {
	e.mu.Lock()
	defer e.mu.Unlock()

	re, ok := e.patterns[bedrooms]
	if !ok {
		re = regexp.MustCompile(fmt.Sprintf(pricePattern, bedrooms))
		e.patterns[bedrooms] = re
	}
	return re
}
