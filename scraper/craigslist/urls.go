package craigslist

import (
	"iter"
	"net/url"
	"strconv"
	"strings"

	"craigslist-rental-market/models"
)

const (
	// PageSize is the number of results the site returns per search page.
	PageSize = 100
	// PageCount fixes the scan window at 2500 listings.
	PageCount = 25

	defaultSegment = "apa"
)

// segmentOverrides maps a site identifier (the first label of the site
// host) to the search path segment it uses for apartment listings.
var segmentOverrides = map[string]string{
	"newyork": "aap",
}

// SearchSegment returns the listings category path segment for site.
func SearchSegment(site string) string {
	if seg, ok := segmentOverrides[siteID(site)]; ok {
		return seg
	}
	return defaultSegment
}

func siteID(site string) string {
	host := site
	if u, err := url.Parse(site); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)
	if i := strings.IndexByte(host, '.'); i >= 0 {
		host = host[:i]
	}
	return host
}

// Pages is the fixed sequence of search result URLs for one query. Only the
// offset parameter differs between pages.
type Pages struct {
	prefix string
	suffix string
}

// NewPages builds the URL template for q once.
func NewPages(q models.Query) Pages {
	base := join(q.Site, "search", q.Region, SearchSegment(q.Site))

	params := url.Values{}
	params.Set("bedrooms", strconv.Itoa(q.Bedrooms))
	params.Set("min_price", strconv.Itoa(q.MinPrice))
	params.Set("max_price", strconv.Itoa(q.MaxPrice))
	if q.Neighborhood != "" {
		params.Set("nh", q.Neighborhood)
	}

	return Pages{
		prefix: base + "?s=",
		suffix: "&" + params.Encode(),
	}
}

// Len returns the number of pages.
func (p Pages) Len() int { return PageCount }

// Offset returns the result offset of page i.
func (p Pages) Offset(i int) int { return i * PageSize }

// URL returns the URL of page i.
func (p Pages) URL(i int) string {
	return p.prefix + strconv.Itoa(p.Offset(i)) + p.suffix
}

// All yields every page URL in ascending offset order. The sequence can be
// ranged over any number of times.
func (p Pages) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := 0; i < p.Len(); i++ {
			if !yield(p.URL(i)) {
				return
			}
		}
	}
}

// join joins URL components with '/', skipping empty ones.
func join(base string, components ...string) string {
	const sep = "/"
	path := base
	for _, item := range components {
		if item == "" {
			continue
		}
		if path == "" || strings.HasSuffix(path, sep) {
			path += item
		} else {
			path += sep + item
		}
	}
	return path
}
