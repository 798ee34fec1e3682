package craigslist

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Sites returns the US city sites listed on the directory page, keyed by
// their display name.
func (s *Scraper) Sites(ctx context.Context) (map[string]string, error) {
	doc, err := s.document(ctx, s.cfg.SitesURL)
	if err != nil {
		return nil, err
	}

	heading := doc.Find("*").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.Children().Length() == 0 && normaliseText(sel.Text()) == "us cities"
	}).First()

	links := heading.Next().Find("li > a")
	sites := make(map[string]string, links.Length())
	links.Each(func(i int, a *goquery.Selection) {
		// The last entry links to the full directory, not to a site.
		if i == links.Length()-1 {
			return
		}
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		sites[normaliseText(a.Text())] = normaliseSite(href)
	})

	s.logger.Debug("[craigslist] Found %d sites", len(sites))
	return sites, nil
}

// Regions returns the default region label and the remaining regions of
// site keyed by label. Sites without regions yield an empty map.
func (s *Scraper) Regions(ctx context.Context, site string) (string, map[string]string, error) {
	doc, err := s.document(ctx, join(site, "search", SearchSegment(site)))
	if err != nil {
		return "", nil, err
	}

	regions := make(map[string]string)
	options := doc.Find("#subArea > option")
	if options.Length() == 0 {
		return "", regions, nil
	}

	def := normaliseText(options.First().Text())
	options.Slice(1, goquery.ToEnd).Each(func(_ int, opt *goquery.Selection) {
		if val, ok := opt.Attr("value"); ok {
			regions[normaliseText(opt.Text())] = val
		}
	})
	return def, regions, nil
}

// Neighborhoods returns the neighborhood tokens of a site region keyed by label.
func (s *Scraper) Neighborhoods(ctx context.Context, site, region string) (map[string]string, error) {
	doc, err := s.document(ctx, join(site, "search", region, SearchSegment(site)))
	if err != nil {
		return nil, err
	}

	hoods := make(map[string]string)
	doc.Find("input[name=nh]").Each(func(_ int, in *goquery.Selection) {
		val, ok := in.Attr("value")
		if !ok {
			return
		}
		label := ""
		if next := in.Nodes[0].NextSibling; next != nil && next.Type == html.TextNode {
			label = normaliseText(next.Data)
		}
		if label == "" {
			label = normaliseText(in.Parent().Text())
		}
		if label != "" {
			hoods[label] = val
		}
	})
	return hoods, nil
}

func (s *Scraper) document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("craigslist: parse %s: %w", url, err)
	}
	return doc, nil
}

// normaliseText trims the string and collapses internal whitespace,
// including non-breaking spaces.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

func normaliseSite(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	return strings.TrimSuffix(href, "/")
}
