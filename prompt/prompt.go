// Package prompt asks the user which rental market to survey.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"

	"craigslist-rental-market/models"
)

// preferredSite is listed first. The directory has shown it both as
// "sf bayarea" and, once NBSPs are normalised, as "sf bay area".
const preferredSite = "sfbayarea"

// Catalog lists the selectable sites, regions and neighborhoods.
type Catalog interface {
	Sites(ctx context.Context) (map[string]string, error)
	Regions(ctx context.Context, site string) (string, map[string]string, error)
	Neighborhoods(ctx context.Context, site, region string) (map[string]string, error)
}

// Ask walks the user through site, region, neighborhood and bedroom
// selection. Region and neighborhood prompts are skipped when the site
// offers none. Backing out of any prompt returns models.ErrSelectionAbandoned.
func Ask(ctx context.Context, catalog Catalog, minPrice, maxPrice int) (models.Query, error) {
	q := models.Query{MinPrice: minPrice, MaxPrice: maxPrice}

	sites, err := catalog.Sites(ctx)
	if err != nil {
		return q, fmt.Errorf("prompt: list sites: %w", err)
	}
	if len(sites) == 0 {
		return q, errors.New("prompt: no sites found")
	}

	var siteLabel string
	if err := run(ctx, huh.NewSelect[string]().
		Title("Which site?").
		Options(huh.NewOptions(orderLabels(sites, preferredSite)...)...).
		Value(&siteLabel)); err != nil {
		return q, err
	}
	q.Site = sites[siteLabel]

	def, regions, err := catalog.Regions(ctx, q.Site)
	if err != nil {
		return q, fmt.Errorf("prompt: list regions: %w", err)
	}
	if len(regions) > 0 {
		opts := []huh.Option[string]{huh.NewOption(def, "")}
		for _, label := range orderLabels(regions, "") {
			opts = append(opts, huh.NewOption(label, regions[label]))
		}
		if err := run(ctx, huh.NewSelect[string]().
			Title("Which region?").
			Options(opts...).
			Value(&q.Region)); err != nil {
			return q, err
		}
	}

	if q.Region != "" {
		hoods, err := catalog.Neighborhoods(ctx, q.Site, q.Region)
		if err != nil {
			return q, fmt.Errorf("prompt: list neighborhoods: %w", err)
		}
		if len(hoods) > 0 {
			opts := []huh.Option[string]{huh.NewOption("any", "")}
			for _, label := range orderLabels(hoods, "") {
				opts = append(opts, huh.NewOption(label, hoods[label]))
			}
			if err := run(ctx, huh.NewSelect[string]().
				Title("Which neighborhood?").
				Options(opts...).
				Value(&q.Neighborhood)); err != nil {
				return q, err
			}
		}
	}

	bedOpts := make([]huh.Option[int], 0, models.MaxBedrooms)
	for n := models.MinBedrooms; n <= models.MaxBedrooms; n++ {
		bedOpts = append(bedOpts, huh.NewOption(fmt.Sprintf("%dbr", n), n))
	}
	if err := run(ctx, huh.NewSelect[int]().
		Title("How many bedrooms?").
		Options(bedOpts...).
		Value(&q.Bedrooms)); err != nil {
		return q, err
	}

	return q, q.Validate()
}

func run(ctx context.Context, field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return models.ErrSelectionAbandoned
	}
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}

// orderLabels returns the keys of m sorted case-insensitively, with the
// label matching first (ignoring spaces) moved to the front.
func orderLabels(m map[string]string, first string) []string {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	isFirst := func(label string) bool {
		return first != "" && strings.ReplaceAll(label, " ", "") == first
	}
	sort.Slice(labels, func(i, j int) bool {
		if isFirst(labels[i]) != isFirst(labels[j]) {
			return isFirst(labels[i])
		}
		return strings.ToLower(labels[i]) < strings.ToLower(labels[j])
	})
	return labels
}
