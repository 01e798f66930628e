package catalog

import (
	"slices"

	"github.com/venuedash/catalog/internal/model"
)

// Histogram shape: HistogramBins equal-width bins over capacities
// [HistogramMinCapacity, HistogramMaxCapacity].
const (
	HistogramBins        = 50
	HistogramMinCapacity = 1
	HistogramMaxCapacity = 1000

	histogramBinWidth = (HistogramMaxCapacity - HistogramMinCapacity + 1) / HistogramBins
)

// Aggregate derives the facet set of a whole event catalog. It must be
// re-run on every new set; facets are never filtered by the active query.
func Aggregate(events []model.EnrichedEvent) model.FilterOptions {
	genres := make(map[string]struct{})
	cities := make(map[string]struct{})
	sizes := map[model.VenueSize]int{}
	bins := newHistogram()

	for i := range events {
		e := &events[i]
		for _, p := range e.Performers {
			if p.Genre != "" {
				genres[p.Genre] = struct{}{}
			}
		}
		if e.Venue.Location != "" {
			cities[e.Venue.Location] = struct{}{}
		}
		if e.Venue.Capacity == nil {
			continue
		}

		capacity := *e.Venue.Capacity
		sizes[model.ClassifyCapacity(capacity)]++
		if capacity >= HistogramMinCapacity && capacity <= HistogramMaxCapacity {
			bins[(capacity-HistogramMinCapacity)/histogramBinWidth].Count++
		}
	}

	return model.FilterOptions{
		Genres: sortedKeys(genres),
		Cities: sortedKeys(cities),
		VenueSizes: []model.VenueSizeCount{
			{Size: model.VenueSizeSmall, Label: "Small (0-200)", Count: sizes[model.VenueSizeSmall]},
			{Size: model.VenueSizeMedium, Label: "Medium (201-1000)", Count: sizes[model.VenueSizeMedium]},
			{Size: model.VenueSizeLarge, Label: "Large (1000+)", Count: sizes[model.VenueSizeLarge]},
		},
		VenueHistogram: bins,
	}
}

func newHistogram() []model.HistogramBin {
	bins := make([]model.HistogramBin, HistogramBins)
	for i := range bins {
		bins[i].Min = HistogramMinCapacity + i*histogramBinWidth
		bins[i].Max = bins[i].Min + histogramBinWidth - 1
	}
	return bins
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
