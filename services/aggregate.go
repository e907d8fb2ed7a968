package services

import (
	"fmt"
	"sort"
	"time"

	"lithos-pipeline/models"
	"lithos-pipeline/utils"
)

// maxPricePerGram caps the per-gram values admitted into monthly buckets.
// A single mislabeled listing ("0.1g" on a display case) can otherwise put a
// five-figure spike into a material's index.
const maxPricePerGram = 50000

// Aggregator reduces canonical sales to monthly median price-per-gram
// records. Each run recomputes from the full canonical set; nothing is
// updated incrementally.
type Aggregator struct {
	logger *utils.Logger
}

// NewAggregator creates an Aggregator with the given logger.
func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Monthly groups sales by (material, calendar month) and returns one
// aggregate per non-empty group, sorted by material slug then month. Sales
// without a parseable YYYY-MM-DD date or a known price-per-gram contribute
// nothing; a single-sale month is its own median.
func (a *Aggregator) Monthly(sales []*models.CanonicalSale) []*models.MonthlyAggregate {
	type groupKey struct {
		slug  string
		month string
	}
	grouped := make(map[groupKey][]float64)

	for _, s := range sales {
		if s.PricePerGram <= 0 || s.PricePerGram > maxPricePerGram {
			continue
		}
		if !isISODate(s.SaleDate) {
			continue
		}
		key := groupKey{slug: s.MaterialSlug, month: s.SaleDate[:7]}
		grouped[key] = append(grouped[key], s.PricePerGram)
	}

	keys := make([]groupKey, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].slug != keys[j].slug {
			return keys[i].slug < keys[j].slug
		}
		return keys[i].month < keys[j].month
	})

	aggregates := make([]*models.MonthlyAggregate, 0, len(keys))
	for _, k := range keys {
		prices := grouped[k]
		aggregates = append(aggregates, &models.MonthlyAggregate{
			MaterialSlug:       k.slug,
			YearMonth:          k.month,
			MedianPricePerGram: round2(median(prices)),
			SampleCount:        len(prices),
			Source:             fmt.Sprintf("%s (n=%d)", sourceLabel, len(prices)),
			RecordedAt:         k.month + "-15",
		})
	}

	a.logger.Info("[aggregate] %d sales -> %d monthly data points", len(sales), len(aggregates))
	return aggregates
}

// median computes the standard statistical median: the mean of the two
// middle values for even-sized input.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// isISODate reports whether the sale date is exactly YYYY-MM-DD, which makes
// its first seven characters usable as a year-month key.
func isISODate(date string) bool {
	if len(date) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}
