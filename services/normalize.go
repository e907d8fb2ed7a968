package services

import (
	"strconv"
	"strings"

	"lithos-pipeline/models"
	"lithos-pipeline/utils"
)

// sourceLabel is the provenance tag stamped on every canonical sale.
const sourceLabel = "WorthPoint"

// Normalizer turns raw listing batches into canonical sale records. It is a
// pure transform over its inputs plus the ruleset table; the only state it
// touches is the run-scoped Deduplicator it was built with.
type Normalizer struct {
	classifier *Classifier
	dedup      *Deduplicator
	logger     *utils.Logger
}

// NewNormalizer creates a Normalizer bound to one run's dedup set.
func NewNormalizer(classifier *Classifier, dedup *Deduplicator, logger *utils.Logger) *Normalizer {
	return &Normalizer{classifier: classifier, dedup: dedup, logger: logger}
}

// NormalizeAll processes every batch in order and returns the surviving
// canonical sales plus the run's drop statistics. Batches are processed
// per-candidate-match: each batch is routed to its own ruleset and filtered
// before any dedup slot is consumed, so a ruleset's spurious match can never
// starve a later ruleset's correct one.
func (n *Normalizer) NormalizeAll(batches []*models.RawBatch) ([]*models.CanonicalSale, *models.RunStats) {
	stats := models.NewRunStats()
	sales := make([]*models.CanonicalSale, 0)

	for _, batch := range batches {
		kept := n.normalizeBatch(batch, stats)
		sales = append(sales, kept...)

		stats.CountSource(batch.Source, len(batch.Listings), len(kept))
		n.logger.Info("[normalize] %s: %d -> %d (%d dropped)",
			batch.Source, len(batch.Listings), len(kept), len(batch.Listings)-len(kept))
	}

	n.logger.Info("[normalize] Total: %d raw -> %d kept (unclassified %d, duplicates %d, no price %d)",
		stats.TotalRaw, stats.Kept, stats.Unclassified, stats.Duplicates, stats.NoPrice)
	return sales, stats
}

func (n *Normalizer) normalizeBatch(batch *models.RawBatch, stats *models.RunStats) []*models.CanonicalSale {
	ruleset, ok := n.classifier.Resolve(batch.Source)
	if !ok {
		n.logger.Warn("[normalize] No ruleset for source %q, dropping %d rows",
			batch.Source, len(batch.Listings))
		stats.TotalRaw += len(batch.Listings)
		stats.Unclassified += len(batch.Listings)
		return nil
	}

	kept := make([]*models.CanonicalSale, 0, len(batch.Listings))
	for _, raw := range batch.Listings {
		stats.TotalRaw++

		if !ruleset.Filter.Matches(strings.ToLower(raw.Title)) {
			stats.Unclassified++
			continue
		}

		// Dedup after the content gate: a filter-rejected row must not
		// burn the fingerprint a later, correctly-routed batch may claim.
		if !n.dedup.Admit(raw.Title) {
			stats.Duplicates++
			continue
		}

		sale, ok := n.normalizeRow(ruleset.Slug, raw)
		if !ok {
			stats.NoPrice++
			continue
		}

		if sale.WeightGrams > 0 {
			stats.WithWeight++
		}
		stats.Kept++
		kept = append(kept, sale)
	}
	return kept
}

// normalizeRow builds one CanonicalSale. Price is the only hard field: a sale
// without a price carries no analytical value. Date and weight soft-fail.
func (n *Normalizer) normalizeRow(slug string, raw *models.RawListing) (*models.CanonicalSale, bool) {
	price, ok := ExtractPrice(raw.PriceText)
	if !ok {
		return nil, false
	}

	date := ExtractDate(raw.DateText)

	weight := presuppliedWeight(raw.WeightText)
	if weight == 0 {
		weight, _ = ExtractWeight(raw.Title)
	}

	sale := &models.CanonicalSale{
		MaterialSlug: slug,
		Title:        raw.Title,
		PriceUSD:     price,
		SaleDate:     date,
		WeightGrams:  weight,
		Source:       sourceLabel,
	}
	if weight > 0 {
		sale.PricePerGram = round2(price / weight)
	}
	return sale, true
}

// presuppliedWeight parses a weight field already present on the raw row.
// It wins over title extraction when it is a positive number.
func presuppliedWeight(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	w, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || w <= 0 {
		return 0
	}
	return w
}
