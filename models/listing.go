package models

import "time"

// RawListing holds one unprocessed sold-listing row as scraped or as read
// from a source CSV. Field values are free text exactly as they appeared.
type RawListing struct {
	Title      string
	PriceText  string
	DateText   string
	WeightText string
	ScrapedAt  time.Time
	Source     string
}

// RawBatch groups the raw listings collected for one source context
// (one search-query file / one material CSV).
type RawBatch struct {
	Source   string
	Listings []*RawListing
}

// CanonicalSale is the normalized, validated per-sale record.
//
// WeightGrams and PricePerGram use 0 to mean "unknown"; a sale with a known
// weight always carries PricePerGram = round(PriceUSD/WeightGrams, 2), and a
// sale without one never does. SaleDate is YYYY-MM-DD when the raw date text
// parsed, otherwise the raw text is carried through unchanged.
type CanonicalSale struct {
	MaterialSlug string
	Title        string
	PriceUSD     float64
	SaleDate     string
	WeightGrams  float64
	PricePerGram float64
	Source       string
}

// MonthlyAggregate is one material's median price-per-gram for one calendar
// month, ready for the price-index table.
type MonthlyAggregate struct {
	MaterialSlug       string
	YearMonth          string
	MedianPricePerGram float64
	SampleCount        int
	Source             string
	RecordedAt         string
}

// RunStats counts what happened to every raw row in one pipeline run.
// Drops are expected with noisy marketplace input; none of them are errors.
type RunStats struct {
	TotalRaw     int
	Kept         int
	Unclassified int
	Duplicates   int
	NoPrice      int
	WithWeight   int

	// PerSource maps a source context to its raw/kept counts.
	PerSource map[string]*SourceStats
}

// SourceStats is the per-source breakdown inside RunStats.
type SourceStats struct {
	Raw  int
	Kept int
}

// NewRunStats returns an empty RunStats ready for counting.
func NewRunStats() *RunStats {
	return &RunStats{PerSource: make(map[string]*SourceStats)}
}

// Dropped returns the total number of rows that did not survive the run.
func (s *RunStats) Dropped() int {
	return s.Unclassified + s.Duplicates + s.NoPrice
}

// CountSource records a raw/kept pair for one source context.
func (s *RunStats) CountSource(source string, raw, kept int) {
	ss := s.PerSource[source]
	if ss == nil {
		ss = &SourceStats{}
		s.PerSource[source] = ss
	}
	ss.Raw += raw
	ss.Kept += kept
}
