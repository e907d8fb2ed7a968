package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"lithos-pipeline/models"
)

// mergedHeader is the canonical-sale table schema consumed by the importer.
var mergedHeader = []string{
	"material_slug", "title", "price_usd", "sale_date",
	"weight_grams", "price_per_gram", "source",
}

// CSVWriter writes canonical sales to the merged CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(mergedHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends canonical sales to the merged CSV. Unknown weight and
// price-per-gram become empty cells.
func (c *CSVWriter) Write(sales []*models.CanonicalSale) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range sales {
		weight, ppg := "", ""
		if s.WeightGrams > 0 {
			weight = strconv.FormatFloat(s.WeightGrams, 'f', -1, 64)
			ppg = strconv.FormatFloat(s.PricePerGram, 'f', 2, 64)
		}
		row := []string{
			s.MaterialSlug,
			s.Title,
			strconv.FormatFloat(s.PriceUSD, 'f', 2, 64),
			s.SaleDate,
			weight,
			ppg,
			s.Source,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

// WriteMaterialCSV saves one material's raw scrape to <dir>/<source>.csv in
// the format ReadRawBatches reads back.
func WriteMaterialCSV(dir, source string, listings []*models.RawListing) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("csv: create data dir: %w", err)
	}

	path := filepath.Join(dir, source+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"title", "price_usd", "sale_date", "weight_grams", "source", "scraped_at"}); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, l := range listings {
		row := []string{
			l.Title,
			l.PriceText,
			l.DateText,
			l.WeightText,
			l.Source,
			l.ScrapedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
