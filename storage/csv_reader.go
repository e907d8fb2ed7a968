package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lithos-pipeline/models"
)

// ReadRawBatches reads every *.csv file in dir into one RawBatch per file,
// skipping the file named skipName (the merged output living in the same
// directory). The file's base name, without extension, becomes the batch's
// source context. Files that cannot be parsed are skipped so one corrupt
// export never aborts the run; a missing directory yields an empty slice.
func ReadRawBatches(dir, skipName string) ([]*models.RawBatch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("csv: read dir %q: %w", dir, err)
	}

	var batches []*models.RawBatch
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") || name == skipName {
			continue
		}

		listings, err := readRawFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}

		batches = append(batches, &models.RawBatch{
			Source:   strings.TrimSuffix(name, ".csv"),
			Listings: listings,
		})
	}
	return batches, nil
}

// readRawFile reads one header-mapped CSV of raw listings. Older exports use
// "price"/"date" instead of "price_usd"/"sale_date"; both spellings are
// accepted.
func readRawFile(path string) ([]*models.RawListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: header %q: %w", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	source := strings.TrimSuffix(filepath.Base(path), ".csv")

	var listings []*models.RawListing
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read %q: %w", path, err)
		}

		listings = append(listings, &models.RawListing{
			Title:      field(record, cols, "title"),
			PriceText:  firstField(record, cols, "price_usd", "price"),
			DateText:   firstField(record, cols, "sale_date", "date"),
			WeightText: field(record, cols, "weight_grams"),
			Source:     source,
		})
	}
	return listings, nil
}

func field(record []string, cols map[string]int, name string) string {
	if i, ok := cols[name]; ok && i < len(record) {
		return record[i]
	}
	return ""
}

func firstField(record []string, cols map[string]int, names ...string) string {
	for _, name := range names {
		if v := field(record, cols, name); v != "" {
			return v
		}
	}
	return ""
}
