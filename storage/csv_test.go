package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lithos-pipeline/models"
)

func TestMaterialCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()

	listings := []*models.RawListing{
		{Title: "Darwin Glass 5.2g", PriceText: "$50.00", DateText: "Jan 05, 2026", Source: "darwin-glass", ScrapedAt: time.Now()},
		{Title: "Darwin Glass chunk", PriceText: "$12", DateText: "", WeightText: "3.5", Source: "darwin-glass", ScrapedAt: time.Now()},
	}

	if err := WriteMaterialCSV(dir, "darwin-glass", listings); err != nil {
		t.Fatalf("WriteMaterialCSV: %v", err)
	}

	batches, err := ReadRawBatches(dir, "merged.csv")
	if err != nil {
		t.Fatalf("ReadRawBatches: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("got %d batches; want 1", len(batches))
	}

	b := batches[0]
	if b.Source != "darwin-glass" {
		t.Errorf("source = %q; want darwin-glass", b.Source)
	}
	if len(b.Listings) != 2 {
		t.Fatalf("got %d listings; want 2", len(b.Listings))
	}
	if b.Listings[0].Title != "Darwin Glass 5.2g" || b.Listings[0].PriceText != "$50.00" {
		t.Errorf("row 0 round-trip mismatch: %+v", b.Listings[0])
	}
	if b.Listings[1].WeightText != "3.5" {
		t.Errorf("weight text = %q; want 3.5", b.Listings[1].WeightText)
	}
}

func TestReadRawBatchesSkipsMergedOutput(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("trinitite.csv", "title,price_usd,sale_date\nTrinitite 3g,$25,Jan 05 2026\n")
	write("merged.csv", "material_slug,title\nx,y\n")
	write("notes.txt", "not a csv")

	batches, err := ReadRawBatches(dir, "merged.csv")
	if err != nil {
		t.Fatalf("ReadRawBatches: %v", err)
	}
	if len(batches) != 1 || batches[0].Source != "trinitite" {
		t.Fatalf("got %+v; want only the trinitite batch", batches)
	}
}

func TestReadRawBatchesLegacyColumns(t *testing.T) {
	dir := t.TempDir()

	content := "title,price,date\nAustralite button 10g,$40,02/01/2026\n"
	if err := os.WriteFile(filepath.Join(dir, "australite.csv"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	batches, err := ReadRawBatches(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 1 || len(batches[0].Listings) != 1 {
		t.Fatalf("got %+v; want one batch with one listing", batches)
	}
	l := batches[0].Listings[0]
	if l.PriceText != "$40" || l.DateText != "02/01/2026" {
		t.Errorf("legacy columns not mapped: %+v", l)
	}
}

func TestReadRawBatchesMissingDir(t *testing.T) {
	batches, err := ReadRawBatches(filepath.Join(t.TempDir(), "nope"), "")
	if err != nil {
		t.Fatalf("missing dir should not error, got %v", err)
	}
	if len(batches) != 0 {
		t.Errorf("got %d batches; want 0", len(batches))
	}
}

func TestCSVWriterBlankUnknowns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "merged.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	sales := []*models.CanonicalSale{
		{MaterialSlug: "darwin-glass", Title: "A 5.2g", PriceUSD: 50, SaleDate: "2026-01-05",
			WeightGrams: 5.2, PricePerGram: 9.62, Source: "WorthPoint"},
		{MaterialSlug: "darwin-glass", Title: "B no weight", PriceUSD: 30, SaleDate: "2026-01-06",
			Source: "WorthPoint"},
	}
	if err := w.Write(sales); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines; want header + 2 rows", len(lines))
	}
	if lines[0] != "material_slug,title,price_usd,sale_date,weight_grams,price_per_gram,source" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "5.2,9.62") {
		t.Errorf("row with weight = %q; want weight and price/gram cells", lines[1])
	}
	if !strings.Contains(lines[2], ",,,WorthPoint") {
		t.Errorf("row without weight = %q; want blank weight/ppg cells", lines[2])
	}
}
