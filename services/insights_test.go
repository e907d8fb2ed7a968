package services

import (
	"testing"

	"lithos-pipeline/models"
)

func sampleSales() []*models.CanonicalSale {
	return []*models.CanonicalSale{
		{MaterialSlug: "darwin-glass", PriceUSD: 50, WeightGrams: 5, PricePerGram: 10, SaleDate: "2026-01-05"},
		{MaterialSlug: "darwin-glass", PriceUSD: 20, WeightGrams: 1, PricePerGram: 20, SaleDate: "2026-01-12"},
		{MaterialSlug: "darwin-glass", PriceUSD: 90, SaleDate: "2026-01-20"},
		{MaterialSlug: "trinitite", PriceUSD: 30, WeightGrams: 2, PricePerGram: 15, SaleDate: "2026-02-01"},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleSales(), models.NewRunStats())

	if r.TotalSales != 4 {
		t.Errorf("TotalSales = %d; want 4", r.TotalSales)
	}
	if r.WithWeight != 3 {
		t.Errorf("WithWeight = %d; want 3", r.WithWeight)
	}
	if len(r.Materials) != 2 {
		t.Fatalf("materials = %d; want 2", len(r.Materials))
	}
	// Sorted by slug.
	if r.Materials[0].Slug != "darwin-glass" || r.Materials[1].Slug != "trinitite" {
		t.Errorf("material order = %q, %q", r.Materials[0].Slug, r.Materials[1].Slug)
	}
	if r.Materials[0].Count != 3 {
		t.Errorf("darwin-glass count = %d; want 3", r.Materials[0].Count)
	}
}

func TestInsightPriceStats(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleSales(), models.NewRunStats())

	if r.OverallMinPrice != 20 || r.OverallMaxPrice != 90 {
		t.Errorf("overall range = %.2f-%.2f; want 20-90", r.OverallMinPrice, r.OverallMaxPrice)
	}

	dg := r.Materials[0]
	if dg.MinPrice != 20 || dg.MaxPrice != 90 {
		t.Errorf("darwin-glass range = %.2f-%.2f; want 20-90", dg.MinPrice, dg.MaxPrice)
	}
	if dg.MedianPricePerGram != 15 {
		t.Errorf("darwin-glass median $/g = %.2f; want 15", dg.MedianPricePerGram)
	}
	if dg.AvgPricePerGram != 15 {
		t.Errorf("darwin-glass avg $/g = %.2f; want 15", dg.AvgPricePerGram)
	}

	if r.OverallMedianPPG != 15 {
		t.Errorf("overall median $/g = %.2f; want 15", r.OverallMedianPPG)
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil, models.NewRunStats())
	if r.TotalSales != 0 || len(r.Materials) != 0 {
		t.Errorf("expected empty report, got %+v", r)
	}
}
