package services

import (
	"fmt"
	"sort"
	"strings"

	"lithos-pipeline/models"
	"lithos-pipeline/utils"
)

// InsightService summarizes a run: per-material counts, price ranges, weight
// coverage and price-per-gram statistics, plus the drop counters.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(sales []*models.CanonicalSale, stats *models.RunStats) *models.InsightReport {
	report := &models.InsightReport{Stats: stats}
	if len(sales) == 0 {
		return report
	}

	report.TotalSales = len(sales)

	byMaterial := make(map[string]*models.MaterialSummary)
	ppgByMaterial := make(map[string][]float64)
	var allPPG []float64

	for _, sale := range sales {
		m := byMaterial[sale.MaterialSlug]
		if m == nil {
			m = &models.MaterialSummary{
				Slug:     sale.MaterialSlug,
				MinPrice: sale.PriceUSD,
				MaxPrice: sale.PriceUSD,
			}
			byMaterial[sale.MaterialSlug] = m
		}
		m.Count++
		if sale.PriceUSD < m.MinPrice {
			m.MinPrice = sale.PriceUSD
		}
		if sale.PriceUSD > m.MaxPrice {
			m.MaxPrice = sale.PriceUSD
		}
		if sale.PricePerGram > 0 {
			m.WithWeight++
			report.WithWeight++
			ppgByMaterial[sale.MaterialSlug] = append(ppgByMaterial[sale.MaterialSlug], sale.PricePerGram)
			allPPG = append(allPPG, sale.PricePerGram)
		}
	}

	report.OverallMinPrice = sales[0].PriceUSD
	report.OverallMaxPrice = sales[0].PriceUSD
	for _, sale := range sales {
		if sale.PriceUSD < report.OverallMinPrice {
			report.OverallMinPrice = sale.PriceUSD
		}
		if sale.PriceUSD > report.OverallMaxPrice {
			report.OverallMaxPrice = sale.PriceUSD
		}
	}

	for slug, m := range byMaterial {
		if ppg := ppgByMaterial[slug]; len(ppg) > 0 {
			m.AvgPricePerGram = round2(mean(ppg))
			m.MedianPricePerGram = round2(median(ppg))
		}
		report.Materials = append(report.Materials, m)
	}
	sort.Slice(report.Materials, func(i, j int) bool {
		return report.Materials[i].Slug < report.Materials[j].Slug
	})

	if len(allPPG) > 0 {
		report.OverallAvgPPG = round2(mean(allPPG))
		report.OverallMedianPPG = round2(median(allPPG))
	}

	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 62)
	thin := strings.Repeat("─", 62)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 MATERIAL PRICE PIPELINE SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Run counters
	if r.Stats != nil {
		fmt.Printf("\033[1;33m  Run\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  Raw rows       : \033[1m%d\033[0m\n", r.Stats.TotalRaw)
		fmt.Printf("  Kept           : \033[1m%d\033[0m\n", r.Stats.Kept)
		fmt.Printf("  Unclassified   : %d\n", r.Stats.Unclassified)
		fmt.Printf("  Duplicates     : %d\n", r.Stats.Duplicates)
		fmt.Printf("  No usable price: %d\n", r.Stats.NoPrice)
		fmt.Println()
	}

	if r.TotalSales == 0 {
		fmt.Printf("  No canonical sales this run\n")
		fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	// Per-material table
	fmt.Printf("\033[1;33m  Materials\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  %-28s %6s %18s %10s\n", "Material", "Count", "Price Range", "Med $/g")
	for _, m := range r.Materials {
		priceRange := fmt.Sprintf("$%.0f - $%.0f", m.MinPrice, m.MaxPrice)
		medPPG := "N/A"
		if m.WithWeight > 0 {
			medPPG = fmt.Sprintf("$%.2f", m.MedianPricePerGram)
		}
		fmt.Printf("  %-28s %6d %18s %10s\n", truncate(m.Slug, 28), m.Count, priceRange, medPPG)
	}
	fmt.Println()

	// Overall
	fmt.Printf("\033[1;33m  Overall\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Price range       : \033[1;32m$%.2f - $%.2f\033[0m\n", r.OverallMinPrice, r.OverallMaxPrice)
	fmt.Printf("  Rows with weight  : %d (%.1f%%)\n",
		r.WithWeight, float64(r.WithWeight)/float64(r.TotalSales)*100)
	if r.WithWeight > 0 {
		fmt.Printf("  Median price/gram : \033[1;32m$%.2f\033[0m\n", r.OverallMedianPPG)
		fmt.Printf("  Average price/gram: \033[1;32m$%.2f\033[0m\n", r.OverallAvgPPG)
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func mean(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
