package models

// MaterialSummary holds the computed statistics for one material.
type MaterialSummary struct {
	Slug               string
	Count              int
	MinPrice           float64
	MaxPrice           float64
	WithWeight         int
	AvgPricePerGram    float64
	MedianPricePerGram float64
}

// InsightReport holds the computed analytics over one run's canonical sales.
type InsightReport struct {
	TotalSales       int
	WithWeight       int
	Materials        []*MaterialSummary
	OverallMinPrice  float64
	OverallMaxPrice  float64
	OverallAvgPPG    float64
	OverallMedianPPG float64
	Stats            *RunStats
}
