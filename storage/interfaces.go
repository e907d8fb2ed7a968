package storage

import "lithos-pipeline/models"

// SaleWriter is the interface for persisting the canonical sale table.
type SaleWriter interface {
	Write(sales []*models.CanonicalSale) error
	Close() error
}

// AggregateWriter is the interface the monthly-aggregate sink must satisfy.
type AggregateWriter interface {
	Write(aggregates []*models.MonthlyAggregate) error
	Close() error
}

var (
	_ SaleWriter      = (*CSVWriter)(nil)
	_ AggregateWriter = (*PostgresWriter)(nil)
)
