package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"lithos-pipeline/models"
)

// PostgresWriter persists monthly aggregates to the lithos_prices table.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS lithos_prices (
			id            SERIAL PRIMARY KEY,
			material_slug VARCHAR(100)  NOT NULL,
			price_usd     NUMERIC(12,2) NOT NULL,
			price_per     VARCHAR(20)   NOT NULL DEFAULT 'gram',
			source        TEXT          NOT NULL DEFAULT '',
			recorded_at   DATE          NOT NULL,
			created_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_lithos_prices_material ON lithos_prices(material_slug);
		CREATE INDEX IF NOT EXISTS idx_lithos_prices_recorded ON lithos_prices(recorded_at);
	`)
	return err
}

// Clear deletes previously imported WorthPoint aggregates so a re-run
// replaces them instead of stacking duplicates.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM lithos_prices WHERE source LIKE 'WorthPoint%'")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write replaces the WorthPoint aggregates with the given set. Inserts go in
// batches of 100; when a batch is rejected each of its records is retried
// individually so one bad row cannot sink the rest.
func (pw *PostgresWriter) Write(aggregates []*models.MonthlyAggregate) error {
	if len(aggregates) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 100
	failed := 0

	for i := 0; i < len(aggregates); i += batchSize {
		end := i + batchSize
		if end > len(aggregates) {
			end = len(aggregates)
		}
		batch := aggregates[i:end]

		if err := pw.insertBatch(batch); err == nil {
			continue
		}
		for _, a := range batch {
			if err := pw.insertOne(a); err != nil {
				failed++
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("postgres: %d of %d aggregates failed to insert", failed, len(aggregates))
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.MonthlyAggregate) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*4)

	for idx, a := range batch {
		base := idx * 4
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,'gram',$%d,$%d)", base+1, base+2, base+3, base+4))
		valueArgs = append(valueArgs,
			a.MaterialSlug, a.MedianPricePerGram, a.Source, a.RecordedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO lithos_prices (material_slug, price_usd, price_per, source, recorded_at)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) insertOne(a *models.MonthlyAggregate) error {
	_, err := pw.db.Exec(`
		INSERT INTO lithos_prices (material_slug, price_usd, price_per, source, recorded_at)
		VALUES ($1, $2, 'gram', $3, $4)
	`, a.MaterialSlug, a.MedianPricePerGram, a.Source, a.RecordedAt)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves the stored WorthPoint aggregates ordered the way the
// aggregator emits them, used for post-import verification.
func (pw *PostgresWriter) FetchAll() ([]*models.MonthlyAggregate, error) {
	rows, err := pw.db.Query(`
		SELECT material_slug, price_usd, source, to_char(recorded_at, 'YYYY-MM-DD')
		FROM lithos_prices
		WHERE source LIKE 'WorthPoint%'
		ORDER BY material_slug, recorded_at
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var aggregates []*models.MonthlyAggregate
	for rows.Next() {
		a := &models.MonthlyAggregate{}
		if err := rows.Scan(&a.MaterialSlug, &a.MedianPricePerGram, &a.Source, &a.RecordedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if len(a.RecordedAt) >= 7 {
			a.YearMonth = a.RecordedAt[:7]
		}
		aggregates = append(aggregates, a)
	}
	return aggregates, rows.Err()
}
