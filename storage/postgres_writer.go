package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"sheet-enricher/models"
)

// PostgresWriter persists touch chains and the rate table to PostgreSQL.
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
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS touch_chains (
			client_id       TEXT PRIMARY KEY,
			chain           TEXT    NOT NULL,
			conversion_sum  DOUBLE PRECISION NOT NULL DEFAULT 0,
			conversion_flag SMALLINT NOT NULL DEFAULT 0,
			touch_count     INTEGER NOT NULL DEFAULT 0,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_touch_chains_flag ON touch_chains(conversion_flag);

		CREATE TABLE IF NOT EXISTS currency_rates (
			code       VARCHAR(8) PRIMARY KEY,
			rate_text  TEXT NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

// Clear deletes all existing chains from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM touch_chains")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// WriteChains batch-inserts ALL chains, clearing old data first.
func (pw *PostgresWriter) WriteChains(chains []models.TouchChain) error {
	if len(chains) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 200
	for i := 0; i < len(chains); i += batchSize {
		end := i + batchSize
		if end > len(chains) {
			end = len(chains)
		}
		if err := pw.insertBatch(chains[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []models.TouchChain) error {
	query, args := chainInsert(batch)
	if _, err := pw.db.Exec(query, args...); err != nil {
		return fmt.Errorf("postgres: insert chains: %w", err)
	}
	return nil
}

// chainInsert builds a multi-row upsert for batch.
func chainInsert(batch []models.TouchChain) (string, []interface{}) {
	const cols = 5
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, c := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs,
			c.ClientID, c.Chain, c.ConversionSum, c.ConversionFlag, c.TouchCount)
	}

	query := fmt.Sprintf(`
		INSERT INTO touch_chains (client_id, chain, conversion_sum, conversion_flag, touch_count)
		VALUES %s
		ON CONFLICT (client_id) DO UPDATE SET
			chain = EXCLUDED.chain,
			conversion_sum = EXCLUDED.conversion_sum,
			conversion_flag = EXCLUDED.conversion_flag,
			touch_count = EXCLUDED.touch_count
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

// WriteRates replaces the stored rate table in one transaction.
func (pw *PostgresWriter) WriteRates(entries []models.RateEntry) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM currency_rates"); err != nil {
		return fmt.Errorf("postgres: clear rates: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.Exec(`
			INSERT INTO currency_rates (code, rate_text) VALUES ($1, $2)
			ON CONFLICT (code) DO UPDATE SET rate_text = EXCLUDED.rate_text, fetched_at = NOW()
		`, e.Code, e.Rate); err != nil {
			return fmt.Errorf("postgres: insert rate %s: %w", e.Code, err)
		}
	}
	return tx.Commit()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored chains, used by the insight service.
func (pw *PostgresWriter) FetchAll() ([]models.TouchChain, error) {
	rows, err := pw.db.Query(`
		SELECT client_id, chain, conversion_sum, conversion_flag, touch_count
		FROM touch_chains
		ORDER BY client_id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var chains []models.TouchChain
	for rows.Next() {
		var c models.TouchChain
		if err := rows.Scan(
			&c.ClientID, &c.Chain, &c.ConversionSum, &c.ConversionFlag, &c.TouchCount,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		chains = append(chains, c)
	}
	return chains, rows.Err()
}
