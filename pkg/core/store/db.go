// Package store persists companies, filings and processed statements in
// Postgres.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// Connect opens a connection pool and checks it with a ping.
func Connect(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database URL not set")
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return p, nil
}

// InitDB initializes the shared connection pool once per process.
func InitDB(ctx context.Context, dbURL string) error {
	var err error
	once.Do(func() {
		pool, err = Connect(ctx, dbURL)
	})
	return err
}

// GetPool returns the shared pool, or nil before InitDB succeeds.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the shared pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id               BIGSERIAL PRIMARY KEY,
		cik              TEXT NOT NULL UNIQUE,
		name             TEXT NOT NULL,
		entity_type      TEXT,
		sic              TEXT,
		sic_description  TEXT,
		fiscal_year_end  TEXT,
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS company_tickers (
		company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		ticker     TEXT NOT NULL,
		PRIMARY KEY (company_id, ticker)
	)`,
	`CREATE TABLE IF NOT EXISTS company_exchanges (
		company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		exchange   TEXT NOT NULL,
		PRIMARY KEY (company_id, exchange)
	)`,
	`CREATE TABLE IF NOT EXISTS filings (
		id                      BIGSERIAL PRIMARY KEY,
		company_id              BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		accession_number        TEXT NOT NULL UNIQUE,
		filing_date             DATE,
		report_date             DATE,
		acceptance_datetime     TIMESTAMPTZ,
		act                     TEXT,
		form                    TEXT NOT NULL,
		file_number             TEXT,
		film_number             TEXT,
		items                   TEXT,
		core_type               TEXT,
		size                    BIGINT,
		is_xbrl                 BOOLEAN NOT NULL DEFAULT FALSE,
		is_inline_xbrl          BOOLEAN NOT NULL DEFAULT FALSE,
		primary_document        TEXT,
		primary_doc_description TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS filings_company_form_idx ON filings (company_id, form)`,
	`CREATE TABLE IF NOT EXISTS statement_snapshots (
		id         UUID PRIMARY KEY,
		cik        TEXT NOT NULL,
		kind       TEXT NOT NULL,
		data       JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS statement_snapshots_lookup_idx ON statement_snapshots (cik, kind, created_at DESC)`,
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, p *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// nullTime maps the zero time (an unparseable SEC date) to NULL.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func fromNull(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
