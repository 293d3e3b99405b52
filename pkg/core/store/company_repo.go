package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/ingest"
)

// Company is a stored company with its tickers and exchanges.
type Company struct {
	ID             int64     `json:"id"`
	CIK            string    `json:"cik"`
	Name           string    `json:"name"`
	EntityType     string    `json:"entity_type"`
	SIC            string    `json:"sic"`
	SICDescription string    `json:"sic_description"`
	FiscalYearEnd  string    `json:"fiscal_year_end"`
	Tickers        []string  `json:"tickers"`
	Exchanges      []string  `json:"exchanges"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Repository reads and writes company data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository on pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveSubmissions upserts the company, replaces its tickers and exchanges
// and inserts filings not seen before, all in one transaction. It returns
// the company id and how many filings were new.
func (r *Repository) SaveSubmissions(ctx context.Context, sub *ingest.Submissions) (int64, int, error) {
	cik, err := ingest.NormalizeCIK(sub.CIK.String())
	if err != nil {
		return 0, 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var companyID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO companies (cik, name, entity_type, sic, sic_description, fiscal_year_end, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (cik)
		DO UPDATE SET
			name = EXCLUDED.name,
			entity_type = EXCLUDED.entity_type,
			sic = EXCLUDED.sic,
			sic_description = EXCLUDED.sic_description,
			fiscal_year_end = EXCLUDED.fiscal_year_end,
			updated_at = NOW()
		RETURNING id`,
		cik, sub.Name, sub.EntityType, sub.SIC, sub.SICDescription, sub.FiscalYearEnd,
	).Scan(&companyID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to save company: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM company_tickers WHERE company_id = $1`, companyID)
	for _, t := range dedupe(sub.Tickers) {
		batch.Queue(`INSERT INTO company_tickers (company_id, ticker) VALUES ($1, $2)`, companyID, t)
	}
	batch.Queue(`DELETE FROM company_exchanges WHERE company_id = $1`, companyID)
	for _, e := range dedupe(sub.Exchanges) {
		batch.Queue(`INSERT INTO company_exchanges (company_id, exchange) VALUES ($1, $2)`, companyID, e)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, 0, fmt.Errorf("failed to save tickers: %w", err)
	}

	filings := sub.Filings(nil, 0)
	batch = &pgx.Batch{}
	for _, f := range filings {
		batch.Queue(`
			INSERT INTO filings (
				company_id, accession_number, filing_date, report_date, acceptance_datetime,
				act, form, file_number, film_number, items, core_type, size,
				is_xbrl, is_inline_xbrl, primary_document, primary_doc_description
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (accession_number) DO NOTHING`,
			companyID, f.AccessionNumber, nullTime(f.FilingDate), nullTime(f.ReportDate), nullTime(f.AcceptanceDateTime),
			f.Act, f.Form, f.FileNumber, f.FilmNumber, f.Items, f.CoreType, f.Size,
			f.IsXBRL, f.IsInlineXBRL, f.PrimaryDocument, f.PrimaryDocDescription,
		)
	}

	inserted := 0
	br := tx.SendBatch(ctx, batch)
	for range filings {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, 0, fmt.Errorf("failed to save filing: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, 0, fmt.Errorf("failed to save filings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit: %w", err)
	}
	return companyID, inserted, nil
}

// GetCompany loads a company by CIK.
func (r *Repository) GetCompany(ctx context.Context, cik string) (*Company, error) {
	norm, err := ingest.NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}

	var c Company
	var entityType, sic, sicDesc, fye *string
	err = r.pool.QueryRow(ctx, `
		SELECT c.id, c.cik, c.name, c.entity_type, c.sic, c.sic_description, c.fiscal_year_end, c.updated_at,
			ARRAY(SELECT ticker FROM company_tickers WHERE company_id = c.id ORDER BY ticker),
			ARRAY(SELECT exchange FROM company_exchanges WHERE company_id = c.id ORDER BY exchange)
		FROM companies c
		WHERE c.cik = $1`, norm,
	).Scan(&c.ID, &c.CIK, &c.Name, &entityType, &sic, &sicDesc, &fye, &c.UpdatedAt, &c.Tickers, &c.Exchanges)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: company %s", errs.ErrNotFound, norm)
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	c.EntityType = deref(entityType)
	c.SIC = deref(sic)
	c.SICDescription = deref(sicDesc)
	c.FiscalYearEnd = deref(fye)
	return &c, nil
}

// FilingFilter narrows QueryFilings. Zero fields do not filter.
type FilingFilter struct {
	CIK   string
	Form  string
	Start time.Time // filing date, inclusive
	End   time.Time // filing date, inclusive
	Limit int
}

func (f FilingFilter) sql() (string, []any) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.CIK != "" {
		add("c.cik = $%d", f.CIK)
	}
	if f.Form != "" {
		add("f.form = $%d", f.Form)
	}
	if !f.Start.IsZero() {
		add("f.filing_date >= $%d", f.Start)
	}
	if !f.End.IsZero() {
		add("f.filing_date <= $%d", f.End)
	}

	q := `
		SELECT c.cik, f.accession_number, f.filing_date, f.report_date, f.acceptance_datetime,
			COALESCE(f.act, ''), f.form, COALESCE(f.file_number, ''), COALESCE(f.film_number, ''),
			COALESCE(f.items, ''), COALESCE(f.core_type, ''), COALESCE(f.size, 0),
			f.is_xbrl, f.is_inline_xbrl, COALESCE(f.primary_document, ''), COALESCE(f.primary_doc_description, '')
		FROM filings f
		JOIN companies c ON c.id = f.company_id`
	if len(where) > 0 {
		q += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	q += "\n\t\tORDER BY f.filing_date DESC NULLS LAST, f.accession_number DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}
	return q, args
}

// QueryFilings lists stored filings, newest first.
func (r *Repository) QueryFilings(ctx context.Context, filter FilingFilter) ([]ingest.Filing, error) {
	if filter.CIK != "" {
		norm, err := ingest.NormalizeCIK(filter.CIK)
		if err != nil {
			return nil, err
		}
		filter.CIK = norm
	}

	q, args := filter.sql()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query filings: %w", err)
	}
	defer rows.Close()

	var out []ingest.Filing
	for rows.Next() {
		var f ingest.Filing
		var cik string
		var filed, report, accepted *time.Time
		if err := rows.Scan(&cik, &f.AccessionNumber, &filed, &report, &accepted,
			&f.Act, &f.Form, &f.FileNumber, &f.FilmNumber, &f.Items, &f.CoreType, &f.Size,
			&f.IsXBRL, &f.IsInlineXBRL, &f.PrimaryDocument, &f.PrimaryDocDescription); err != nil {
			return nil, fmt.Errorf("failed to scan filing: %w", err)
		}
		f.FilingDate = fromNull(filed)
		f.ReportDate = fromNull(report)
		f.AcceptanceDateTime = fromNull(accepted)
		f.URL = ingest.FilingURL(cik, f.AccessionNumber, f.PrimaryDocument)
		out = append(out, f)
	}
	return out, rows.Err()
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
