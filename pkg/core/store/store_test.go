package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/ingest"
	"sec_insights/pkg/core/processor"
)

func TestFilingFilterSQL(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	q, args := FilingFilter{}.sql()
	assert.NotContains(t, q, "WHERE")
	assert.NotContains(t, q, "LIMIT")
	assert.Empty(t, args)

	q, args = FilingFilter{CIK: "0000320193", Form: "10-K", Start: start, Limit: 5}.sql()
	assert.Contains(t, q, "WHERE c.cik = $1 AND f.form = $2 AND f.filing_date >= $3")
	assert.Contains(t, q, "LIMIT $4")
	assert.Equal(t, []any{"0000320193", "10-K", start, 5}, args)
}

func TestNullTime(t *testing.T) {
	assert.Nil(t, nullTime(time.Time{}))
	now := time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC)
	require.NotNil(t, nullTime(now))
	assert.Equal(t, now, *nullTime(now))
	assert.True(t, fromNull(nil).IsZero())
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "APC"}, dedupe([]string{"AAPL", " AAPL", "", "APC"}))
}

// testPool connects to TEST_DATABASE_URL or skips.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	p, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	require.NoError(t, Migrate(ctx, p))
	return p
}

const testCIK = "0009999999"

func cleanup(t *testing.T, p *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	_, err := p.Exec(ctx, `DELETE FROM companies WHERE cik = $1`, testCIK)
	require.NoError(t, err)
	_, err = p.Exec(ctx, `DELETE FROM statement_snapshots WHERE cik = $1`, testCIK)
	require.NoError(t, err)
}

func testSubmissions(t *testing.T) *ingest.Submissions {
	t.Helper()
	var sub ingest.Submissions
	require.NoError(t, json.Unmarshal([]byte(`{
		"cik": "9999999", "name": "Test Corp", "entityType": "operating", "sic": "7372",
		"sicDescription": "Services-Prepackaged Software", "fiscalYearEnd": "1231",
		"tickers": ["TST", "TSTW"], "exchanges": ["NYSE"],
		"filings": {"recent": {
			"accessionNumber": ["0009999999-24-000002", "0009999999-24-000001"],
			"filingDate": ["2024-02-01", "2023-11-01"],
			"reportDate": ["2023-12-31", ""],
			"acceptanceDateTime": ["2024-02-01T16:30:00.000Z", "bad"],
			"form": ["10-K", "10-Q"],
			"size": [1000, 500],
			"isXBRL": [1, 1],
			"isInlineXBRL": [1, 0],
			"primaryDocument": ["tst-20231231.htm", "tst-20230930.htm"]
		}}
	}`), &sub))
	return &sub
}

func TestRepositorySubmissions(t *testing.T) {
	p := testPool(t)
	cleanup(t, p)
	t.Cleanup(func() { cleanup(t, p) })

	repo := NewRepository(p)
	ctx := context.Background()

	id, inserted, err := repo.SaveSubmissions(ctx, testSubmissions(t))
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, 2, inserted)

	again, inserted, err := repo.SaveSubmissions(ctx, testSubmissions(t))
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Zero(t, inserted)

	c, err := repo.GetCompany(ctx, "9999999")
	require.NoError(t, err)
	assert.Equal(t, "Test Corp", c.Name)
	assert.Equal(t, []string{"TST", "TSTW"}, c.Tickers)
	assert.Equal(t, []string{"NYSE"}, c.Exchanges)

	filings, err := repo.QueryFilings(ctx, FilingFilter{CIK: testCIK})
	require.NoError(t, err)
	require.Len(t, filings, 2)
	assert.Equal(t, "0009999999-24-000002", filings[0].AccessionNumber)
	assert.True(t, filings[1].ReportDate.IsZero())
	assert.True(t, filings[1].AcceptanceDateTime.IsZero())

	tenK, err := repo.QueryFilings(ctx, FilingFilter{CIK: testCIK, Form: "10-K"})
	require.NoError(t, err)
	assert.Len(t, tenK, 1)

	_, err = repo.GetCompany(ctx, "9999998")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRepositoryStatements(t *testing.T) {
	p := testPool(t)
	cleanup(t, p)
	t.Cleanup(func() { cleanup(t, p) })

	repo := NewRepository(p)
	ctx := context.Background()

	facts := &ingest.CompanyFacts{
		CIK: testCIK,
		Facts: map[string]map[string]ingest.Concept{"us-gaap": {
			"Assets":             {Units: map[string][]ingest.Fact{"USD": {{End: "2023-12-31", Val: 100, Filed: "2024-02-01"}}}},
			"Liabilities":        {Units: map[string][]ingest.Fact{"USD": {{End: "2023-12-31", Val: 60, Filed: "2024-02-01"}}}},
			"StockholdersEquity": {Units: map[string][]ingest.Fact{"USD": {{End: "2023-12-31", Val: 40, Filed: "2024-02-01"}}}},
		}},
	}
	st, err := processor.NewBalanceSheet().Process(facts)
	require.NoError(t, err)

	id, err := repo.SaveStatement(ctx, testCIK, st)
	require.NoError(t, err)

	snap, err := repo.LatestStatement(ctx, testCIK, processor.BalanceSheet)
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, st.Rows(), snap.Statement.Rows())

	_, err = repo.LatestStatement(ctx, testCIK, processor.CashFlow)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
