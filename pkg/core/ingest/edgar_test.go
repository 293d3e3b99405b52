package ingest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const submissionsJSON = `{
  "cik": "320193",
  "entityType": "operating",
  "sic": "3571",
  "sicDescription": "Electronic Computers",
  "name": "Apple Inc.",
  "tickers": ["AAPL"],
  "exchanges": ["Nasdaq"],
  "fiscalYearEnd": "0928",
  "filings": {
    "recent": {
      "accessionNumber": ["0000320193-24-000123", "0000320193-24-000081", "0000320193-24-000069"],
      "filingDate": ["2024-11-01", "2024-08-02", "2024-05-03"],
      "reportDate": ["2024-09-28", "2024-06-29", ""],
      "acceptanceDateTime": ["2024-11-01T06:01:36.000Z", "2024-08-02T06:01:38.000Z", "2024-05-02T18:04:25.000Z"],
      "act": ["34", "34", "34"],
      "form": ["10-K", "10-Q", "8-K"],
      "fileNumber": ["001-36743", "001-36743", "001-36743"],
      "filmNumber": ["241416806", "241168331", "24908013"],
      "items": ["", "", "2.02,9.01"],
      "core_type": ["10-K", "10-Q", "8-K"],
      "size": [9759333, 5957258, 423004],
      "isXBRL": [1, 1, 1],
      "isInlineXBRL": [1, 1, 0],
      "primaryDocument": ["aapl-20240928.htm", "aapl-20240629.htm", "aapl-20240502.htm"],
      "primaryDocDescription": ["10-K", "10-Q", "8-K"]
    }
  }
}`

func loadSubmissions(t *testing.T) *Submissions {
	t.Helper()
	var sub Submissions
	require.NoError(t, json.Unmarshal([]byte(submissionsJSON), &sub))
	return &sub
}

func TestSubmissionsFilings(t *testing.T) {
	sub := loadSubmissions(t)
	assert.Equal(t, CIK("0000320193"), sub.CIK)

	all := sub.Filings(nil, 0)
	require.Len(t, all, 3)

	k := all[0]
	assert.Equal(t, "0000320193-24-000123", k.AccessionNumber)
	assert.Equal(t, "10-K", k.Form)
	assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), k.FilingDate)
	assert.Equal(t, time.Date(2024, 9, 28, 0, 0, 0, 0, time.UTC), k.ReportDate)
	assert.Equal(t, time.Date(2024, 11, 1, 6, 1, 36, 0, time.UTC), k.AcceptanceDateTime)
	assert.Equal(t, int64(9759333), k.Size)
	assert.True(t, k.IsXBRL)
	assert.True(t, k.IsInlineXBRL)
	assert.Equal(t, "https://www.sec.gov/Archives/edgar/data/320193/000032019324000123/aapl-20240928.htm", k.URL)

	assert.True(t, all[2].ReportDate.IsZero())
	assert.False(t, all[2].IsInlineXBRL)
	assert.Equal(t, "2.02,9.01", all[2].Items)
}

func TestSubmissionsFilters(t *testing.T) {
	sub := loadSubmissions(t)

	assert.Len(t, sub.Filings([]string{"10-K", "10-Q"}, 0), 2)
	assert.Len(t, sub.Filings([]string{"10-K", "10-Q"}, 1), 1)
	assert.Empty(t, sub.Filings([]string{"S-1"}, 0))

	recent := sub.RecentFilings(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "10-Q", recent[1].Form)

	eightK := sub.FilingsByForm("8-K")
	require.Len(t, eightK, 1)
	assert.Equal(t, "0000320193-24-000069", eightK[0].AccessionNumber)
}

func TestSubmissionsShortArrays(t *testing.T) {
	sub := &Submissions{CIK: "0000000001"}
	sub.FilingIndex.Recent = RecentFilings{
		AccessionNumber: []string{"0000000001-24-000001"},
		Form:            []string{"10-K"},
	}
	filings := sub.Filings(nil, 0)
	require.Len(t, filings, 1)
	assert.Zero(t, filings[0].Size)
	assert.True(t, filings[0].FilingDate.IsZero())
}

func TestTickerDirectory(t *testing.T) {
	var dir TickerDirectory
	require.NoError(t, json.Unmarshal([]byte(`{
		"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
		"1": {"cik_str": 789019, "ticker": "MSFT", "title": "MICROSOFT CORP"},
		"10": {"cik_str": 1045810, "ticker": "NVDA", "title": "NVIDIA CORP"},
		"2": {"cik_str": 1652044, "ticker": "GOOGL", "title": "Alphabet Inc."}
	}`), &dir))

	entry, ok := dir.Lookup("msft")
	require.True(t, ok)
	assert.Equal(t, CIK("0000789019"), entry.CIK)

	_, ok = dir.Lookup("ZZZZ")
	assert.False(t, ok)

	entries := dir.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL", "NVDA"},
		[]string{entries[0].Ticker, entries[1].Ticker, entries[2].Ticker, entries[3].Ticker})
}

func TestFrameHelpers(t *testing.T) {
	var frame Frame
	require.NoError(t, json.Unmarshal([]byte(`{
		"taxonomy": "us-gaap", "tag": "Assets", "ccp": "CY2023Q4I", "uom": "USD", "pts": 2,
		"data": [
			{"accn": "a", "cik": 320193, "entityName": "Apple Inc.", "loc": "US-CA", "end": "2023-12-30", "val": 353514000000},
			{"accn": "b", "cik": 789019, "entityName": "MICROSOFT CORP", "loc": "US-WA", "end": "2023-12-31", "val": 470558000000}
		]
	}`), &frame))

	assert.Equal(t, []float64{353514000000, 470558000000}, frame.Values())
	rec, ok := frame.Find("0000789019")
	require.True(t, ok)
	assert.Equal(t, "MICROSOFT CORP", rec.EntityName)
	_, ok = frame.Find("0000000001")
	assert.False(t, ok)
}
