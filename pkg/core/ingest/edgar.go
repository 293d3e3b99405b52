// Package ingest provides SEC EDGAR API integration: the JSON data model of
// the submissions, XBRL and ticker endpoints, and a throttled, retrying,
// cached client for them.
// API Documentation: https://www.sec.gov/edgar/sec-api-documentation
package ingest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL    = "https://data.sec.gov"
	DefaultTickersURL = "https://www.sec.gov/files/company_tickers.json"
	SECFilingURL      = "https://www.sec.gov/Archives/edgar/data/%s/%s"

	// Required User-Agent per SEC guidelines
	DefaultUserAgent = "SECInsights/1.0 (contact@example.com)"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// CIK is a Central Index Key. SEC sends it either as a JSON number or as a
// string; it is always held in the 10-digit zero-padded form when valid.
type CIK string

// UnmarshalJSON accepts 320193, "320193" and "0000320193".
func (c *CIK) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*c = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = str
	}
	if norm, err := NormalizeCIK(s); err == nil {
		s = norm
	}
	*c = CIK(s)
	return nil
}

func (c CIK) String() string { return string(c) }

// =============================================================================
// SUBMISSIONS
// =============================================================================

// Submissions is the /submissions/CIK##########.json document.
type Submissions struct {
	CIK                  CIK      `json:"cik"`
	EntityType           string   `json:"entityType"`
	SIC                  string   `json:"sic"`
	SICDescription       string   `json:"sicDescription"`
	Name                 string   `json:"name"`
	Tickers              []string `json:"tickers"`
	Exchanges            []string `json:"exchanges"`
	EIN                  string   `json:"ein"`
	Category             string   `json:"category"`
	FiscalYearEnd        string   `json:"fiscalYearEnd"`
	StateOfIncorporation string   `json:"stateOfIncorporation"`

	FilingIndex FilingIndex `json:"filings"`
}

// FilingIndex contains the recent filing list. Older filings are paged into
// separate files that are not fetched here.
type FilingIndex struct {
	Recent RecentFilings `json:"recent"`
}

// RecentFilings holds arrays of filing attributes (parallel arrays).
type RecentFilings struct {
	AccessionNumber       []string `json:"accessionNumber"` // e.g., "0000320193-24-000123"
	FilingDate            []string `json:"filingDate"`
	ReportDate            []string `json:"reportDate"`
	AcceptanceDateTime    []string `json:"acceptanceDateTime"`
	Act                   []string `json:"act"`
	Form                  []string `json:"form"`
	FileNumber            []string `json:"fileNumber"`
	FilmNumber            []string `json:"filmNumber"`
	Items                 []string `json:"items"`
	CoreType              []string `json:"core_type"`
	Size                  []int64  `json:"size"`
	IsXBRL                []int    `json:"isXBRL"`
	IsInlineXBRL          []int    `json:"isInlineXBRL"`
	PrimaryDocument       []string `json:"primaryDocument"`
	PrimaryDocDescription []string `json:"primaryDocDescription"`
}

// Filing represents a single SEC filing (denormalized from parallel arrays).
// Dates that SEC leaves blank stay zero.
type Filing struct {
	AccessionNumber       string    `json:"accession_number"`
	FilingDate            time.Time `json:"filing_date"`
	ReportDate            time.Time `json:"report_date"`
	AcceptanceDateTime    time.Time `json:"acceptance_datetime"`
	Act                   string    `json:"act,omitempty"`
	Form                  string    `json:"form"`
	FileNumber            string    `json:"file_number,omitempty"`
	FilmNumber            string    `json:"film_number,omitempty"`
	Items                 string    `json:"items,omitempty"`
	CoreType              string    `json:"core_type,omitempty"`
	Size                  int64     `json:"size"`
	IsXBRL                bool      `json:"is_xbrl"`
	IsInlineXBRL          bool      `json:"is_inline_xbrl"`
	PrimaryDocument       string    `json:"primary_document"`
	PrimaryDocDescription string    `json:"primary_doc_description,omitempty"`
	URL                   string    `json:"url"`
}

func at[T any](s []T, i int) T {
	var zero T
	if i < len(s) {
		return s[i]
	}
	return zero
}

// ParseDate parses an EDGAR calendar date ("2024-02-06"). Blank or malformed
// input gives the zero time.
func ParseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseAcceptance parses acceptanceDateTime ("2024-02-06T16:30:12.000Z").
func ParseAcceptance(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02T15:04:05.000Z", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FilingURL builds the archive download URL:
// https://www.sec.gov/Archives/edgar/data/{cik}/{accession-no-dashes}/{document}
func FilingURL(cik, accession, document string) string {
	return fmt.Sprintf(SECFilingURL, strings.TrimLeft(cik, "0"), strings.ReplaceAll(accession, "-", "")+"/"+document)
}

// Filings extracts filings in SEC order (newest first), filtered by form type.
//
// forms: "10-K", "10-Q", "8-K", etc. Pass nil for all types.
// limit: Maximum number of filings to return (0 = no limit).
func (s *Submissions) Filings(forms []string, limit int) []Filing {
	recent := s.FilingIndex.Recent
	formSet := make(map[string]bool, len(forms))
	for _, f := range forms {
		formSet[f] = true
	}

	filings := make([]Filing, 0)
	for i := range recent.AccessionNumber {
		form := at(recent.Form, i)
		if len(forms) > 0 && !formSet[form] {
			continue
		}

		accession := recent.AccessionNumber[i]
		doc := at(recent.PrimaryDocument, i)
		filings = append(filings, Filing{
			AccessionNumber:       accession,
			FilingDate:            ParseDate(at(recent.FilingDate, i)),
			ReportDate:            ParseDate(at(recent.ReportDate, i)),
			AcceptanceDateTime:    ParseAcceptance(at(recent.AcceptanceDateTime, i)),
			Act:                   at(recent.Act, i),
			Form:                  form,
			FileNumber:            at(recent.FileNumber, i),
			FilmNumber:            at(recent.FilmNumber, i),
			Items:                 at(recent.Items, i),
			CoreType:              at(recent.CoreType, i),
			Size:                  at(recent.Size, i),
			IsXBRL:                at(recent.IsXBRL, i) == 1,
			IsInlineXBRL:          at(recent.IsInlineXBRL, i) == 1,
			PrimaryDocument:       doc,
			PrimaryDocDescription: at(recent.PrimaryDocDescription, i),
			URL:                   FilingURL(string(s.CIK), accession, doc),
		})

		if limit > 0 && len(filings) >= limit {
			break
		}
	}
	return filings
}

// RecentFilings returns the n most recent filings of any form.
func (s *Submissions) RecentFilings(n int) []Filing {
	return s.Filings(nil, n)
}

// FilingsByForm returns every recent filing of the given form.
func (s *Submissions) FilingsByForm(form string) []Filing {
	return s.Filings([]string{form}, 0)
}

// =============================================================================
// TICKERS
// =============================================================================

// TickerEntry is one row of company_tickers.json.
type TickerEntry struct {
	CIK    CIK    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// TickerDirectory is company_tickers.json:
// { "0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}, ... }
type TickerDirectory map[string]TickerEntry

// Lookup finds a ticker, case-insensitively.
func (d TickerDirectory) Lookup(ticker string) (TickerEntry, bool) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, entry := range d {
		if strings.ToUpper(entry.Ticker) == ticker {
			return entry, true
		}
	}
	return TickerEntry{}, false
}

// Entries returns the directory in SEC's row order.
func (d TickerDirectory) Entries() []TickerEntry {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})

	entries := make([]TickerEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, d[k])
	}
	return entries
}
