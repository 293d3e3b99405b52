package processor

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/ingest"
)

// ConceptRow is one fact of a concept series with parsed dates.
type ConceptRow struct {
	Unit  string    `json:"unit"`
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end"`
	Val   float64   `json:"val"`
	Accn  string    `json:"accn"`
	FY    int       `json:"fy"`
	FP    string    `json:"fp"`
	Form  string    `json:"form"`
	Filed time.Time `json:"filed"`
	Frame string    `json:"frame,omitempty"`
}

// ConceptTable flattens a concept series across all of its units, ordered
// by unit name and then as reported. Unparseable dates are left zero.
func ConceptTable(series *ingest.ConceptSeries) ([]ConceptRow, error) {
	if series == nil || series.Units == nil {
		return nil, fmt.Errorf("%w: no units data found in concept data", errs.ErrProcessing)
	}

	units := make([]string, 0, len(series.Units))
	for u := range series.Units {
		units = append(units, u)
	}
	sort.Strings(units)

	var rows []ConceptRow
	for _, u := range units {
		for _, f := range series.Units[u] {
			rows = append(rows, ConceptRow{
				Unit:  u,
				Start: ingest.ParseDate(f.Start),
				End:   ingest.ParseDate(f.End),
				Val:   f.Val,
				Accn:  f.Accn,
				FY:    f.FY,
				FP:    f.FP,
				Form:  f.Form,
				Filed: ingest.ParseDate(f.Filed),
				Frame: f.Frame,
			})
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data found in concept", errs.ErrProcessing)
	}
	return rows, nil
}

// FilterUnit keeps rows reported in one unit.
func FilterUnit(rows []ConceptRow, unit string) []ConceptRow {
	var out []ConceptRow
	for _, r := range rows {
		if r.Unit == unit {
			out = append(out, r)
		}
	}
	return out
}

// FrameTable returns the records of a frame.
func FrameTable(frame *ingest.Frame) ([]ingest.FrameRecord, error) {
	if frame == nil || frame.Data == nil {
		return nil, fmt.Errorf("%w: no data found in frame", errs.ErrProcessing)
	}
	return slices.Clone(frame.Data), nil
}

// DefaultLag compares quarterly data with the same quarter a year earlier.
const DefaultLag = 4

// PeriodChange is a value with its change against the previous row and
// against the row lag positions back. Changes are nil when there is no such
// row, and percent changes are nil when the base is zero.
type PeriodChange struct {
	End              time.Time `json:"end"`
	Value            float64   `json:"value"`
	Change           *float64  `json:"change,omitempty"`
	PctChange        *float64  `json:"pct_change,omitempty"`
	ChangeFromLag    *float64  `json:"change_from_lag,omitempty"`
	PctChangeFromLag *float64  `json:"pct_change_from_lag,omitempty"`
}

// PeriodMetrics orders rows by end date and computes period-over-period
// changes. lag <= 0 uses DefaultLag.
func PeriodMetrics(rows []ConceptRow, lag int) []PeriodChange {
	if lag <= 0 {
		lag = DefaultLag
	}
	sorted := slices.Clone(rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].End.Before(sorted[j].End) })

	out := make([]PeriodChange, len(sorted))
	for i, r := range sorted {
		pc := PeriodChange{End: r.End, Value: r.Val}
		if i >= 1 {
			pc.Change, pc.PctChange = changeFrom(r.Val, sorted[i-1].Val)
		}
		if i >= lag {
			pc.ChangeFromLag, pc.PctChangeFromLag = changeFrom(r.Val, sorted[i-lag].Val)
		}
		out[i] = pc
	}
	return out
}

func changeFrom(current, prior float64) (*float64, *float64) {
	diff := current - prior
	pct, ok := GrowthPct(current, prior)
	if !ok {
		return &diff, nil
	}
	return &diff, &pct
}

// GrowthPct calculates percentage change between two values. Growth from a
// zero base is undefined.
func GrowthPct(current, prior float64) (float64, bool) {
	if prior == 0 {
		return 0, false
	}
	return (current - prior) / prior * 100, true
}
