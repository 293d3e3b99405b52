package processor

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

const dateLayout = "2006-01-02"

// Statement is a standardized financial statement: one row per period end
// (ascending), one column per line item. A cell is nil when the company did
// not report the item for that period or a derived value could not be
// computed.
type Statement struct {
	Kind       Kind
	CIK        string
	EntityName string
	Checks     []IntegrityCheck

	periods []time.Time
	columns []string
	cells   map[string][]*float64
}

func newStatement(kind Kind, periods []time.Time) *Statement {
	return &Statement{
		Kind:    kind,
		periods: periods,
		cells:   make(map[string][]*float64),
	}
}

func (s *Statement) addColumn(name string, values []*float64) {
	if _, exists := s.cells[name]; !exists {
		s.columns = append(s.columns, name)
	}
	s.cells[name] = values
}

// Len is the number of periods.
func (s *Statement) Len() int { return len(s.periods) }

// Periods returns the period end dates in ascending order.
func (s *Statement) Periods() []time.Time { return slices.Clone(s.periods) }

// Columns returns reported line items in template order followed by
// derived ones.
func (s *Statement) Columns() []string { return slices.Clone(s.columns) }

// HasColumn reports whether a column exists.
func (s *Statement) HasColumn(name string) bool {
	_, ok := s.cells[name]
	return ok
}

// Column returns a copy of one column, or nil if it does not exist.
func (s *Statement) Column(name string) []*float64 {
	col, ok := s.cells[name]
	if !ok {
		return nil
	}
	return slices.Clone(col)
}

// Value returns the cell at period index i.
func (s *Statement) Value(name string, i int) (float64, bool) {
	col, ok := s.cells[name]
	if !ok || i < 0 || i >= len(col) || col[i] == nil {
		return 0, false
	}
	return *col[i], true
}

// Latest returns the most recent non-empty value of a column and its period.
func (s *Statement) Latest(name string) (float64, time.Time, bool) {
	col := s.cells[name]
	for i := len(col) - 1; i >= 0; i-- {
		if col[i] != nil {
			return *col[i], s.periods[i], true
		}
	}
	return 0, time.Time{}, false
}

// Row is one period of a statement, used for JSON and export.
type Row struct {
	Period string             `json:"period"`
	Values map[string]float64 `json:"values"`
}

// Rows returns the statement period by period, omitting empty cells.
func (s *Statement) Rows() []Row {
	rows := make([]Row, len(s.periods))
	for i, p := range s.periods {
		values := make(map[string]float64)
		for _, c := range s.columns {
			if v, ok := s.Value(c, i); ok {
				values[c] = v
			}
		}
		rows[i] = Row{Period: p.Format(dateLayout), Values: values}
	}
	return rows
}

type statementJSON struct {
	Kind       Kind             `json:"kind"`
	CIK        string           `json:"cik,omitempty"`
	EntityName string           `json:"entity_name,omitempty"`
	Columns    []string         `json:"columns"`
	Rows       []Row            `json:"rows"`
	Checks     []IntegrityCheck `json:"checks,omitempty"`
}

func (s *Statement) MarshalJSON() ([]byte, error) {
	return json.Marshal(statementJSON{
		Kind:       s.Kind,
		CIK:        s.CIK,
		EntityName: s.EntityName,
		Columns:    s.Columns(),
		Rows:       s.Rows(),
		Checks:     s.Checks,
	})
}

func (s *Statement) UnmarshalJSON(b []byte) error {
	var raw statementJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	periods := make([]time.Time, len(raw.Rows))
	for i, r := range raw.Rows {
		p, err := time.Parse(dateLayout, r.Period)
		if err != nil {
			return fmt.Errorf("invalid period %q: %w", r.Period, err)
		}
		periods[i] = p
	}

	out := newStatement(raw.Kind, periods)
	out.CIK = raw.CIK
	out.EntityName = raw.EntityName
	out.Checks = raw.Checks
	for _, c := range raw.Columns {
		col := make([]*float64, len(raw.Rows))
		for i, r := range raw.Rows {
			if v, ok := r.Values[c]; ok {
				col[i] = &v
			}
		}
		out.addColumn(c, col)
	}
	*s = *out
	return nil
}
