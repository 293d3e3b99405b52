// Package processor turns SEC company facts into standardized balance
// sheets, income statements and cash flow statements.
package processor

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/ingest"
	"sec_insights/pkg/core/logging"
	"sec_insights/pkg/core/templates"
)

// Kind identifies a statement type.
type Kind string

const (
	BalanceSheet    Kind = "balance_sheet"
	IncomeStatement Kind = "income_statement"
	CashFlow        Kind = "cash_flow"
)

// Kinds lists the supported statements in presentation order.
func Kinds() []Kind {
	return []Kind{BalanceSheet, IncomeStatement, CashFlow}
}

// ParseKind accepts "balance_sheet" or "balance-sheet" style names.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := definitions[k]; !ok {
		return "", fmt.Errorf("%w: unknown statement %q", errs.ErrInvalidArgument, s)
	}
	return k, nil
}

const usGAAP = "us-gaap"
const usd = "USD"

// Processor builds one kind of statement.
type Processor struct {
	kind  Kind
	def   definition
	forms map[string]bool
	log   logrus.FieldLogger
}

// Option customizes a Processor.
type Option func(*Processor)

// WithForms keeps only facts reported on the given forms ("10-K", "10-Q").
func WithForms(forms ...string) Option {
	return func(p *Processor) {
		if len(forms) == 0 {
			p.forms = nil
			return
		}
		p.forms = make(map[string]bool, len(forms))
		for _, f := range forms {
			p.forms[f] = true
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Processor) { p.log = l }
}

// New creates a processor for kind.
func New(kind Kind, opts ...Option) (*Processor, error) {
	def, ok := definitions[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown statement %q", errs.ErrInvalidArgument, kind)
	}
	p := &Processor{kind: kind, def: def}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logging.OrDefault(p.log).WithField("statement", string(kind))
	return p, nil
}

func mustNew(kind Kind, opts ...Option) *Processor {
	p, err := New(kind, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func NewBalanceSheet(opts ...Option) *Processor    { return mustNew(BalanceSheet, opts...) }
func NewIncomeStatement(opts ...Option) *Processor { return mustNew(IncomeStatement, opts...) }
func NewCashFlow(opts ...Option) *Processor        { return mustNew(CashFlow, opts...) }

// Kind returns the statement kind.
func (p *Processor) Kind() Kind { return p.kind }

// Template returns the tag mapping used by the processor.
func (p *Processor) Template() *templates.Template { return p.def.template }

// Process builds the statement from company facts. It fails with
// errs.ErrProcessing when there is no US GAAP data, no fact maps to the
// statement, or a required line item is missing.
func (p *Processor) Process(facts *ingest.CompanyFacts) (*Statement, error) {
	st, err := p.process(facts)
	if err != nil {
		p.log.WithError(err).Error("Error processing statement")
		return nil, err
	}
	return st, nil
}

func (p *Processor) process(facts *ingest.CompanyFacts) (*Statement, error) {
	gaap, ok := facts.Taxonomy(usGAAP)
	if !ok {
		return nil, fmt.Errorf("%w: no US GAAP data found in company facts", errs.ErrProcessing)
	}
	tmpl := p.def.template

	// tag -> period end -> value
	series := make(map[string]map[string]float64)
	for tag, concept := range gaap {
		if !tmpl.Has(tag) {
			continue
		}
		byEnd := p.latestByEnd(concept.Units[usd])
		if len(byEnd) > 0 {
			series[tag] = byEnd
		}
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no data found for %s", errs.ErrProcessing, tmpl.Name())
	}

	periods, keys := p.periodIndex(series)
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no data found for %s", errs.ErrProcessing, tmpl.Name())
	}
	st := newStatement(p.kind, periods)
	st.CIK = facts.CIK.String()
	st.EntityName = facts.EntityName

	// Several tags may feed one line item; the first in template order that
	// reports a period wins.
	for _, name := range tmpl.Columns() {
		var col []*float64
		for _, tag := range tmpl.TagsFor(name) {
			byEnd, ok := series[tag]
			if !ok {
				continue
			}
			if col == nil {
				col = make([]*float64, len(keys))
			}
			for i, k := range keys {
				if col[i] != nil {
					continue
				}
				if v, ok := byEnd[k]; ok {
					col[i] = &v
				}
			}
		}
		if col != nil {
			st.addColumn(name, col)
		}
	}

	var missing []string
	for _, field := range p.def.required {
		if !st.HasColumn(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s missing required fields: %s", errs.ErrProcessing, tmpl.Name(), strings.Join(missing, ", "))
	}

	for _, d := range p.def.derived {
		d.apply(st)
	}
	if p.def.check != nil {
		st.Checks = p.def.check(st)
		for _, c := range st.Checks {
			if c.Status == StatusMaterialMismatch {
				p.log.WithFields(logrus.Fields{
					"check":      c.Name,
					"period":     c.Period,
					"reported":   c.Reported,
					"calculated": c.Calculated,
				}).Warn("Reported total does not match sum of components")
			}
		}
	}

	p.log.WithFields(logrus.Fields{"periods": st.Len(), "columns": len(st.columns)}).Debug("Processed statement")
	return st, nil
}

// latestByEnd collapses a fact list to one value per period end. Restated
// periods keep the most recently filed value. Facts filed together for the
// same end (a 10-Q's three-month and year-to-date figures) keep the shortest
// span, so every line item of a period covers the same duration; equal spans
// keep the later entry.
func (p *Processor) latestByEnd(list []ingest.Fact) map[string]float64 {
	type pick struct {
		val   float64
		filed string
		span  time.Duration
	}
	picked := make(map[string]pick)
	for _, f := range list {
		if f.End == "" {
			continue
		}
		if p.forms != nil && !p.forms[f.Form] {
			continue
		}
		cur := pick{val: f.Val, filed: f.Filed, span: span(f)}
		if prev, seen := picked[f.End]; seen {
			if f.Filed < prev.filed {
				continue
			}
			if f.Filed == prev.filed && cur.span > prev.span {
				continue
			}
		}
		picked[f.End] = cur
	}

	out := make(map[string]float64, len(picked))
	for end, pk := range picked {
		out[end] = pk.val
	}
	return out
}

// span is a fact's duration; instant facts and unparseable dates give zero.
func span(f ingest.Fact) time.Duration {
	if f.Start == "" {
		return 0
	}
	start, end := ingest.ParseDate(f.Start), ingest.ParseDate(f.End)
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	return end.Sub(start)
}

// periodIndex returns the union of period ends across all series, sorted
// ascending, along with the matching raw keys.
func (p *Processor) periodIndex(series map[string]map[string]float64) ([]time.Time, []string) {
	seen := make(map[string]time.Time)
	for _, byEnd := range series {
		for end := range byEnd {
			if _, ok := seen[end]; ok {
				continue
			}
			t, err := time.Parse(dateLayout, end)
			if err != nil {
				p.log.WithField("end", end).Warn("Skipping fact with unparseable period end")
				continue
			}
			seen[end] = t
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return seen[keys[i]].Before(seen[keys[j]]) })

	periods := make([]time.Time, len(keys))
	for i, k := range keys {
		periods[i] = seen[k]
	}
	return periods, keys
}

// ProcessAll builds every statement kind. Statements that fail are reported
// in the error map and absent from the result.
func ProcessAll(facts *ingest.CompanyFacts, opts ...Option) (map[Kind]*Statement, map[Kind]error) {
	out := make(map[Kind]*Statement)
	failures := make(map[Kind]error)
	for _, kind := range Kinds() {
		st, err := mustNew(kind, opts...).Process(facts)
		if err != nil {
			failures[kind] = err
			continue
		}
		out[kind] = st
	}
	return out, failures
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
