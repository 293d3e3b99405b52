// Package templates maps US GAAP XBRL tags to the canonical line items of
// the three primary financial statements.
//
// Each tag maps to exactly one line item. A line item may be fed by several
// tags because companies tag the same concept differently; the order of the
// entries is the priority used when more than one of them reports a period.
// Path is a descriptive grouping (assets > current_assets > inventory) and
// plays no part in the mapping.
package templates

import (
	"fmt"
	"slices"
)

// Entry maps one tag to a line item.
type Entry struct {
	Tag  string   `json:"tag"`
	Name string   `json:"name"`
	Path []string `json:"path"`
}

// Template is an immutable tag -> line item mapping for one statement.
type Template struct {
	name    string
	entries []Entry
	byTag   map[string]int
	columns []string
	byName  map[string][]string
}

func newTemplate(name string, entries []Entry) *Template {
	t := &Template{
		name:    name,
		entries: entries,
		byTag:   make(map[string]int, len(entries)),
		byName:  make(map[string][]string),
	}
	for i, e := range entries {
		if _, dup := t.byTag[e.Tag]; dup {
			panic(fmt.Sprintf("templates: %s maps tag %s twice", name, e.Tag))
		}
		t.byTag[e.Tag] = i
		if _, seen := t.byName[e.Name]; !seen {
			t.columns = append(t.columns, e.Name)
		}
		t.byName[e.Name] = append(t.byName[e.Name], e.Tag)
	}
	return t
}

// Name is the statement name, e.g. "balance sheet".
func (t *Template) Name() string { return t.name }

// Has reports whether tag belongs to this statement.
func (t *Template) Has(tag string) bool {
	_, ok := t.byTag[tag]
	return ok
}

// Canonical returns the line item a tag maps to.
func (t *Template) Canonical(tag string) (string, bool) {
	i, ok := t.byTag[tag]
	if !ok {
		return "", false
	}
	return t.entries[i].Name, true
}

// PathFor returns the grouping path of a tag, or nil when the tag is not
// part of the statement.
func (t *Template) PathFor(tag string) []string {
	i, ok := t.byTag[tag]
	if !ok {
		return nil
	}
	return slices.Clone(t.entries[i].Path)
}

// Tags lists every mapped tag in priority order.
func (t *Template) Tags() []string {
	tags := make([]string, len(t.entries))
	for i, e := range t.entries {
		tags[i] = e.Tag
	}
	return tags
}

// Columns lists the line items in statement order, each once.
func (t *Template) Columns() []string {
	return slices.Clone(t.columns)
}

// TagsFor lists the tags feeding a line item, highest priority first.
func (t *Template) TagsFor(name string) []string {
	return slices.Clone(t.byName[name])
}

// Entries returns a copy of the mapping.
func (t *Template) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = Entry{Tag: e.Tag, Name: e.Name, Path: slices.Clone(e.Path)}
	}
	return out
}

// BalanceSheet returns the balance sheet template.
func BalanceSheet() *Template { return balanceSheet }

// IncomeStatement returns the income statement template.
func IncomeStatement() *Template { return incomeStatement }

// CashFlow returns the cash flow statement template.
func CashFlow() *Template { return cashFlow }

func path(keys ...string) []string { return keys }
