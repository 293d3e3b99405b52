package ingest

// XBRL JSON API documents (companyfacts, companyconcept, frames).

// CompanyFacts is /api/xbrl/companyfacts/CIK##########.json: every concept a
// company has reported, by taxonomy then tag.
type CompanyFacts struct {
	CIK        CIK                           `json:"cik"`
	EntityName string                        `json:"entityName"`
	Facts      map[string]map[string]Concept `json:"facts"`
}

// Concept is one tag's history, keyed by unit of measure ("USD", "shares").
type Concept struct {
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Units       map[string][]Fact `json:"units"`
}

// Fact is a single reported value. Start is empty for instantaneous values
// such as balance sheet items.
type Fact struct {
	Start string  `json:"start,omitempty"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	Accn  string  `json:"accn"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
	Frame string  `json:"frame,omitempty"`
}

// Taxonomy returns the tags of one taxonomy and whether it was reported.
func (f *CompanyFacts) Taxonomy(name string) (map[string]Concept, bool) {
	if f == nil {
		return nil, false
	}
	t, ok := f.Facts[name]
	return t, ok
}

// ConceptSeries is /api/xbrl/companyconcept/CIK##########/{taxonomy}/{tag}.json.
type ConceptSeries struct {
	CIK         CIK               `json:"cik"`
	Taxonomy    string            `json:"taxonomy"`
	Tag         string            `json:"tag"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	EntityName  string            `json:"entityName"`
	Units       map[string][]Fact `json:"units"`
}

// Frame is /api/xbrl/frames/{taxonomy}/{tag}/{unit}/{period}.json: one value
// per reporting company for a single calendar period.
type Frame struct {
	Taxonomy    string        `json:"taxonomy"`
	Tag         string        `json:"tag"`
	CCP         string        `json:"ccp"`
	UOM         string        `json:"uom"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Pts         int           `json:"pts"`
	Data        []FrameRecord `json:"data"`
}

// FrameRecord is one company's value within a frame.
type FrameRecord struct {
	Accn       string  `json:"accn"`
	CIK        CIK     `json:"cik"`
	EntityName string  `json:"entityName"`
	Loc        string  `json:"loc"`
	End        string  `json:"end"`
	Val        float64 `json:"val"`
}

// Values returns the frame's values in record order.
func (f *Frame) Values() []float64 {
	if f == nil {
		return nil
	}
	vals := make([]float64, len(f.Data))
	for i, r := range f.Data {
		vals[i] = r.Val
	}
	return vals
}

// Find returns the record for a normalized CIK.
func (f *Frame) Find(cik CIK) (FrameRecord, bool) {
	if f == nil {
		return FrameRecord{}, false
	}
	for _, r := range f.Data {
		if r.CIK == cik {
			return r, true
		}
	}
	return FrameRecord{}, false
}
