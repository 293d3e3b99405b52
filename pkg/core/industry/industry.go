// Package industry compares companies against all SEC filers using the XBRL
// frames API: one value per company for a concept and calendar period.
package industry

import (
	"context"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/ingest"
	"sec_insights/pkg/core/logging"
)

// Metric is a comparable concept.
type Metric struct {
	Name string
	Tag  string
	Unit string
	// Balance sheet values are points in time, so their frames use the
	// instantaneous period (annual comparisons use the Q4 instant). Unlike a
	// plain tag/unit lookup, CY2024 for Assets is queried as CY2024Q4I.
	Instant bool
}

var registry = []Metric{
	{Name: "Assets", Tag: "Assets", Unit: "USD", Instant: true},
	{Name: "Revenue", Tag: "Revenues", Unit: "USD"},
	{Name: "NetIncome", Tag: "NetIncomeLoss", Unit: "USD"},
	{Name: "OperatingIncome", Tag: "OperatingIncomeLoss", Unit: "USD"},
	{Name: "EarningsPerShare", Tag: "EarningsPerShareDiluted", Unit: "USD-per-shares"},
}

// SupportedMetrics lists metric names in registry order.
func SupportedMetrics() []string {
	names := make([]string, len(registry))
	for i, m := range registry {
		names[i] = m.Name
	}
	return names
}

// LookupMetric finds a metric by name.
func LookupMetric(name string) (Metric, bool) {
	for _, m := range registry {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// FrameSource fetches frames. *ingest.Client implements it.
type FrameSource interface {
	Frames(ctx context.Context, q ingest.FrameQuery) (*ingest.Frame, error)
}

// Analyzer runs peer comparisons.
type Analyzer struct {
	source   FrameSource
	taxonomy string
	printer  *message.Printer
	log      logrus.FieldLogger
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Analyzer) { a.log = l }
}

// New creates an analyzer reading frames from source.
func New(source FrameSource, opts ...Option) *Analyzer {
	a := &Analyzer{
		source:   source,
		taxonomy: "us-gaap",
		printer:  message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = logging.OrDefault(a.log).WithField("component", "industry")
	return a
}

// MetricFrame is the frame fetched for one metric.
type MetricFrame struct {
	Metric string
	Frame  *ingest.Frame
}

// Position is a company's standing within one metric's frame.
type Position struct {
	Metric         string  `json:"metric"`
	CompanyValue   float64 `json:"company_value"`
	IndustryMedian float64 `json:"industry_median"`
	IndustryMean   float64 `json:"industry_mean"`
	Percentile     float64 `json:"percentile"`
	NumCompanies   int     `json:"num_companies"`
	Period         string  `json:"period"`
}

// Ranking is one row of a top-N list.
type Ranking struct {
	EntityName string  `json:"entity_name"`
	Value      float64 `json:"value"`
	Formatted  string  `json:"formatted"`
	CIK        string  `json:"cik"`
}

// resolve validates the request and returns the metrics to use, in the
// requested order. No metrics means all of them.
func resolve(quarter int, names []string) ([]Metric, error) {
	if quarter < 0 || quarter > 4 {
		return nil, fmt.Errorf("%w: quarter must be 0-4, got %d", errs.ErrInvalidArgument, quarter)
	}
	if len(names) == 0 {
		return append([]Metric(nil), registry...), nil
	}
	out := make([]Metric, 0, len(names))
	for _, n := range names {
		m, ok := LookupMetric(n)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported metric %q", errs.ErrInvalidArgument, n)
		}
		out = append(out, m)
	}
	return out, nil
}

func (a *Analyzer) query(m Metric, year, quarter int) ingest.FrameQuery {
	q := ingest.FrameQuery{
		Taxonomy:      a.taxonomy,
		Tag:           m.Tag,
		Unit:          m.Unit,
		Year:          year,
		Quarter:       quarter,
		Instantaneous: m.Instant,
	}
	if m.Instant && quarter == 0 {
		q.Quarter = 4
	}
	return q
}

// PeriodLabel renders a period as "FY2024" or "Q3 2024".
func PeriodLabel(year, quarter int) string {
	if quarter == 0 {
		return fmt.Sprintf("FY%d", year)
	}
	return fmt.Sprintf("Q%d %d", quarter, year)
}

// IndustryMetrics fetches the frame of every requested metric. A metric
// whose fetch fails is logged and left out; the others are still returned.
func (a *Analyzer) IndustryMetrics(ctx context.Context, year, quarter int, metrics []string) ([]MetricFrame, error) {
	resolved, err := resolve(quarter, metrics)
	if err != nil {
		return nil, err
	}

	out := make([]MetricFrame, 0, len(resolved))
	for _, m := range resolved {
		frame, err := a.source.Frames(ctx, a.query(m, year, quarter))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.log.WithError(err).WithField("metric", m.Name).Error("Error retrieving industry metric")
			continue
		}
		out = append(out, MetricFrame{Metric: m.Name, Frame: frame})
	}
	return out, nil
}

// AnalyzeCompanyPosition compares one company against every filer for each
// metric. Metrics the company did not report are skipped.
func (a *Analyzer) AnalyzeCompanyPosition(ctx context.Context, cik string, year, quarter int, metrics []string) ([]Position, error) {
	norm, err := ingest.NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}
	frames, err := a.IndustryMetrics(ctx, year, quarter, metrics)
	if err != nil {
		return nil, err
	}

	out := make([]Position, 0, len(frames))
	for _, mf := range frames {
		if mf.Frame == nil || len(mf.Frame.Data) == 0 {
			continue
		}
		rec, ok := mf.Frame.Find(ingest.CIK(norm))
		if !ok {
			a.log.WithFields(logrus.Fields{"metric": mf.Metric, "cik": norm}).Debug("Company not in frame")
			continue
		}

		values := stats.Float64Data(mf.Frame.Values())
		median, err := values.Median()
		if err != nil {
			a.log.WithError(err).WithField("metric", mf.Metric).Error("Error analyzing metric")
			continue
		}
		mean, err := values.Mean()
		if err != nil {
			a.log.WithError(err).WithField("metric", mf.Metric).Error("Error analyzing metric")
			continue
		}

		out = append(out, Position{
			Metric:         mf.Metric,
			CompanyValue:   rec.Val,
			IndustryMedian: median,
			IndustryMean:   mean,
			Percentile:     Percentile(values, rec.Val),
			NumCompanies:   len(values),
			Period:         PeriodLabel(year, quarter),
		})
	}
	return out, nil
}

// Percentile is the share of values less than or equal to v, scaled to
// 0-100. A company tied for the highest value is at 100.
func Percentile(values []float64, v float64) float64 {
	if len(values) == 0 {
		return 0
	}
	n := 0
	for _, x := range values {
		if x <= v {
			n++
		}
	}
	return float64(n) / float64(len(values)) * 100
}

// PeerRankings returns the topN companies by metric value, highest first.
// Equal values keep the frame's order. An empty frame gives an empty list.
func (a *Analyzer) PeerRankings(ctx context.Context, metric string, year, quarter, topN int) ([]Ranking, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top must be positive, got %d", errs.ErrInvalidArgument, topN)
	}
	resolved, err := resolve(quarter, []string{metric})
	if err != nil {
		return nil, err
	}
	m := resolved[0]

	frame, err := a.source.Frames(ctx, a.query(m, year, quarter))
	if err != nil {
		return nil, fmt.Errorf("failed to get peer rankings for %s: %w", metric, err)
	}
	if frame == nil || len(frame.Data) == 0 {
		return []Ranking{}, nil
	}

	records := append([]ingest.FrameRecord(nil), frame.Data...)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Val > records[j].Val })
	if len(records) > topN {
		records = records[:topN]
	}

	out := make([]Ranking, len(records))
	for i, r := range records {
		out[i] = Ranking{
			EntityName: r.EntityName,
			Value:      r.Val,
			Formatted:  a.format(m, r.Val),
			CIK:        r.CIK.String(),
		}
	}
	return out, nil
}

// format renders USD amounts as "$1,234" and anything else as "1,234.56".
func (a *Analyzer) format(m Metric, v float64) string {
	if m.Unit == "USD" {
		return a.printer.Sprintf("$%.0f", v)
	}
	return a.printer.Sprintf("%.2f", v)
}
