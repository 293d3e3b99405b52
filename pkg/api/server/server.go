// Package server exposes the SEC client, statement processors and industry
// analyzer over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/industry"
	"sec_insights/pkg/core/ingest"
	"sec_insights/pkg/core/logging"
	"sec_insights/pkg/core/processor"
	"sec_insights/pkg/core/store"
)

// Source is the subset of the SEC client the API serves from.
type Source interface {
	industry.FrameSource
	CompanySubmissions(ctx context.Context, cik string) (*ingest.Submissions, error)
	CompanyFacts(ctx context.Context, cik string) (*ingest.CompanyFacts, error)
	CompanyConcept(ctx context.Context, cik, taxonomy, tag string) (*ingest.ConceptSeries, error)
}

// CacheClearer removes cached responses.
type CacheClearer interface {
	Clear(pattern string) (int, error)
}

// StatementStore persists processed statements.
type StatementStore interface {
	SaveStatement(ctx context.Context, cik string, st *processor.Statement) (uuid.UUID, error)
	LatestStatement(ctx context.Context, cik string, kind processor.Kind) (*store.StatementSnapshot, error)
}

const defaultFilingLimit = 10

// Server holds the API dependencies.
type Server struct {
	source   Source
	analyzer *industry.Analyzer
	cache    CacheClearer
	store    StatementStore
	gatherer prometheus.Gatherer
	log      logrus.FieldLogger
}

// Option configures a Server.
type Option func(*Server)

// WithCache enables DELETE /api/cache.
func WithCache(c CacheClearer) Option {
	return func(s *Server) { s.cache = c }
}

// WithStore enables saving and reading statement snapshots.
func WithStore(st StatementStore) Option {
	return func(s *Server) { s.store = st }
}

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the logger. Defaults to the standard logrus logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a server backed by source.
func New(source Source, opts ...Option) *Server {
	s := &Server{
		source:   source,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, o := range opts {
		o(s)
	}
	s.log = logging.OrDefault(s.log).WithField("component", "api")
	s.analyzer = industry.New(source, industry.WithLogger(s.log))
	return s
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Route("/companies/{cik}", func(r chi.Router) {
			r.Get("/", s.company)
			r.Get("/filings", s.filings)
			r.Get("/concepts/{taxonomy}/{tag}", s.concept)
			r.Get("/statements/{kind}", s.statement)
			r.Get("/statements/{kind}/latest", s.latestStatement)
			r.Get("/position", s.position)
		})
		r.Get("/rankings/{metric}", s.rankings)
		r.Get("/templates/{kind}", s.template)
		r.Delete("/cache", s.clearCache)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("Handled request")
	})
}

// fail answers with {"error": msg} and the status for the error's kind.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// CompanySummary is the company header without the filing arrays.
type CompanySummary struct {
	CIK            string   `json:"cik"`
	Name           string   `json:"name"`
	EntityType     string   `json:"entity_type"`
	SIC            string   `json:"sic"`
	SICDescription string   `json:"sic_description"`
	FiscalYearEnd  string   `json:"fiscal_year_end"`
	Tickers        []string `json:"tickers"`
	Exchanges      []string `json:"exchanges"`
	FilingCount    int      `json:"filing_count"`
}

// GET /api/companies/{cik}
func (s *Server) company(w http.ResponseWriter, r *http.Request) {
	sub, err := s.source.CompanySubmissions(r.Context(), chi.URLParam(r, "cik"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, CompanySummary{
		CIK:            sub.CIK.String(),
		Name:           sub.Name,
		EntityType:     sub.EntityType,
		SIC:            sub.SIC,
		SICDescription: sub.SICDescription,
		FiscalYearEnd:  sub.FiscalYearEnd,
		Tickers:        sub.Tickers,
		Exchanges:      sub.Exchanges,
		FilingCount:    len(sub.FilingIndex.Recent.AccessionNumber),
	})
}

// GET /api/companies/{cik}/filings?form=10-K&limit=5
func (s *Server) filings(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultFilingLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sub, err := s.source.CompanySubmissions(r.Context(), chi.URLParam(r, "cik"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var forms []string
	if f := r.URL.Query().Get("form"); f != "" {
		forms = strings.Split(f, ",")
	}
	out := sub.Filings(forms, limit)
	if out == nil {
		out = []ingest.Filing{}
	}
	render.JSON(w, r, out)
}

// GET /api/companies/{cik}/concepts/{taxonomy}/{tag}?unit=USD
func (s *Server) concept(w http.ResponseWriter, r *http.Request) {
	series, err := s.source.CompanyConcept(r.Context(), chi.URLParam(r, "cik"), chi.URLParam(r, "taxonomy"), chi.URLParam(r, "tag"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := processor.ConceptTable(series)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := map[string]interface{}{
		"cik":         series.CIK.String(),
		"entity_name": series.EntityName,
		"taxonomy":    series.Taxonomy,
		"tag":         series.Tag,
		"label":       series.Label,
		"rows":        rows,
	}
	if unit := r.URL.Query().Get("unit"); unit != "" {
		filtered := processor.FilterUnit(rows, unit)
		resp["rows"] = filtered
		resp["changes"] = processor.PeriodMetrics(filtered, processor.DefaultLag)
	}
	render.JSON(w, r, resp)
}

// GET /api/companies/{cik}/statements/{kind}?save=true
func (s *Server) statement(w http.ResponseWriter, r *http.Request) {
	kind, err := processor.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := processor.New(kind, processor.WithLogger(s.log))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cik := chi.URLParam(r, "cik")
	facts, err := s.source.CompanyFacts(r.Context(), cik)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	st, err := p.Process(facts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if save, _ := strconv.ParseBool(r.URL.Query().Get("save")); save {
		if s.store == nil {
			s.fail(w, r, fmt.Errorf("%w: no database configured", errs.ErrInvalidArgument))
			return
		}
		id, err := s.store.SaveStatement(r.Context(), cik, st)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("X-Snapshot-ID", id.String())
	}
	render.JSON(w, r, st)
}

// GET /api/companies/{cik}/statements/{kind}/latest
func (s *Server) latestStatement(w http.ResponseWriter, r *http.Request) {
	kind, err := processor.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.store == nil {
		s.fail(w, r, fmt.Errorf("%w: no database configured", errs.ErrNotFound))
		return
	}
	snap, err := s.store.LatestStatement(r.Context(), chi.URLParam(r, "cik"), kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

// GET /api/templates/{kind}
func (s *Server) template(w http.ResponseWriter, r *http.Request) {
	kind, err := processor.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := processor.New(kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tmpl := p.Template()
	render.JSON(w, r, map[string]interface{}{
		"name":    tmpl.Name(),
		"columns": tmpl.Columns(),
		"entries": tmpl.Entries(),
	})
}

// GET /api/companies/{cik}/position?year=2023&quarter=0&metrics=Revenue,NetIncome
func (s *Server) position(w http.ResponseWriter, r *http.Request) {
	year, quarter, err := period(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	positions, err := s.analyzer.AnalyzeCompanyPosition(r.Context(), chi.URLParam(r, "cik"), year, quarter, listParam(r, "metrics"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, positions)
}

// GET /api/rankings/{metric}?year=2023&quarter=0&top=10
func (s *Server) rankings(w http.ResponseWriter, r *http.Request) {
	year, quarter, err := period(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	top, err := intParam(r, "top", 10)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rankings, err := s.analyzer.PeerRankings(r.Context(), chi.URLParam(r, "metric"), year, quarter, top)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, rankings)
}

// DELETE /api/cache?pattern=CompanyFacts
func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.fail(w, r, fmt.Errorf("%w: cache disabled", errs.ErrNotFound))
		return
	}
	pattern := r.URL.Query().Get("pattern")
	n, err := s.cache.Clear(pattern)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.WithFields(logrus.Fields{"pattern": pattern, "removed": n}).Info("Cleared cache")
	render.JSON(w, r, map[string]interface{}{"removed": n, "pattern": pattern})
}

// period reads year (required) and quarter (default 0, the full year).
func period(r *http.Request) (int, int, error) {
	if r.URL.Query().Get("year") == "" {
		return 0, 0, fmt.Errorf("%w: year is required", errs.ErrInvalidArgument)
	}
	year, err := intParam(r, "year", 0)
	if err != nil {
		return 0, 0, err
	}
	quarter, err := intParam(r, "quarter", 0)
	if err != nil {
		return 0, 0, err
	}
	return year, quarter, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errs.ErrInvalidArgument, name, raw)
	}
	return v, nil
}

func listParam(r *http.Request, name string) []string {
	var out []string
	for _, v := range strings.Split(r.URL.Query().Get(name), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
