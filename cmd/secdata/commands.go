package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/export"
	"sec_insights/pkg/core/industry"
	"sec_insights/pkg/core/ingest"
	"sec_insights/pkg/core/processor"
	"sec_insights/pkg/core/store"
)

var printer = message.NewPrinter(language.English)

// keyMetrics are ranked by analyze-peers after the position table.
var keyMetrics = []string{"Assets", "Revenue", "NetIncome"}

func companyInfo(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "company-info")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	cik, err := requireArg("company-info", pos, "CIK")
	if err != nil {
		return err
	}

	sub, err := a.client.CompanySubmissions(ctx, cik)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "\nCompany Information:")
	fmt.Fprintf(a.out, "Name: %s\n", sub.Name)
	fmt.Fprintf(a.out, "CIK: %s\n", sub.CIK)
	if len(sub.Tickers) > 0 {
		fmt.Fprintf(a.out, "Tickers: %s\n", strings.Join(sub.Tickers, ", "))
	}
	if len(sub.Exchanges) > 0 {
		fmt.Fprintf(a.out, "Exchanges: %s\n", strings.Join(sub.Exchanges, ", "))
	}
	if sub.SIC != "" {
		fmt.Fprintf(a.out, "SIC: %s %s\n", sub.SIC, sub.SICDescription)
	}

	recent := sub.RecentFilings(5)
	if len(recent) > 0 {
		fmt.Fprintln(a.out, "\nRecent Filings:")
		printFilings(a, recent)
	}
	return nil
}

func printFilings(a *app, filings []ingest.Filing) {
	for _, f := range filings {
		date := ""
		if !f.FilingDate.IsZero() {
			date = f.FilingDate.Format("2006-01-02")
		}
		fmt.Fprintf(a.out, "%-10s  %-8s  %s  %s\n", date, f.Form, f.AccessionNumber, f.URL)
	}
}

func getConcept(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "get-concept")
	concept := fs.String("concept", "Assets", "XBRL tag")
	taxonomy := fs.String("taxonomy", "us-gaap", "XBRL taxonomy")
	unit := fs.String("unit", "", "only show this unit, with period changes")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	cik, err := requireArg("get-concept", pos, "CIK")
	if err != nil {
		return err
	}

	series, err := a.client.CompanyConcept(ctx, cik, *taxonomy, *concept)
	if err != nil {
		return err
	}
	rows, err := processor.ConceptTable(series)
	if err != nil {
		return err
	}

	if *unit != "" {
		changes := processor.PeriodMetrics(processor.FilterUnit(rows, *unit), processor.DefaultLag)
		fmt.Fprintf(a.out, "\nValues in %s:\n", *unit)
		for _, c := range changes {
			line := printer.Sprintf("%s: %v", c.End.Format("2006-01-02"), c.Value)
			if c.PctChange != nil {
				line += printer.Sprintf(" (%+.1f%%)", *c.PctChange)
			}
			fmt.Fprintln(a.out, line)
		}
		return nil
	}

	current := ""
	for _, r := range rows {
		if r.Unit != current {
			current = r.Unit
			fmt.Fprintf(a.out, "\nValues in %s:\n", current)
		}
		fmt.Fprintln(a.out, printer.Sprintf("%s: %v", r.End.Format("2006-01-02"), r.Val))
	}
	return nil
}

func factsSummary(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "facts")
	taxonomy := fs.String("taxonomy", "", "list the tags of one taxonomy")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	cik, err := requireArg("facts", pos, "CIK")
	if err != nil {
		return err
	}

	facts, err := a.client.CompanyFacts(ctx, cik)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%s (CIK %s)\n", facts.EntityName, facts.CIK)

	if *taxonomy != "" {
		tags, ok := facts.Taxonomy(*taxonomy)
		if !ok {
			return fmt.Errorf("%w: no %s facts reported", errs.ErrInvalidArgument, *taxonomy)
		}
		names := make([]string, 0, len(tags))
		for name := range tags {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(a.out, "%s: %s\n", name, tags[name].Label)
		}
		return nil
	}

	names := make([]string, 0, len(facts.Facts))
	for name := range facts.Facts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.out, "%s: %d concepts\n", name, len(facts.Facts[name]))
	}
	return nil
}

func processStatements(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "process-statements")
	format := fs.String("export", "", "write statements as xlsx or csv")
	save := fs.Bool("save", false, "store snapshots in the database")
	forms := fs.String("forms", "", "only use facts from these forms, e.g. 10-K")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	cik, err := requireArg("process-statements", pos, "CIK")
	if err != nil {
		return err
	}
	switch *format {
	case "", "xlsx", "csv":
	default:
		return fmt.Errorf("%w: export must be xlsx or csv, got %q", errs.ErrInvalidArgument, *format)
	}

	facts, err := a.client.CompanyFacts(ctx, cik)
	if err != nil {
		return err
	}
	statements, failures := processor.ProcessAll(facts,
		processor.WithForms(splitList(*forms)...),
		processor.WithLogger(a.log),
	)
	if len(statements) == 0 {
		return fmt.Errorf("%w: no statements could be built for %s", errs.ErrProcessing, cik)
	}

	for _, kind := range processor.Kinds() {
		title := export.SheetName(kind)
		if err := failures[kind]; err != nil {
			fmt.Fprintf(a.out, "%s: %v\n", title, err)
			continue
		}
		st := statements[kind]
		periods := st.Periods()
		if len(periods) == 0 {
			fmt.Fprintf(a.out, "%s: no periods\n", title)
			continue
		}
		fmt.Fprintf(a.out, "%s: %d periods, %d line items, latest %s\n",
			title, st.Len(), len(st.Columns()), periods[len(periods)-1].Format("2006-01-02"))
		for _, c := range st.Checks {
			if c.Status != processor.StatusMatch {
				fmt.Fprintln(a.out, printer.Sprintf("  %s %s: reported %.0f, calculated %.0f (%s)", c.Name, c.Period, c.Reported, c.Calculated, c.Status))
			}
		}
	}

	norm, err := ingest.NormalizeCIK(cik)
	if err != nil {
		return err
	}
	switch *format {
	case "xlsx":
		path := export.FileName(a.cfg.Output.Dir, norm, "xlsx")
		if err := export.WriteWorkbook(path, statements); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Wrote %s\n", path)
	case "csv":
		for _, kind := range processor.Kinds() {
			st, ok := statements[kind]
			if !ok {
				continue
			}
			path := export.StatementFileName(a.cfg.Output.Dir, norm, kind, "csv")
			if err := writeCSVFile(path, st); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %s\n", path)
		}
	}

	if *save {
		repo, err := a.repository(ctx)
		if err != nil {
			return err
		}
		for _, kind := range processor.Kinds() {
			st, ok := statements[kind]
			if !ok {
				continue
			}
			id, err := repo.SaveStatement(ctx, norm, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved %s snapshot %s\n", kind, id)
		}
	}

	fmt.Fprintln(a.out, "Financial statements processed successfully")
	return nil
}

func writeCSVFile(path string, st *processor.Statement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteCSV(f, st); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func analyzePeers(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "analyze-peers")
	year := fs.Int("year", time.Now().Year()-1, "calendar year")
	quarter := fs.Int("quarter", 0, "1-4, or 0 for the full year")
	metrics := fs.String("metrics", "", "comma separated metrics (default all)")
	top := fs.Int("top", 5, "companies listed per key metric")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	cik, err := requireArg("analyze-peers", pos, "CIK")
	if err != nil {
		return err
	}

	sub, err := a.client.CompanySubmissions(ctx, cik)
	if err != nil {
		return err
	}
	analyzer := industry.New(a.client, industry.WithLogger(a.log))
	positions, err := analyzer.AnalyzeCompanyPosition(ctx, cik, *year, *quarter, splitList(*metrics))
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		fmt.Fprintln(a.out, "No industry data available for analysis")
		return nil
	}

	name := sub.Name
	if name == "" {
		name = cik
	}
	fmt.Fprintf(a.out, "\nIndustry Analysis for %s (%s)\n", name, industry.PeriodLabel(*year, *quarter))
	fmt.Fprintln(a.out, strings.Repeat("=", 50))
	for _, p := range positions {
		fmt.Fprintln(a.out, printer.Sprintf("%s: %.1fth percentile (value %.0f, median %.0f, %d companies)",
			p.Metric, p.Percentile, p.CompanyValue, p.IndustryMedian, p.NumCompanies))
	}

	for _, metric := range keyMetrics {
		rankings, err := analyzer.PeerRankings(ctx, metric, *year, *quarter, *top)
		if err != nil {
			a.log.WithError(err).WithField("metric", metric).Warn("Skipping rankings")
			continue
		}
		fmt.Fprintf(a.out, "\nTop %d Companies by %s:\n", *top, metric)
		for _, r := range rankings {
			fmt.Fprintf(a.out, "%s: %s\n", r.EntityName, r.Formatted)
		}
	}
	return nil
}

func topCompanies(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "top-companies")
	year := fs.Int("year", time.Now().Year()-1, "calendar year")
	quarter := fs.Int("quarter", 0, "1-4, or 0 for the full year")
	top := fs.Int("top", 10, "number of companies")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	metric, err := requireArg("top-companies", pos, "metric")
	if err != nil {
		return err
	}

	analyzer := industry.New(a.client, industry.WithLogger(a.log))
	rankings, err := analyzer.PeerRankings(ctx, metric, *year, *quarter, *top)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\nTop companies by %s:\n", metric)
	for _, r := range rankings {
		fmt.Fprintf(a.out, "%s: %s\n", r.EntityName, r.Formatted)
	}
	return nil
}

func lookup(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "lookup")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	ticker, err := requireArg("lookup", pos, "ticker")
	if err != nil {
		return err
	}
	cik, err := a.client.LookupCIK(ctx, ticker)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", strings.ToUpper(ticker), cik)
	return nil
}

func saveCompany(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "save-company")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	cik, err := requireArg("save-company", pos, "CIK")
	if err != nil {
		return err
	}

	repo, err := a.repository(ctx)
	if err != nil {
		return err
	}
	sub, err := a.client.CompanySubmissions(ctx, cik)
	if err != nil {
		return err
	}
	_, inserted, err := repo.SaveSubmissions(ctx, sub)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%d new filings)\n", sub.Name, inserted)
	return nil
}

func listFilings(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "list-filings")
	form := fs.String("form", "", "only this form type")
	limit := fs.Int("limit", 10, "maximum filings, 0 for all")
	stored := fs.Bool("stored", false, "read from the database instead of SEC")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	cik, err := requireArg("list-filings", pos, "CIK")
	if err != nil {
		return err
	}

	var filings []ingest.Filing
	if *stored {
		repo, err := a.repository(ctx)
		if err != nil {
			return err
		}
		filings, err = repo.QueryFilings(ctx, store.FilingFilter{CIK: cik, Form: *form, Limit: *limit})
		if err != nil {
			return err
		}
	} else {
		sub, err := a.client.CompanySubmissions(ctx, cik)
		if err != nil {
			return err
		}
		var forms []string
		if *form != "" {
			forms = []string{*form}
		}
		filings = sub.Filings(forms, *limit)
	}

	if len(filings) == 0 {
		fmt.Fprintln(a.out, "No filings found")
		return nil
	}
	printFilings(a, filings)
	return nil
}

func clearCache(_ context.Context, a *app, args []string) error {
	fs := newFlags(a, "clear-cache")
	pattern := fs.String("pattern", "", "only remove entries whose key contains this text")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	n, err := a.cache.Clear(*pattern)
	if err != nil {
		return fmt.Errorf("error clearing cache: %w", err)
	}
	fmt.Fprintf(a.out, "Cleared %d cached responses\n", n)
	return nil
}
