// Command secdata queries SEC EDGAR from the command line: company
// information, XBRL concepts, standardized statements and peer comparisons.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"sec_insights/pkg/config"
	"sec_insights/pkg/core/cache"
	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/ingest"
	"sec_insights/pkg/core/logging"
	"sec_insights/pkg/core/metrics"
	"sec_insights/pkg/core/store"
)

// app is what every subcommand runs against.
type app struct {
	cfg    *config.Config
	log    logrus.FieldLogger
	cache  *cache.Cache
	client *ingest.Client
	out    io.Writer

	pool *pgxpool.Pool
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"company-info":       {"CIK", "Get company information and recent filings", companyInfo},
	"get-concept":        {"CIK [-concept Assets] [-taxonomy us-gaap] [-unit USD]", "Get specific financial concept data", getConcept},
	"facts":              {"CIK [-taxonomy us-gaap]", "Summarize the XBRL facts a company has reported", factsSummary},
	"process-statements": {"CIK [-export xlsx|csv] [-save] [-forms 10-K,10-Q]", "Process company financial statements", processStatements},
	"analyze-peers":      {"CIK [-year N] [-quarter N] [-metrics a,b] [-top N]", "Analyze company against industry peers", analyzePeers},
	"top-companies":      {"METRIC [-year N] [-quarter N] [-top N]", "Get top companies by specific metric", topCompanies},
	"lookup":             {"TICKER", "Find the CIK for a ticker symbol", lookup},
	"save-company":       {"CIK", "Store company metadata and filings in the database", saveCompany},
	"list-filings":       {"CIK [-form 10-K] [-limit N] [-stored]", "List recent filings", listFilings},
	"clear-cache":        {"[-pattern TEXT]", "Clear cached SEC API responses", clearCache},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("secdata", flag.ContinueOnError)
	global.SetOutput(stderr)
	verbose := global.Bool("v", false, "Enable verbose logging")
	cfgPath := global.String("config", "", "YAML config file")
	global.Usage = func() { usage(stderr) }

	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		usage(stderr)
		return 2
	}
	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command %q\n\n", name)
		usage(stderr)
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger, closer, err := logging.Setup(cfg.Logging, *verbose)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	if err := cfg.EnsureDirs(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	m := metrics.New(prometheus.NewRegistry())
	ch := cache.New(cfg.Cache.Dir, cache.WithMetrics(m), cache.WithLogger(logger))
	a := &app{
		cfg:    cfg,
		log:    logger,
		cache:  ch,
		client: ingest.NewClientFromConfig(cfg.SEC, ch, ingest.WithMetrics(m), ingest.WithLogger(logger)),
		out:    stdout,
	}
	defer a.close()

	if err := cmd.run(ctx, a, global.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		if errors.Is(err, errs.ErrRateLimited) {
			fmt.Fprintln(stderr, "Rate limit exceeded")
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "SEC Data Insights CLI")
	fmt.Fprintln(w, "\nUsage: secdata [-v] [-config FILE] COMMAND [ARGS]")
	fmt.Fprintln(w, "\nCommands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-20s %s\n", n, commands[n].help)
		fmt.Fprintf(w, "  %-20s   %s %s\n", "", n, commands[n].usage)
	}
}

// parseArgs lets flags follow positional arguments ("process-statements
// 320193 -export xlsx"), which flag.Parse alone stops at.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

// newFlags returns a flag set that reports errors instead of exiting.
func newFlags(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func requireArg(name string, positional []string, what string) (string, error) {
	if len(positional) != 1 {
		return "", fmt.Errorf("%w: %s takes exactly one %s", errs.ErrInvalidArgument, name, what)
	}
	return positional[0], nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// repository connects to the database on first use.
func (a *app) repository(ctx context.Context) (*store.Repository, error) {
	if a.cfg.Database.URL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is not set", errs.ErrInvalidArgument)
	}
	if a.pool == nil {
		pool, err := store.Connect(ctx, a.cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		a.pool = pool
	}
	return store.NewRepository(a.pool), nil
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
