package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/stripecrawl/internal/artifact"
	"github.com/nao1215/stripecrawl/internal/config"
	"github.com/nao1215/stripecrawl/internal/crawler"
	"github.com/nao1215/stripecrawl/internal/database"
	"github.com/nao1215/stripecrawl/internal/metrics"
	"github.com/nao1215/stripecrawl/internal/model"
	"github.com/nao1215/stripecrawl/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <seed-url>",
		Short: "Crawl the web from a seed URL",
		Long: `Crawl fetches the seed URL, extracts its links and keeps following new
links with a pool of workers until the link budget is spent or no links
remain. Each URL is fetched at most once.

The processed count may exceed --max-links by at most --workers - 1,
because workers that already took a URL finish it.

Examples:
  # Crawl 500 links with 8 workers
  stripecrawl crawl https://en.wikipedia.org/wiki/Ball_(disambiguation)

  # Smaller budget, more workers, per-phase timings appended to a CSV
  stripecrawl crawl -w 32 -n 200 --timings --metrics-file runs.csv https://example.com/

  # Keep fetched pages and the link list, and record the run in history
  stripecrawl crawl --output-dir ./out --save https://example.com/

  # Markdown report written to a file
  stripecrawl crawl --markdown -o report.md https://example.com/`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent workers")
	cmd.Flags().IntP("max-links", "n", config.DefaultMaxLinks,
		"Number of links to process before stopping")
	cmd.Flags().Int("capacity", config.DefaultInitialCapacity,
		"Initial bucket and lock-stripe count of the visited set")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")

	// Fetch flags
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum bytes read from each response (0 for the default)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")

	// Link filter flags
	cmd.Flags().StringSlice("scheme", config.DefaultSchemes(),
		"URL schemes to follow")
	cmd.Flags().String("domain", "",
		"Only follow links whose host contains this string")
	cmd.Flags().Bool("resolve-relative", false,
		"Follow relative links by resolving them against the page URL")
	cmd.Flags().Bool("include-static", false,
		"Also follow links to images, stylesheets, scripts and documents")
	cmd.Flags().String("scope", "",
		"CSS selector limiting link extraction (e.g., #bodyContent)")

	// Output flags
	cmd.Flags().Bool("timings", false,
		"Collect per-phase timings")
	cmd.Flags().String("metrics-file", "",
		"Append a CSV row with the run's counters and timings to this file")
	cmd.Flags().String("output-dir", "",
		"Write fetched pages and the link list under this directory")
	cmd.Flags().Bool("save", false,
		"Record the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .stripecrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, os.Stderr)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing in-flight pages...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildConfig creates a Config from cobra command flags and the config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error

	if cfg.Workers, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.MaxLinks, err = flags.GetInt("max-links"); err != nil {
		return nil, err
	}
	if cfg.InitialCapacity, err = flags.GetInt("capacity"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.Schemes, err = flags.GetStringSlice("scheme"); err != nil {
		return nil, err
	}
	for i, s := range cfg.Schemes {
		cfg.Schemes[i] = strings.ToLower(s)
	}
	if cfg.DomainContains, err = flags.GetString("domain"); err != nil {
		return nil, err
	}
	if cfg.ResolveRelative, err = flags.GetBool("resolve-relative"); err != nil {
		return nil, err
	}
	includeStatic, err := flags.GetBool("include-static")
	if err != nil {
		return nil, err
	}
	cfg.SkipStaticAssets = !includeStatic

	if cfg.CollectTimings, err = flags.GetBool("timings"); err != nil {
		return nil, err
	}
	if cfg.MetricsFile, err = flags.GetString("metrics-file"); err != nil {
		return nil, err
	}
	if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = flags.GetBool("save"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.SiteConfigs, err = loadSiteConfigs(cfg.ConfigFilePath); err != nil {
		return nil, err
	}

	if cfg.Scope, err = flags.GetString("scope"); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Seed = args[0]
	}

	// A flag given explicitly wins over the config file.
	if site := cfg.Site(); site.ResolveRelative != nil && !flags.Changed("resolve-relative") {
		cfg.ResolveRelative = *site.ResolveRelative
	}

	return cfg, nil
}

// loadSiteConfigs loads the config file. A file named with --config must
// exist; otherwise an empty configuration is used when none is found.
func loadSiteConfigs(explicitPath string) (*config.File, error) {
	path := config.FindConfigFile(explicitPath)
	if path == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
		}
		return &config.File{Sites: make(map[string]config.SiteConfig)}, nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return file, nil
}

// runCrawl wires the collaborators described by cfg, runs the engine and
// writes the report, the metrics row and the history record.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	site := cfg.Site()

	fetcher, err := newFetcher(cfg, site)
	if err != nil {
		return err
	}
	extractor := newExtractor(cfg, site)

	var sinks []artifact.Sink

	if cfg.OutputDir != "" {
		fileSink, err := artifact.NewFileSink(cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to prepare output directory: %w", err)
		}
		defer fileSink.Close()
		sinks = append(sinks, fileSink)
		logger.Info("writing artifacts", "dir", fileSink.Dir())
	}

	var recorder *database.RunRecorder
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		recorder, err = db.BeginRun(ctx, cfg.Seed, cfg.Workers, cfg.MaxLinks, time.Now())
		if err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		sinks = append(sinks, recorder)
		logger.Info("recording run", "db", db.Path(), "run_id", recorder.RunID())
	}

	opts := []crawler.Option{
		crawler.WithWorkers(cfg.Workers),
		crawler.WithMaxLinks(cfg.MaxLinks),
		crawler.WithInitialCapacity(cfg.InitialCapacity),
		crawler.WithLogger(logger),
	}
	if multi := artifact.NewMulti(sinks...); multi.Len() > 0 {
		opts = append(opts, crawler.WithSink(multi))
	}
	if cfg.CollectTimings {
		opts = append(opts, crawler.WithTimings(metrics.NewTimings()))
	}

	engine := crawler.New(fetcher, extractor, opts...)
	summary, runErr := engine.Run(ctx, cfg.Seed)
	if summary == nil {
		return fmt.Errorf("crawl failed: %w", runErr)
	}

	if recorder != nil {
		// The run context may be cancelled; the summary is still worth keeping.
		if err := recorder.Finish(context.WithoutCancel(ctx), summary); err != nil {
			logger.Error("failed to finish run record", "error", err)
		}
	}

	if cfg.MetricsFile != "" {
		if err := metrics.AppendCSV(cfg.MetricsFile, summary); err != nil {
			logger.Error("failed to append metrics", "file", cfg.MetricsFile, "error", err)
		}
	}

	if err := outputReport(cfg, stdout, func(w report.Writer) error {
		_, err := w.Write(summary)
		return err
	}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if summary.StopReason == model.StopCancelled {
		return fmt.Errorf("crawl interrupted after %d links: %w", summary.Processed, runErr)
	}
	return nil
}

// newFetcher builds the HTTP fetcher, routed through a SOCKS5 proxy when
// one is configured.
func newFetcher(cfg *config.Config, site config.SiteConfig) (*crawler.HTTPFetcher, error) {
	opts := []crawler.FetcherOption{
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	}
	if len(site.Headers) > 0 {
		opts = append(opts, crawler.WithHeaders(site.Headers))
	}
	if site.Cookie != "" {
		opts = append(opts, crawler.WithCookie(site.Cookie))
	}

	if cfg.ProxyAddress != "" {
		client, err := crawler.NewProxyClient(cfg.ProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy client: %w", err)
		}
		opts = append(opts, crawler.WithHTTPClient(client))
	}

	return crawler.NewHTTPFetcher(opts...), nil
}

// newExtractor picks the CSS-scoped extractor when a scope is configured
// and the tree-walking one otherwise.
func newExtractor(cfg *config.Config, site config.SiteConfig) crawler.LinkExtractor {
	domain := cfg.DomainContains
	if domain == "" {
		domain = site.DomainContains
	}

	opts := []crawler.ExtractorOption{
		crawler.WithFilter(crawler.LinkFilter{
			Schemes:          cfg.Schemes,
			DomainContains:   domain,
			IgnorePatterns:   site.IgnorePatterns,
			FollowPatterns:   site.FollowPatterns,
			SkipStaticAssets: cfg.SkipStaticAssets,
		}),
		crawler.WithResolveRelative(cfg.ResolveRelative),
	}

	scope := cfg.Scope
	if scope == "" {
		scope = site.Scope
	}
	if scope != "" {
		return crawler.NewSelectorExtractor(scope, opts...)
	}
	return crawler.NewHTMLExtractor(opts...)
}

// newReportWriter returns the writer for the selected report format.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// outputReport opens the report destination and hands a writer for the
// selected format to write.
func outputReport(cfg *config.Config, stdout io.Writer, write func(report.Writer) error) error {
	if cfg.ReportFile == "" {
		return write(newReportWriter(cfg, stdout))
	}

	if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := write(newReportWriter(cfg, f)); err != nil {
		_ = f.Close() //nolint:errcheck // the write error is more useful
		return err
	}
	return f.Close()
}
