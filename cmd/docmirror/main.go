package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/config"
	"github.com/fwojciec/docmirror/crawl"
	"github.com/fwojciec/docmirror/diff"
	"github.com/fwojciec/docmirror/discover"
	"github.com/fwojciec/docmirror/goquery"
	"github.com/fwojciec/docmirror/htmltomarkdown"
	dochttp "github.com/fwojciec/docmirror/http"
	"github.com/fwojciec/docmirror/rod"
	docslog "github.com/fwojciec/docmirror/slog"
	"github.com/fwojciec/docmirror/sqlite"
	"github.com/fwojciec/docmirror/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Settings file path. Set before calling Run().
	ConfigPath string

	// SQLite database used for run history.
	DB *sqlite.DB

	// Run history service, exposed for end-to-end testing.
	RunService docmirror.RunService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPath: defaultConfigPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(m.ConfigPath)
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Config: cfg,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docmirror"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docmirror --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(databasePath(cfg))
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCMIRROR_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", databasePath(cfg), err)
	}
	defer m.Close()

	m.RunService = sqlite.NewRunService(m.DB)
	deps.DB = m.DB
	deps.Runs = m.RunService
	deps.Differ = diff.NewEngine()

	if cmd == "scrape" || cmd == "preview" {
		browser := cli.Scrape.Browser || cli.Preview.Browser
		verbose := cli.Scrape.Verbose || cli.Preview.Verbose

		fetcher, err := newFetcher(cfg, browser)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --browser")
			return err
		}
		defer fetcher.Close()

		if verbose {
			logger := slog.New(slog.NewTextHandler(stderr, nil))
			fetcher = docslog.NewLoggingFetcher(fetcher, logger)
			deps.Discoverer = docslog.NewLoggingDiscoverer(newDiscoverer(cfg, fetcher), logger)
		} else {
			deps.Discoverer = newDiscoverer(cfg, fetcher)
		}

		deps.Fetcher = fetcher
		deps.Extractor = newExtractor(cfg)
		deps.Normalizer = goquery.NewNormalizer()
		deps.Converter = htmltomarkdown.NewConverter()
		deps.Limiter = crawl.NewDomainLimiter(cfg.RateLimit)
	}

	return kongCtx.Run(deps)
}

// newFetcher builds the page fetcher: a plain HTTP client by default, a
// headless browser when requested.
func newFetcher(cfg config.Config, browser bool) (docmirror.Fetcher, error) {
	if browser {
		return rod.NewFetcher()
	}
	return dochttp.NewFetcher(
		dochttp.WithTimeout(cfg.FetchTimeout),
		dochttp.WithUserAgent(cfg.UserAgent),
	), nil
}

func newDiscoverer(cfg config.Config, fetcher docmirror.Fetcher) *discover.Discoverer {
	return discover.NewDiscoverer(fetcher, goquery.NewLinkExtractor(),
		discover.WithPolicy(discover.Policy{Mode: discover.Mode(cfg.PolicyMode)}),
		discover.WithOrderMode(discover.OrderMode(cfg.OrderMode)),
		discover.WithCrawlLimits(cfg.CrawlDepth, cfg.CrawlMaxURLs, cfg.CrawlMaxPageLinks),
	)
}

// newExtractor layers the selector-based extractor over a generic content
// extraction fallback for pages its selectors miss.
func newExtractor(cfg config.Config) docmirror.Extractor {
	e := goquery.NewExtractor()
	if len(cfg.TitleSelectors) > 0 {
		e.TitleSelectors = cfg.TitleSelectors
	}
	if len(cfg.ContentSelectors) > 0 {
		e.ContentSelectors = cfg.ContentSelectors
	}
	e.Fallback = trafilatura.NewExtractor()
	return e
}

func defaultConfigPath() string {
	if path := os.Getenv("DOCMIRROR_CONFIG"); path != "" {
		return path
	}
	return "docmirror.yaml"
}

func databasePath(cfg config.Config) string {
	if path := os.Getenv("DOCMIRROR_DB"); path != "" {
		return path
	}
	if cfg.DatabasePath != "" {
		return cfg.DatabasePath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "docmirror.db"
	}
	dir := filepath.Join(home, ".docmirror")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "docmirror.db")
}
