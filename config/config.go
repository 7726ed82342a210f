// Package config loads the optional docmirror settings file. All fields
// have working defaults; a missing file yields the default configuration.
package config

import (
	"os"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/goccy/go-yaml"
)

// maxInputSize limits settings input to prevent memory exhaustion.
const maxInputSize = 1 << 20

// Config holds the tunable run settings.
type Config struct {
	// Worker pool size for page fetching.
	Concurrency int `yaml:"concurrency"`

	// Per-request timeout.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// Requests per second per domain.
	RateLimit float64 `yaml:"rate_limit"`

	UserAgent string `yaml:"user_agent"`

	// Documentation-URL classification: strict, broad or permissive.
	PolicyMode string `yaml:"policy_mode"`

	// Chapter ordering: lexicon or alpha.
	OrderMode string `yaml:"order_mode"`

	// CSS selectors tried in order during extraction. Empty means the
	// extractor defaults.
	TitleSelectors   []string `yaml:"title_selectors"`
	ContentSelectors []string `yaml:"content_selectors"`

	// Crawl fallback bounds.
	CrawlDepth        int `yaml:"crawl_depth"`
	CrawlMaxURLs      int `yaml:"crawl_max_urls"`
	CrawlMaxPageLinks int `yaml:"crawl_max_page_links"`

	// Output layout: directory, single or bundle.
	OutputMode string `yaml:"output_mode"`

	// Root directory for assembled output trees.
	OutputDir string `yaml:"output_dir"`

	// Path of the run-history database.
	DatabasePath string `yaml:"database_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Concurrency:       8,
		FetchTimeout:      30 * time.Second,
		RateLimit:         2.0,
		UserAgent:         "docmirror (+https://github.com/fwojciec/docmirror)",
		PolicyMode:        "strict",
		OrderMode:         "lexicon",
		CrawlDepth:        3,
		CrawlMaxURLs:      500,
		CrawlMaxPageLinks: 100,
		OutputMode:        string(docmirror.OutputDirectory),
		OutputDir:         "output",
		DatabasePath:      "docmirror.db",
	}
}

// Load reads the settings file at path and merges it over the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, docmirror.Errorf(docmirror.EINTERNAL, "reading config %s: %v", path, err)
	}
	if len(data) > maxInputSize {
		return cfg, docmirror.Errorf(docmirror.EINVALID, "config %s exceeds %d bytes", path, maxInputSize)
	}

	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return cfg, docmirror.Errorf(docmirror.EINVALID, "parsing config %s: %v", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration contains invalid fields.
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return docmirror.Errorf(docmirror.EINVALID, "concurrency must be positive")
	}
	if c.RateLimit <= 0 {
		return docmirror.Errorf(docmirror.EINVALID, "rate_limit must be positive")
	}
	switch c.PolicyMode {
	case "strict", "broad", "permissive":
	default:
		return docmirror.Errorf(docmirror.EINVALID, "unknown policy_mode %q", c.PolicyMode)
	}
	switch c.OrderMode {
	case "lexicon", "alpha":
	default:
		return docmirror.Errorf(docmirror.EINVALID, "unknown order_mode %q", c.OrderMode)
	}
	switch docmirror.OutputMode(c.OutputMode) {
	case docmirror.OutputDirectory, docmirror.OutputSingle, docmirror.OutputBundle:
	default:
		return docmirror.Errorf(docmirror.EINVALID, "unknown output_mode %q", c.OutputMode)
	}
	return nil
}
