package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "stripecrawl"

	// DefaultWorkers is the size of the worker pool.
	DefaultWorkers = 8

	// DefaultMaxLinks is the processing budget. A run stops once this many
	// URLs have been taken from the frontier and handled.
	DefaultMaxLinks = 500

	// DefaultTimeout bounds a single fetch, not the whole run.
	DefaultTimeout = 10 * time.Second

	// DefaultInitialCapacity is the starting bucket count of the visited set.
	// It is also the number of lock stripes, which never grows.
	DefaultInitialCapacity = 16

	// DefaultUserAgent identifies stripecrawl in HTTP requests.
	DefaultUserAgent = "stripecrawl/1.0"

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// DefaultSchemes lists the URL schemes followed when none are configured.
func DefaultSchemes() []string {
	return []string{"https"}
}

// Config holds all configuration options for a crawl.
// It is populated from CLI flags and the optional config file, then
// passed down explicitly; nothing reads it from global state.
type Config struct {
	// Seed is the URL the crawl starts from.
	Seed string

	// Workers is the number of concurrent workers.
	Workers int

	// MaxLinks is the processing budget. The final processed count may
	// exceed it by at most Workers-1.
	MaxLinks int

	// InitialCapacity sizes the visited set and fixes its stripe count.
	InitialCapacity int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero means DefaultMaxBodySize.
	MaxBodySize int64

	// Schemes are the URL schemes the link filter admits.
	Schemes []string

	// DomainContains, when set, restricts the crawl to hosts containing it.
	DomainContains string

	// ResolveRelative resolves relative hrefs against the page URL.
	// When false, only absolute links are followed.
	ResolveRelative bool

	// SkipStaticAssets drops links to images, stylesheets, scripts and
	// other non-HTML resources.
	SkipStaticAssets bool

	// Scope is a CSS selector limiting link extraction. It overrides the
	// scope of the site entry.
	Scope string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// CollectTimings enables per-phase timing instrumentation.
	CollectTimings bool

	// MetricsFile, when set, receives one CSV row per run.
	MetricsFile string

	// OutputDir, when set, receives fetched pages and the link list.
	OutputDir string

	// SaveToDB records the run in the SQLite history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory.
	DBDir string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report goes to stdout.
	ReportFile string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .stripecrawl is searched for in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-host settings loaded from the config file.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Workers:          DefaultWorkers,
		MaxLinks:         DefaultMaxLinks,
		InitialCapacity:  DefaultInitialCapacity,
		Timeout:          DefaultTimeout,
		UserAgent:        DefaultUserAgent,
		MaxBodySize:      DefaultMaxBodySize,
		Schemes:          DefaultSchemes(),
		SkipStaticAssets: true,
		DBDir:            XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for stripecrawl.
// On Linux: ~/.local/share/stripecrawl
// On macOS: ~/Library/Application Support/stripecrawl
// On Windows: %LOCALAPPDATA%\stripecrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for stripecrawl.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// SeedHost returns the lower-cased host of the seed URL, or "" when the
// seed does not parse.
func (c *Config) SeedHost() string {
	u, err := url.Parse(c.Seed)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Site returns the config-file settings that apply to the seed's host.
// It returns a zero SiteConfig when no file was loaded.
func (c *Config) Site() SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.GetSiteConfig(c.SeedHost())
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Seed) == "" {
		return ErrNoSeed
	}
	u, err := url.Parse(c.Seed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidSeed
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.MaxLinks <= 0 {
		return ErrInvalidMaxLinks
	}
	if c.InitialCapacity <= 0 {
		return ErrInvalidCapacity
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if len(c.Schemes) == 0 {
		return ErrInvalidScheme
	}
	for _, s := range c.Schemes {
		if !validScheme(s) {
			return ErrInvalidScheme
		}
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// validScheme reports whether s is a bare scheme name such as "https".
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
