package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns the documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Workers is 8", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != 8 {
			t.Errorf("expected Workers to be 8, got %d", cfg.Workers)
		}
	})

	t.Run("default MaxLinks is 500", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxLinks != 500 {
			t.Errorf("expected MaxLinks to be 500, got %d", cfg.MaxLinks)
		}
	})

	t.Run("default Timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected Timeout to be 10s, got %v", cfg.Timeout)
		}
	})

	t.Run("default InitialCapacity is 16", func(t *testing.T) {
		t.Parallel()
		if cfg.InitialCapacity != 16 {
			t.Errorf("expected InitialCapacity to be 16, got %d", cfg.InitialCapacity)
		}
	})

	t.Run("default schemes are https only", func(t *testing.T) {
		t.Parallel()
		if !slices.Equal(cfg.Schemes, []string{"https"}) {
			t.Errorf("expected [https], got %v", cfg.Schemes)
		}
	})

	t.Run("default user agent and body size", func(t *testing.T) {
		t.Parallel()
		if cfg.UserAgent != "stripecrawl/1.0" {
			t.Errorf("unexpected UserAgent %q", cfg.UserAgent)
		}
		if cfg.MaxBodySize != 5*1024*1024 {
			t.Errorf("unexpected MaxBodySize %d", cfg.MaxBodySize)
		}
	})

	t.Run("relative links are not followed by default", func(t *testing.T) {
		t.Parallel()
		if cfg.ResolveRelative {
			t.Error("expected ResolveRelative to be false")
		}
	})

	t.Run("default DBDir is the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid config", func(*Config) {}, nil},
		{"empty seed", func(c *Config) { c.Seed = "" }, ErrNoSeed},
		{"blank seed", func(c *Config) { c.Seed = "   " }, ErrNoSeed},
		{"relative seed", func(c *Config) { c.Seed = "/wiki/Go" }, ErrInvalidSeed},
		{"unparseable seed", func(c *Config) { c.Seed = "://bad" }, ErrInvalidSeed},
		{"zero workers", func(c *Config) { c.Workers = 0 }, ErrInvalidWorkers},
		{"negative workers", func(c *Config) { c.Workers = -2 }, ErrInvalidWorkers},
		{"zero max links", func(c *Config) { c.MaxLinks = 0 }, ErrInvalidMaxLinks},
		{"zero capacity", func(c *Config) { c.InitialCapacity = 0 }, ErrInvalidCapacity},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"zero body size uses default", func(c *Config) { c.MaxBodySize = 0 }, nil},
		{"no schemes", func(c *Config) { c.Schemes = nil }, ErrInvalidScheme},
		{"scheme with separator", func(c *Config) { c.Schemes = []string{"https://"} }, ErrInvalidScheme},
		{"empty scheme", func(c *Config) { c.Schemes = []string{"https", ""} }, ErrInvalidScheme},
		{"multiple schemes", func(c *Config) { c.Schemes = []string{"http", "https"} }, nil},
		{"json only", func(c *Config) { c.JSONReport = true }, nil},
		{"markdown only", func(c *Config) { c.MarkdownReport = true }, nil},
		{"json and markdown", func(c *Config) {
			c.JSONReport = true
			c.MarkdownReport = true
		}, ErrConflictingReportFormats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.Seed = "https://en.wikipedia.org/wiki/Ball_(disambiguation)"
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestConfigSite tests resolving the seed host's site settings.
func TestConfigSite(t *testing.T) {
	t.Parallel()

	t.Run("no file loaded", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Seed = "https://example.com/"
		if site := cfg.Site(); site.Cookie != "" || site.Headers != nil {
			t.Errorf("expected zero site config, got %+v", site)
		}
	})

	t.Run("uses seed host", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Seed = "https://EN.Wikipedia.org:443/wiki/Go"
		cfg.SiteConfigs = &File{
			Sites: map[string]SiteConfig{
				"en.wikipedia.org": {Scope: "#bodyContent"},
			},
		}

		if host := cfg.SeedHost(); host != "en.wikipedia.org" {
			t.Errorf("expected lower-cased host without port, got %q", host)
		}
		if site := cfg.Site(); site.Scope != "#bodyContent" {
			t.Errorf("expected scope from site entry, got %+v", site)
		}
	})
}

// TestFileGetSiteConfig tests merging of site entries over defaults.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	yes := true
	no := false

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{Cookie: "default=1", DomainContains: "wikipedia.org"},
			Sites:    map[string]SiteConfig{"other.org": {Cookie: "other=1"}},
		}

		cfg := file.GetSiteConfig("unknown.org")
		if cfg.Cookie != "default=1" || cfg.DomainContains != "wikipedia.org" {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})

	t.Run("site values override defaults", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Cookie:          "default=1",
				IgnorePatterns:  []string{"/Special:*"},
				ResolveRelative: &no,
			},
			Sites: map[string]SiteConfig{
				"en.wikipedia.org": {
					Cookie:          "site=1",
					IgnorePatterns:  []string{"/Talk:*"},
					FollowPatterns:  []string{"/wiki/*"},
					Scope:           "#bodyContent",
					ResolveRelative: &yes,
				},
			},
		}

		cfg := file.GetSiteConfig("en.wikipedia.org")
		if cfg.Cookie != "site=1" {
			t.Errorf("expected site cookie, got %q", cfg.Cookie)
		}
		if !slices.Equal(cfg.IgnorePatterns, []string{"/Talk:*"}) {
			t.Errorf("expected site ignore patterns, got %v", cfg.IgnorePatterns)
		}
		if !slices.Equal(cfg.FollowPatterns, []string{"/wiki/*"}) {
			t.Errorf("expected site follow patterns, got %v", cfg.FollowPatterns)
		}
		if cfg.Scope != "#bodyContent" {
			t.Errorf("expected scope, got %q", cfg.Scope)
		}
		if cfg.ResolveRelative == nil || !*cfg.ResolveRelative {
			t.Error("expected site to enable relative resolution")
		}
	})

	t.Run("unset site values keep defaults", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{Cookie: "default=1", ResolveRelative: &yes},
			Sites:    map[string]SiteConfig{"example.com": {Scope: "main"}},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Cookie != "default=1" {
			t.Errorf("expected default cookie, got %q", cfg.Cookie)
		}
		if cfg.ResolveRelative == nil || !*cfg.ResolveRelative {
			t.Error("expected default ResolveRelative to survive")
		}
	})

	t.Run("merges headers without mutating defaults", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{Headers: map[string]string{"Accept-Language": "en", "X-Trace": "default"}},
			Sites: map[string]SiteConfig{
				"example.com": {Headers: map[string]string{"X-Trace": "site"}},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Headers["Accept-Language"] != "en" || cfg.Headers["X-Trace"] != "site" {
			t.Errorf("unexpected merged headers %v", cfg.Headers)
		}
		if file.Defaults.Headers["X-Trace"] != "default" {
			t.Error("merging must not modify the defaults")
		}
	})

	t.Run("host match is case-insensitive", func(t *testing.T) {
		t.Parallel()

		file := &File{Sites: map[string]SiteConfig{"Example.COM": {Cookie: "c=1"}}}
		if cfg := file.GetSiteConfig("example.com"); cfg.Cookie != "c=1" {
			t.Errorf("expected case-insensitive match, got %+v", cfg)
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()

		file := &File{Defaults: SiteConfig{Cookie: "default=1"}}
		if cfg := file.GetSiteConfig("any.org"); cfg.Cookie != "default=1" {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})
}

// TestLoadConfigFile tests YAML config loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), ".stripecrawl"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".stripecrawl")
		content := `defaults:
  headers:
    Accept-Language: en
  ignorePatterns:
    - "/wiki/Special:*"
sites:
  en.wikipedia.org:
    cookie: "session=abc"
    domainContains: wikipedia.org
    followPatterns:
      - "/wiki/*"
    scope: "#bodyContent"
    resolveRelative: true
`
		if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.Headers["Accept-Language"] != "en" {
			t.Errorf("unexpected default headers %v", cfg.Defaults.Headers)
		}

		site, ok := cfg.Sites["en.wikipedia.org"]
		if !ok {
			t.Fatal("expected en.wikipedia.org in sites")
		}
		if site.Cookie != "session=abc" || site.DomainContains != "wikipedia.org" || site.Scope != "#bodyContent" {
			t.Errorf("unexpected site config %+v", site)
		}
		if site.ResolveRelative == nil || !*site.ResolveRelative {
			t.Error("expected resolveRelative to be parsed")
		}

		merged := cfg.GetSiteConfig("en.wikipedia.org")
		if !slices.Equal(merged.IgnorePatterns, []string{"/wiki/Special:*"}) {
			t.Errorf("expected inherited ignore patterns, got %v", merged.IgnorePatterns)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".stripecrawl")
		if err := os.WriteFile(configPath, []byte("sites: [unclosed"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".stripecrawl")
		if err := os.WriteFile(configPath, []byte("sites:\n  example.com:\n    cookies: a=b\n"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for misspelled key")
		}
	})

	t.Run("empty file is an empty config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".stripecrawl")
		if err := os.WriteFile(configPath, nil, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Sites) != 0 || cfg.Defaults.Cookie != "" {
			t.Errorf("expected empty config, got %+v", cfg)
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".stripecrawl")
		if err := os.WriteFile(configPath, []byte("defaults:\n  cookie: a=b\n"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites to be initialized")
		}
	})
}

// TestFindConfigFile tests config file discovery.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("sites: {}\n"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("ignores a directory", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(t.TempDir()); got != "" {
			t.Errorf("expected empty path for a directory, got %q", got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

// TestXDGDirs tests the XDG directory helpers.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
	} {
		if dir == "" {
			t.Errorf("expected non-empty %s dir", name)
		}
		if !strings.HasSuffix(dir, AppName) {
			t.Errorf("expected %s dir to end with %q, got %q", name, AppName, dir)
		}
	}
}
