package sitediff

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Cache struct {
		Path string `yaml:"path"`
	} `yaml:"cache"`

	HTTP struct {
		Timeout           string  `yaml:"timeout"`
		UserAgent         string  `yaml:"userAgent"`
		MaxBodySize       string  `yaml:"maxBodySize"`
		RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	} `yaml:"http"`

	Crawl struct {
		MaxPages     int      `yaml:"maxPages"`
		ExcludePaths []string `yaml:"excludePaths"`
		Sitemaps     []string `yaml:"sitemaps"`
	} `yaml:"crawl"`

	Report struct {
		Summary bool `yaml:"summary"`
	} `yaml:"report"`

	// compiled
	siteA       *url.URL
	siteB       *url.URL
	timeout     time.Duration
	maxBody     int64
	refresh     bool
	interactive bool
}

// Overrides carries CLI-level settings applied on top of the config file.
// Zero values leave the file's settings in place, except MaxPages where any
// negative value means "not set".
type Overrides struct {
	SiteA       *url.URL
	SiteB       *url.URL
	CacheDir    string
	Timeout     time.Duration
	MaxPages    int
	Sitemaps    []string
	Refresh     bool
	NoSummary   bool
	Interactive bool
}

func DefaultConfig() Config {
	var cfg Config
	cfg.Cache.Path = filepath.Join(os.TempDir(), "sitediff-cache")
	cfg.HTTP.Timeout = "10s"
	cfg.HTTP.UserAgent = "sitediff/1.0"
	cfg.HTTP.MaxBodySize = "10mb"
	cfg.Crawl.MaxPages = 0
	cfg.Report.Summary = true
	return cfg
}

// LoadConfig returns the defaults overlaid with the YAML file at path, if one
// is given.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.compile(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) compile() error {
	if c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required")
	}

	d, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil {
		return fmt.Errorf("http.timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %q", c.HTTP.Timeout)
	}
	c.timeout = d

	n, err := parseBytes(c.HTTP.MaxBodySize)
	if err != nil {
		return fmt.Errorf("http.maxBodySize: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("http.maxBodySize must be positive, got %q", c.HTTP.MaxBodySize)
	}
	c.maxBody = n

	if c.HTTP.RequestsPerSecond < 0 {
		return fmt.Errorf("http.requestsPerSecond must not be negative")
	}
	if c.Crawl.MaxPages < 0 {
		return fmt.Errorf("crawl.maxPages must not be negative")
	}
	for i, p := range c.Crawl.ExcludePaths {
		p = strings.TrimSpace(p)
		if p == "" || !strings.HasPrefix(p, "/") {
			return fmt.Errorf("crawl.excludePaths[%d]: invalid prefix %q", i, p)
		}
		c.Crawl.ExcludePaths[i] = p
	}
	return nil
}

// Apply merges CLI overrides into the config and validates the site URLs.
func (c *Config) Apply(o Overrides) error {
	siteA, err := normalizeSite(o.SiteA)
	if err != nil {
		return fmt.Errorf("original site: %w", err)
	}
	siteB, err := normalizeSite(o.SiteB)
	if err != nil {
		return fmt.Errorf("target site: %w", err)
	}
	c.siteA, c.siteB = siteA, siteB

	if o.CacheDir != "" {
		c.Cache.Path = o.CacheDir
	}
	if o.Timeout > 0 {
		c.timeout = o.Timeout
	}
	if o.MaxPages >= 0 {
		c.Crawl.MaxPages = o.MaxPages
	}
	for _, sm := range o.Sitemaps {
		sm = strings.TrimSpace(sm)
		if sm != "" {
			c.Crawl.Sitemaps = append(c.Crawl.Sitemaps, sm)
		}
	}
	c.refresh = o.Refresh
	c.interactive = o.Interactive
	if o.NoSummary {
		c.Report.Summary = false
	}
	return nil
}

// normalizeSite fixes up a site argument into a crawlable base URL. Bare
// "example.com" parses with an empty host, so the path is promoted to the
// host, and a missing scheme defaults to https.
func normalizeSite(u *url.URL) (*url.URL, error) {
	if u == nil {
		return nil, fmt.Errorf("missing URL")
	}
	v := *u
	if v.Host == "" {
		rest := v.Path
		v.Path = ""
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			v.Host, v.Path = rest[:i], rest[i:]
		} else {
			v.Host = rest
		}
	}
	if v.Scheme == "" {
		v.Scheme = "https"
	}
	if v.Scheme != "http" && v.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", v.Scheme)
	}
	if v.Host == "" {
		return nil, fmt.Errorf("missing host")
	}
	v.Host = strings.ToLower(v.Host)
	v.RawQuery = ""
	v.Fragment = ""
	return &v, nil
}
