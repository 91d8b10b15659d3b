package sitediff

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitediff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Contains(t, cfg.Cache.Path, "sitediff-cache")
	assert.Equal(t, 10*time.Second, cfg.timeout)
	assert.EqualValues(t, 10*1024*1024, cfg.maxBody)
	assert.Equal(t, "sitediff/1.0", cfg.HTTP.UserAgent)
	assert.Zero(t, cfg.Crawl.MaxPages)
	assert.True(t, cfg.Report.Summary)
}

func TestLoadConfigFileOverlaysDefaults(t *testing.T) {
	path := writeConfigFile(t, `
cache:
  path: /var/cache/sd
http:
  timeout: 3s
  maxBodySize: 1mb
  requestsPerSecond: 2
crawl:
  maxPages: 50
  excludePaths: ["/admin", "/drafts"]
  sitemaps: ["/sitemap.xml"]
report:
  summary: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/sd", cfg.Cache.Path)
	assert.Equal(t, 3*time.Second, cfg.timeout)
	assert.EqualValues(t, 1024*1024, cfg.maxBody)
	assert.Equal(t, 2.0, cfg.HTTP.RequestsPerSecond)
	assert.Equal(t, 50, cfg.Crawl.MaxPages)
	assert.Equal(t, []string{"/admin", "/drafts"}, cfg.Crawl.ExcludePaths)
	assert.Equal(t, []string{"/sitemap.xml"}, cfg.Crawl.Sitemaps)
	assert.False(t, cfg.Report.Summary)
	assert.Equal(t, "sitediff/1.0", cfg.HTTP.UserAgent, "unset fields keep defaults")
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad timeout", "http:\n  timeout: soon\n"},
		{"zero timeout", "http:\n  timeout: 0s\n"},
		{"bad body size", "http:\n  maxBodySize: big\n"},
		{"negative rate", "http:\n  requestsPerSecond: -1\n"},
		{"negative max pages", "crawl:\n  maxPages: -5\n"},
		{"exclude without slash", "crawl:\n  excludePaths: [\"admin\"]\n"},
		{"empty cache path", "cache:\n  path: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	err = cfg.Apply(Overrides{
		SiteA:     mustParse(t, "https://a.example.com"),
		SiteB:     mustParse(t, "https://b.example.com"),
		CacheDir:  "/tmp/elsewhere",
		Timeout:   5 * time.Second,
		MaxPages:  10,
		Sitemaps:  []string{"/sitemap.xml", " ", ""},
		Refresh:   true,
		NoSummary: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "a.example.com", cfg.siteA.Host)
	assert.Equal(t, "b.example.com", cfg.siteB.Host)
	assert.Equal(t, "/tmp/elsewhere", cfg.Cache.Path)
	assert.Equal(t, 5*time.Second, cfg.timeout)
	assert.Equal(t, 10, cfg.Crawl.MaxPages)
	assert.Equal(t, []string{"/sitemap.xml"}, cfg.Crawl.Sitemaps)
	assert.True(t, cfg.refresh)
	assert.False(t, cfg.Report.Summary)
}

func TestApplyZeroOverridesKeepConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Crawl.MaxPages = 7

	err = cfg.Apply(Overrides{
		SiteA:    mustParse(t, "https://a.example.com"),
		SiteB:    mustParse(t, "https://b.example.com"),
		MaxPages: -1,
	})
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.timeout)
	assert.Equal(t, 7, cfg.Crawl.MaxPages)
	assert.True(t, cfg.Report.Summary)
}

func TestApplyNormalizesSiteArguments(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	err = cfg.Apply(Overrides{
		SiteA: mustParse(t, "Example.COM/docs"),
		SiteB: mustParse(t, "http://other.io?tracking=1#frag"),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/docs", cfg.siteA.String())
	assert.Equal(t, "http://other.io", cfg.siteB.String())
}

func TestApplyRejectsBadSites(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	err = cfg.Apply(Overrides{
		SiteA: mustParse(t, "ftp://example.com"),
		SiteB: mustParse(t, "https://ok.example.com"),
	})
	assert.Error(t, err)

	err = cfg.Apply(Overrides{SiteB: mustParse(t, "https://ok.example.com")})
	assert.Error(t, err, "both sites are required")
}
