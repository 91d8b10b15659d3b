package sitediff

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunWritesComparisonCSV(t *testing.T) {
	siteA := newFakeSite(t, map[string]fakePage{
		"/":      {body: `<a href="/about">about</a>`},
		"/about": {body: "about us"},
	})
	siteB := newFakeSite(t, map[string]fakePage{
		"/":    {body: `<a href="/about">about</a><a href="/new">new</a>`},
		"/new": {body: "fresh"},
	})

	cfg := testConfig(t)
	require.NoError(t, cfg.Apply(Overrides{
		SiteA:    siteA.url(t),
		SiteB:    siteB.url(t),
		MaxPages: -1,
	}))

	var out, errOut bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &out, &errOut, zap.NewNop().Sugar()))

	want := "path,status_a,status_b\n" +
		"/,200,200\n" +
		"/about,200,404\n" +
		"/new,absent,200\n"
	assert.Equal(t, want, out.String())
	assert.Contains(t, errOut.String(), "regressions: 1")
}

func TestRunSuppressesSummary(t *testing.T) {
	siteA := newFakeSite(t, map[string]fakePage{"/": {body: "a"}})
	siteB := newFakeSite(t, map[string]fakePage{"/": {body: "b"}})

	cfg := testConfig(t)
	require.NoError(t, cfg.Apply(Overrides{
		SiteA:     siteA.url(t),
		SiteB:     siteB.url(t),
		MaxPages:  -1,
		NoSummary: true,
	}))

	var out, errOut bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &out, &errOut, zap.NewNop().Sugar()))

	assert.Equal(t, "path,status_a,status_b\n/,200,200\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunFailsWhenCacheUnusable(t *testing.T) {
	siteA := newFakeSite(t, map[string]fakePage{"/": {body: "a"}})
	siteB := newFakeSite(t, map[string]fakePage{"/": {body: "b"}})

	blocker := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(blocker, []byte("a file, not a directory"), 0o644))

	cfg := testConfig(t)
	cfg.Cache.Path = filepath.Join(blocker, "cache")
	require.NoError(t, cfg.Apply(Overrides{
		SiteA:    siteA.url(t),
		SiteB:    siteB.url(t),
		MaxPages: -1,
	}))

	var out, errOut bytes.Buffer
	err := Run(context.Background(), cfg, &out, &errOut, zap.NewNop().Sugar())
	assert.Error(t, err)
	assert.Empty(t, out.String(), "no report on a failed run")
}
