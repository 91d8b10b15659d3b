package sitediff

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type sitemapDoc struct {
	URLs     []string `xml:"url>loc"`
	Sitemaps []string `xml:"sitemap>loc"`
}

// seedFromSitemaps fetches each configured sitemap and returns the same-site
// paths they list, so the crawl also covers pages not reachable by links.
// Nested sitemap indexes and redirects are chased once each and may leave the
// host (indexes often hand off to CDN-hosted files); listed locs are still
// filtered to the site. Sitemaps go through the page cache like any other
// fetch but are never recorded as crawled paths. An unusable sitemap is
// logged and skipped; only cache I/O failures and cancellation abort the
// crawl.
func (c *crawler) seedFromSitemaps(ctx context.Context) ([]string, error) {
	if len(c.sitemaps) == 0 {
		return nil, nil
	}

	seen := map[string]struct{}{}
	queue := make([]string, 0, len(c.sitemaps))
	for _, sm := range c.sitemaps {
		sm = strings.TrimSpace(sm)
		if sm == "" {
			continue
		}
		queue = append(queue, c.absoluteURL(sm))
	}

	var paths []string
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return paths, err
		}

		smURL := queue[0]
		queue = queue[1:]
		if _, ok := seen[smURL]; ok {
			continue
		}
		seen[smURL] = struct{}{}

		ent, _, err := c.fetcher.Fetch(ctx, smURL)
		if err != nil {
			return paths, err
		}
		if loc, ok := ent.Location(); ok {
			queue = append(queue, c.absoluteURL(loc))
			continue
		}
		if ent.Status < 200 || ent.Status >= 300 {
			c.log.Warnw("sitemap skipped", "sitemap", smURL, "status", ent.Status)
			continue
		}

		doc, err := parseSitemap(smURL, ent.Body)
		if err != nil {
			c.log.Warnw("sitemap skipped", "sitemap", smURL, "error", err)
			continue
		}

		for _, nested := range doc.Sitemaps {
			if nested != "" {
				queue = append(queue, c.absoluteURL(nested))
			}
		}

		kept := 0
		for _, loc := range doc.URLs {
			if loc == "" {
				continue
			}
			path, ok := normalizePath(c.site, loc)
			if !ok {
				continue
			}
			paths = append(paths, path)
			kept++
		}
		c.log.Debugw("sitemap parsed", "sitemap", smURL,
			"urls", len(doc.URLs), "kept", kept, "nested", len(doc.Sitemaps))
	}

	return paths, nil
}

// absoluteURL turns a possibly site-relative sitemap reference into a full URL.
func (c *crawler) absoluteURL(s string) string {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return c.site.Scheme + "://" + c.site.Host + s
}

func parseSitemap(smURL string, body []byte) (sitemapDoc, error) {
	// Handle .gz or gzip magic header.
	// Be tolerant: some servers serve a .gz URL but also apply Content-Encoding
	// gzip, in which case the body arrives already decompressed.
	tryGzip := strings.HasSuffix(strings.ToLower(smURL), ".gz") ||
		(len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b)
	if tryGzip {
		if gz, err := gzip.NewReader(bytes.NewReader(body)); err == nil {
			defer gz.Close()
			if unzipped, err := io.ReadAll(gz); err == nil {
				body = unzipped
			}
		}
	}

	var doc sitemapDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return sitemapDoc{}, fmt.Errorf("parse: %w", err)
	}

	// Some sitemaps include whitespace/newlines around locs.
	for i := range doc.URLs {
		doc.URLs[i] = strings.TrimSpace(doc.URLs[i])
	}
	for i := range doc.Sitemaps {
		doc.Sitemaps[i] = strings.TrimSpace(doc.Sitemaps[i])
	}
	return doc, nil
}
