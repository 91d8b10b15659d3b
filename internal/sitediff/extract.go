package sitediff

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/PuerkitoBio/purell"
)

const normalizationFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveFragment |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveEmptyQuerySeparator |
	purell.FlagRemoveTrailingSlash

// ExtractLinks returns the same-site paths linked from an HTML document, in
// document order, each at most once. Parsing is best effort: malformed markup
// never fails the page, it just yields whatever links were recognizable.
func ExtractLinks(body []byte, base *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var out []string
	seen := map[string]struct{}{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		path, ok := normalizePath(base, href)
		if !ok {
			return
		}
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	})
	return out
}

// normalizePath resolves href against the page URL and reduces it to the
// site-relative path used as the dedup key. ok is false for links that leave
// the site: other hosts or ports, non-http schemes, and mailto-style hrefs
// whose path carries an "@". Fragments and query strings are dropped, so
// "/a?x=1" and "/a#top" both key as "/a".
func normalizePath(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(u.Host, base.Host) {
		return "", false
	}
	if strings.Contains(u.Path, "@") {
		return "", false
	}

	// NormalizeURL modifies its argument; u is a fresh value here.
	norm, err := url.Parse(purell.NormalizeURL(u, normalizationFlags))
	if err != nil {
		return "", false
	}
	path := norm.EscapedPath()
	if path == "" {
		path = "/"
	}
	return path, true
}

// rootPath reduces the configured site URL to its own normalized path, the
// first frontier entry of a crawl.
func rootPath(site *url.URL) string {
	u := *site
	norm, err := url.Parse(purell.NormalizeURL(&u, normalizationFlags))
	if err != nil || norm.EscapedPath() == "" {
		return "/"
	}
	return norm.EscapedPath()
}
