package sitediff

import (
	"net/http"
	"strconv"
	"strings"
)

// StatusFetchError marks a path whose fetch failed before any HTTP status was
// received (DNS failure, timeout, connection reset). It is a recorded result,
// not an error: the crawl continues past it.
const StatusFetchError = 0

type CacheEntry struct {
	Status    int
	Header    http.Header
	Body      []byte
	FetchedAt int64 // unix seconds
}

// IsHTML reports whether the entry's Content-Type is an HTML document worth
// feeding to the link extractor.
func (e CacheEntry) IsHTML() bool {
	ct := e.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(strings.ToLower(ct))
	return ct == "text/html" || ct == "application/xhtml+xml"
}

// Location returns the redirect target for 3xx entries, if any.
func (e CacheEntry) Location() (string, bool) {
	if e.Status < 300 || e.Status >= 400 {
		return "", false
	}
	loc := e.Header.Get("Location")
	return loc, loc != ""
}

// PageStatus is one site's verdict for a path in the comparison. Seen is false
// when the crawl of that site never discovered the path.
type PageStatus struct {
	Code int
	Seen bool
}

func (s PageStatus) String() string {
	if !s.Seen {
		return "absent"
	}
	if s.Code == StatusFetchError {
		return "error"
	}
	return strconv.Itoa(s.Code)
}

// Broken reports whether the path was seen but unusable: a 4xx/5xx status or a
// failed fetch.
func (s PageStatus) Broken() bool {
	return s.Seen && (s.Code == StatusFetchError || s.Code >= 400)
}

// OK reports whether the path was seen and served something navigable.
func (s PageStatus) OK() bool {
	return s.Seen && !s.Broken()
}

// ComparisonRow is one line of the report: a path and its status on each site.
type ComparisonRow struct {
	Path string
	A    PageStatus
	B    PageStatus
}
