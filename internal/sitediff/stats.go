package sitediff

import "math"

// crawlStats aggregates one site's crawl. The crawl loop is sequential, so
// plain counters are enough.
type crawlStats struct {
	pages       uint64
	cacheHits   uint64
	netFetches  uint64
	fetchErrors uint64
	broken      uint64

	totalBodyBytes uint64
	minBodyBytes   uint64
	maxBodyBytes   uint64
}

func newCrawlStats() *crawlStats {
	return &crawlStats{minBodyBytes: math.MaxUint64}
}

func (s *crawlStats) Observe(ent CacheEntry, cached bool) {
	s.pages++
	if cached {
		s.cacheHits++
	} else {
		s.netFetches++
	}
	switch {
	case ent.Status == StatusFetchError:
		s.fetchErrors++
	case ent.Status >= 400:
		s.broken++
	}

	n := uint64(len(ent.Body))
	s.totalBodyBytes += n
	if n < s.minBodyBytes {
		s.minBodyBytes = n
	}
	if n > s.maxBodyBytes {
		s.maxBodyBytes = n
	}
}

type statsSnapshot struct {
	Pages       uint64
	CacheHits   uint64
	NetFetches  uint64
	FetchErrors uint64
	Broken      uint64

	TotalBodyBytes uint64
	MinBodyBytes   uint64
	MaxBodyBytes   uint64
	AvgBodyBytes   uint64
}

func (s *crawlStats) Snapshot() statsSnapshot {
	if s.pages == 0 {
		return statsSnapshot{}
	}
	minv := s.minBodyBytes
	if minv == math.MaxUint64 {
		minv = 0
	}
	return statsSnapshot{
		Pages:          s.pages,
		CacheHits:      s.cacheHits,
		NetFetches:     s.netFetches,
		FetchErrors:    s.fetchErrors,
		Broken:         s.broken,
		TotalBodyBytes: s.totalBodyBytes,
		MinBodyBytes:   minv,
		MaxBodyBytes:   s.maxBodyBytes,
		AvgBodyBytes:   s.totalBodyBytes / s.pages,
	}
}
