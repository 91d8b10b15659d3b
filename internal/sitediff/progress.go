package sitediff

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"go.uber.org/zap"
)

// progressReporter shows crawl progress: an animated spinner when stderr is a
// terminal, a rate-limited log line otherwise. A nil reporter is silent.
type progressReporter struct {
	spin *spinner.Spinner
	rl   *rateLimitedLogger
	site string
}

func newProgressReporter(log *zap.SugaredLogger, interactive bool) *progressReporter {
	p := &progressReporter{}
	if interactive {
		p.spin = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	} else {
		p.rl = newRateLimitedLogger(log, 5*time.Second)
	}
	return p
}

func (p *progressReporter) Start(site string) {
	if p == nil {
		return
	}
	p.site = site
	if p.spin != nil {
		p.spin.Suffix = fmt.Sprintf(" crawling %s", site)
		p.spin.Start()
	}
}

func (p *progressReporter) Update(fetched, queued int, path string) {
	if p == nil {
		return
	}
	if p.spin != nil {
		p.spin.Suffix = fmt.Sprintf(" crawling %s: %d fetched, %d queued (%s)", p.site, fetched, queued, path)
		return
	}
	p.rl.Infow("crawl progress", "site", p.site, "fetched", fetched, "queued", queued, "path", path)
}

func (p *progressReporter) Stop() {
	if p == nil {
		return
	}
	if p.spin != nil {
		p.spin.Stop()
	}
}
