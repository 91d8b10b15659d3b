package sitediff

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// rateLimitedLogger drops all but the first Infow within each interval, so a
// busy crawl loop can report progress without flooding the output.
type rateLimitedLogger struct {
	log      *zap.SugaredLogger
	interval time.Duration

	mu     sync.Mutex
	lastAt time.Time
}

func newRateLimitedLogger(log *zap.SugaredLogger, interval time.Duration) *rateLimitedLogger {
	return &rateLimitedLogger{log: log, interval: interval}
}

func (l *rateLimitedLogger) Infow(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if !l.lastAt.IsZero() && now.Sub(l.lastAt) < l.interval {
		return
	}
	l.lastAt = now
	l.log.Infow(msg, keysAndValues...)
}
