package monitoring

import (
	"log/slog"
	"math"
	"sync"
)

// ProgressFunc receives stage progress: done units out of total.
type ProgressFunc func(stage string, done, total int)

// Progress logs percentage-complete events, at most one per whole percent.
// It is safe for concurrent use.
type Progress struct {
	mu   sync.Mutex
	log  *slog.Logger
	last map[string]int
}

// NewProgress returns a reporter that writes to log.
func NewProgress(log *slog.Logger) *Progress {
	return &Progress{log: log, last: make(map[string]int)}
}

// Report records progress for stage and logs it when the whole percentage
// changes.
func (p *Progress) Report(stage string, done, total int) {
	if total <= 0 {
		return
	}
	pct := int(math.Floor(100 * float64(done) / float64(total)))

	p.mu.Lock()
	prev, seen := p.last[stage]
	if seen && pct <= prev {
		p.mu.Unlock()
		return
	}
	p.last[stage] = pct
	p.mu.Unlock()

	p.log.Info("progress",
		slog.String("stage", stage),
		slog.Int("percent", pct),
		slog.Int("done", done),
		slog.Int("total", total))
}

// Func adapts the reporter to a ProgressFunc.
func (p *Progress) Func() ProgressFunc {
	return p.Report
}
