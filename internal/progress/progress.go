// Package progress reports long-running stage progress to the terminal or
// to the log.
package progress

import (
	"log/slog"
	"sync"
)

// Reporter receives progress for one stage at a time. Calls for a stage
// are Start, any number of Update, then Finish.
type Reporter interface {
	Start(stage string, total int)
	Update(done int)
	Finish()
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Start(string, int) {}
func (Nop) Update(int)        {}
func (Nop) Finish()           {}

// OrNop returns r, or a no-op reporter when r is nil.
func OrNop(r Reporter) Reporter {
	if r == nil {
		return Nop{}
	}
	return r
}

// Log writes a line each time a stage crosses another tenth of its total.
type Log struct {
	logger *slog.Logger

	mu     sync.Mutex
	stage  string
	total  int
	decile int
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Start(stage string, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stage, l.total, l.decile = stage, total, 0
	l.logger.Info("stage started", "stage", stage, "total", total)
}

func (l *Log) Update(done int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.total <= 0 {
		return
	}
	d := done * 10 / l.total
	if d > 10 {
		d = 10
	}
	if d > l.decile {
		l.decile = d
		l.logger.Info("progress", "stage", l.stage, "done", done, "total", l.total, "percent", d*10)
	}
}

func (l *Log) Finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Info("stage finished", "stage", l.stage)
}
