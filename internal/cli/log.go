package cli

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svglayers/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stageReporter receives pipeline stage events, logs them at debug level
// and keeps the spinner message in sync with the running stage.
type stageReporter struct {
	observability.NoopPipelineHooks

	logger  *log.Logger
	spinner *Spinner

	mu       sync.Mutex
	failures map[string]int
}

func newStageReporter(l *log.Logger, s *Spinner) *stageReporter {
	return &stageReporter{logger: l, spinner: s, failures: make(map[string]int)}
}

func (r *stageReporter) OnStageStart(_ context.Context, stage string) {
	if r.spinner != nil {
		r.spinner.SetMessage(stage + "...")
	}
}

func (r *stageReporter) OnStageComplete(_ context.Context, stage string, changes int, d time.Duration, err error) {
	if err != nil {
		r.logger.Warn("stage failed", "stage", stage, "err", err)
		return
	}
	r.logger.Debug("stage done", "stage", stage, "changes", changes, "duration", d.Round(time.Microsecond))
}

func (r *stageReporter) OnNodeFailure(_ context.Context, _, op, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op+" "+code]++
}

// Failures returns the number of recovered node failures by "op CODE".
func (r *stageReporter) Failures() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.failures))
	for k, v := range r.failures {
		out[k] = v
	}
	return out
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
