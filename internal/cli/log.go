package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with "HH:MM:SS.ms"
// timestamps. The server wraps it with per-request fields.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	}
	return log.NewWithOptions(w, opts)
}

var logFormats = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"logfmt": log.LogfmtFormatter,
	"json":   log.JSONFormatter,
}

// parseLogFormat maps a --log-format value to a formatter. Machine readable
// formats suit the server when its output is shipped to a log collector.
func parseLogFormat(name string) (log.Formatter, error) {
	if f, ok := logFormats[strings.ToLower(name)]; ok {
		return f, nil
	}
	names := make([]string, 0, len(logFormats))
	for n := range logFormats {
		names = append(names, n)
	}
	slices.Sort(names)
	return 0, fmt.Errorf("unknown log format %q (want one of %s)", name, strings.Join(names, ", "))
}

// progress measures one operation and logs its outcome with the elapsed
// time as a structured field.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// done logs msg at info level, e.g. `Collected root=g:a:1 dependencies=42 took=1.234s`.
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "took", p.elapsed())...)
}

type loggerKey struct{}

// withLogger attaches l to ctx for handlers further down the chain.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
