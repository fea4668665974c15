package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"time"
)

// CIHandler wraps a JSON handler and stamps every record with the CI run it
// came from, plus a sub-second timestamp for ordering interleaved test output.
type CIHandler struct {
	next     slog.Handler
	ciAttrs  []slog.Attr
	withFunc bool
}

// NewCIHandler returns a CIHandler writing JSON to out. With opts.AddSource
// the calling function name is added next to the source location.
func NewCIHandler(out io.Writer, opts *slog.HandlerOptions) *CIHandler {
	var o slog.HandlerOptions
	if opts != nil {
		o = *opts
	}
	return &CIHandler{
		next:     slog.NewJSONHandler(out, &o),
		ciAttrs:  ciAttrs(),
		withFunc: o.AddSource,
	}
}

// Enabled implements slog.Handler.
func (h *CIHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// WithAttrs implements slog.Handler.
func (h *CIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.next = h.next.WithAttrs(attrs)
	return &c
}

// WithGroup implements slog.Handler.
func (h *CIHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.next = h.next.WithGroup(name)
	return &c
}

// Handle implements slog.Handler.
func (h *CIHandler) Handle(ctx context.Context, record slog.Record) error {
	r := record.Clone()

	if h.withFunc && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		r.AddAttrs(slog.String("source_func", frame.Function))
	}

	r.AddAttrs(h.ciAttrs...)
	r.AddAttrs(slog.Int64("timestamp_nano", r.Time.UnixNano()%int64(time.Second)))

	return h.next.Handle(ctx, r)
}

// ciEnvVars maps CI environment variables onto record keys.
var ciEnvVars = map[string]string{
	"GITHUB_WORKFLOW":   "ci_workflow",
	"GITHUB_RUN_ID":     "ci_run_id",
	"GITHUB_SHA":        "ci_commit",
	"GITHUB_REF_NAME":   "ci_ref",
	"GITHUB_REPOSITORY": "ci_repository",
}

func ciAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("ci", "true")}
	for env, key := range ciEnvVars {
		if value := os.Getenv(env); value != "" {
			attrs = append(attrs, slog.String(key, value))
		}
	}
	sort.Slice(attrs[1:], func(i, j int) bool { return attrs[i+1].Key < attrs[j+1].Key })
	return attrs
}

func isInCIEnvironment() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}
