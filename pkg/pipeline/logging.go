package pipeline

import (
	"context"
	"log/slog"
)

type runIDKey struct{}

func withRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the id of the run ctx belongs to, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// RunLogHandler tags records logged with a run context with its run_id, so
// stage logs from catalog, ledger and media can be grouped per run.
type RunLogHandler struct {
	next slog.Handler
}

// NewRunLogHandler wraps next.
func NewRunLogHandler(next slog.Handler) *RunLogHandler {
	return &RunLogHandler{next: next}
}

func (h *RunLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RunLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RunID(ctx); id != "" {
		r = r.Clone()
		r.AddAttrs(slog.String("run_id", id))
	}
	return h.next.Handle(ctx, r)
}

func (h *RunLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RunLogHandler{next: h.next.WithAttrs(attrs)}
}

func (h *RunLogHandler) WithGroup(name string) slog.Handler {
	return &RunLogHandler{next: h.next.WithGroup(name)}
}
