package logger

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
)

// HandlerOptions configures the slog handler.
type HandlerOptions struct {
	Level  slog.Leveler
	Writer io.Writer
}

// Handler is a slog.Handler that writes one JSON object per record with a
// stable key order and the request id (when present) promoted to a top-level
// field.
type Handler struct {
	opts  HandlerOptions
	attrs []slog.Attr
	group string
	mu    *sync.Mutex
	out   io.Writer
}

// NewHandler creates a new Handler. A nil opts uses LevelInfo and stdout.
func NewHandler(opts *HandlerOptions) *Handler {
	h := &Handler{
		mu:  &sync.Mutex{},
		out: os.Stdout,
	}
	if opts != nil {
		h.opts = *opts
		if opts.Writer != nil {
			h.out = opts.Writer
		}
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}

	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := map[string]any{
		"time":  r.Time.Format("2006-01-02T15:04:05.000Z07:00"),
		"level": r.Level.String(),
		"msg":   r.Message,
	}

	for _, a := range h.attrs {
		putAttr(fields, h.group, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		putAttr(fields, h.group, a)

		return true
	})

	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(data)

	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)

	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.group = name

	return &clone
}

func putAttr(fields map[string]any, group string, a slog.Attr) {
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	fields[key] = a.Value.Resolve().Any()
}
