package logcapture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// CodeKey is the attribute routed to PartCode instead of PartInfo.
const CodeKey = "code"

// DefaultCode is captured in PartCode when a record carries no code.
const DefaultCode = "0"

// HandlerOptions configures the capture handler.
type HandlerOptions struct {
	// Level is the minimum level captured. Defaults to slog.LevelDebug so
	// tests see everything the library emits.
	Level slog.Leveler
}

// Handler returns a slog.Handler that writes into s.
func (s *Sink) Handler(opts *HandlerOptions) slog.Handler {
	h := &captureHandler{sink: s, level: slog.LevelDebug}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Logger is shorthand for slog.New(s.Handler(nil)).
func (s *Sink) Logger() *slog.Logger {
	return slog.New(s.Handler(nil))
}

// boundAttr is an attribute bound with WithAttrs, plus the group prefix
// that was open at the time.
type boundAttr struct {
	attr   slog.Attr
	prefix string
}

type captureHandler struct {
	sink   *Sink
	level  slog.Leveler
	attrs  []boundAttr // pre-bound via WithAttrs
	groups []string
}

func (h *captureHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle appends one entry to every part so the four channels stay aligned.
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	code := DefaultCode
	var info []string

	collect := func(a slog.Attr, prefix string) {
		flattenAttr(a, prefix, func(key string, v slog.Value) {
			if key == CodeKey {
				code = v.String()
				return
			}
			info = append(info, key+"="+formatValue(v))
		})
	}

	for _, b := range h.attrs {
		collect(b.attr, b.prefix)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		collect(a, prefix)
		return true
	})

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	h.sink.appendLocked(PartLevel, r.Level.String())
	h.sink.appendLocked(PartMessage, r.Message)
	h.sink.appendLocked(PartInfo, strings.Join(info, " "))
	h.sink.appendLocked(PartCode, code)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	prefix := strings.Join(h.groups, ".")
	next := h.clone()
	for _, a := range attrs {
		next.attrs = append(next.attrs, boundAttr{attr: a, prefix: prefix})
	}
	return next
}

func (h *captureHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *captureHandler) clone() *captureHandler {
	return &captureHandler{
		sink:   h.sink,
		level:  h.level,
		attrs:  append([]boundAttr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

// flattenAttr walks group attributes, qualifying keys with dots.
// The code attribute is only recognized at the top level.
func flattenAttr(a slog.Attr, prefix string, emit func(key string, v slog.Value)) {
	v := a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	switch {
	case prefix == "":
	case key == "":
		key = prefix
	default:
		key = prefix + "." + key
	}

	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			flattenAttr(ga, key, emit)
		}
		return
	}
	emit(key, v)
}

func formatValue(v slog.Value) string {
	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
