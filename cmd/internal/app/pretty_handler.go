package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// secretKeys are attribute keys whose values never reach the terminal.
var secretKeys = map[string]struct{}{
	"token":         {},
	"access_token":  {},
	"refresh_token": {},
	"password":      {},
	"authorization": {},
	"cookie":        {},
	"csrf":          {},
}

// prettyKeyAlias renames verbose keys in pretty output.
var prettyKeyAlias = map[string]string{
	"status_class": "class",
	"duration_ms":  "duration",
	"request_id":   "rid",
}

type levelStyle struct {
	tag   string
	color string
}

func styleFor(level slog.Level) levelStyle {
	switch {
	case level >= slog.LevelError:
		return levelStyle{"[ERROR]", ansiRed}
	case level >= slog.LevelWarn:
		return levelStyle{"[WARN]", ansiYellow}
	case level < slog.LevelInfo:
		return levelStyle{"[DEBUG]", ansiMagenta}
	default:
		return levelStyle{"[INFO]", ansiBlue}
	}
}

type prettyHandler struct {
	w      io.Writer
	opts   slog.HandlerOptions
	groups []string
	color  bool
	width  int
	mu     *sync.Mutex

	// pre holds attrs from WithAttrs, rendered under the groups open at that time.
	pre []string
}

// newPrettyHandler returns a key=value handler for terminals. Records wider
// than the terminal wrap onto indented continuation lines.
func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, color bool) slog.Handler {
	h := &prettyHandler{w: w, color: color, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	h.width = h.terminalWidth()
	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return level >= slog.LevelInfo
	}
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	style := styleFor(r.Level)
	segs := make([]string, 0, 4+len(h.pre)+r.NumAttrs())
	segs = append(segs,
		"ts="+h.paint(ansiDim, ts.Format("15:04:05.000")),
		"lvl="+h.paint(style.color, style.tag),
		"msg="+h.paint(ansiBright, r.Message),
	)
	if src := h.source(r.PC); src != "" {
		segs = append(segs, "src="+h.paint(ansiDim, src))
	}

	segs = append(segs, h.pre...)
	r.Attrs(func(a slog.Attr) bool {
		segs = h.appendAttr(segs, a, "")
		return true
	})

	width := h.width
	if width <= 0 {
		width = h.terminalWidth()
	}
	out := strings.Join(wrapSegments(segs, " ", width, "    "), "\n") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, out)
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.pre = append([]string{}, h.pre...)
	for _, a := range attrs {
		cp.pre = cp.appendAttr(cp.pre, a, "")
	}
	return &cp
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if strings.TrimSpace(name) == "" {
		return h
	}
	cp := *h
	cp.groups = append(append([]string{}, h.groups...), name)
	return &cp
}

func (h *prettyHandler) source(pc uintptr) string {
	if !h.opts.AddSource || pc == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}

func (h *prettyHandler) appendAttr(segs []string, a slog.Attr, parent string) []string {
	a.Value = a.Value.Resolve()
	key := strings.TrimSpace(a.Key)
	if key == "" || a.Equal(slog.Attr{}) {
		return segs
	}

	fullKey := key
	switch {
	case parent != "":
		fullKey = parent + "." + key
	case len(h.groups) > 0:
		fullKey = strings.Join(h.groups, ".") + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			segs = h.appendAttr(segs, ga, fullKey)
		}
		return segs
	}

	if alias, ok := prettyKeyAlias[fullKey]; ok {
		fullKey = alias
	}
	return append(segs, fullKey+"="+h.prettyValue(key, a.Value))
}

func (h *prettyHandler) prettyValue(key string, v slog.Value) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, secret := secretKeys[key]; secret {
		return redact(v.String())
	}

	switch key {
	case "method":
		return colorizeHTTPMethod(strings.ToUpper(strings.TrimSpace(v.String())), h.color)
	case "path", "url", "candidate":
		return h.paint(ansiCyan, quoteIfNeeded(strings.TrimSpace(v.String())))
	case "role":
		return h.paint(ansiMagenta, quoteIfNeeded(v.String()))
	case "status":
		if n, ok := valueToInt64(v); ok {
			return colorizeStatusCode(int(n), h.color)
		}
	case "status_class", "class":
		return colorizeStatusClass(strings.TrimSpace(v.String()), h.color)
	case "duration_ms":
		if n, ok := valueToInt64(v); ok {
			return colorizeDurationMS(n, h.color)
		}
	case "result", "outcome":
		return colorizeResult(strings.ToLower(strings.TrimSpace(v.String())), h.color)
	}
	return quoteIfNeeded(valueToString(v))
}

func (h *prettyHandler) paint(code, s string) string {
	if !h.color || code == "" {
		return s
	}
	return code + s + ansiReset
}

// redact keeps the first four bytes of values of 12 bytes or more.
func redact(s string) string {
	if len(s) < 12 {
		return "***"
	}
	return s[:4] + "***"
}

func valueToString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		return fmt.Sprint(v.Any())
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\r\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
