package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// infoFieldLimit caps how many fields an INFO line shows; DEBUG shows all.
const infoFieldLimit = 6

const consoleTimeLayout = "15:04:05"

// consoleHandler renders one line per record:
//
//	12:04:05 INFO  [archive] 1a2b3c4d packing stems-03.zip: archive written size=940 KiB members=4
type consoleHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	opts   slog.HandlerOptions
	attrs  []field
	prefix string
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, opts: *opts}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendFlattened(fields, h.prefix, attr)
		return true
	})

	// Subject fields move to the front of the line; later values win.
	subject := map[string]string{}
	rest := fields[:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent, FieldRunID, FieldStage, FieldArchive:
			subject[f.key] = f.value.Resolve().String()
		default:
			rest = append(rest, f)
		}
	}
	rest = lastWins(rest)

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	fmt.Fprintf(&b, " %-5s", levelLabel(record.Level))
	if c := subject[FieldComponent]; c != "" {
		b.WriteString(" [" + c + "]")
	}
	if id := subject[FieldRunID]; id != "" {
		b.WriteString(" " + shortRunID(id))
	}
	for _, key := range []string{FieldStage, FieldArchive} {
		if v := subject[key]; v != "" {
			b.WriteString(" " + v)
		}
	}
	b.WriteString(": ")
	b.WriteString(strings.TrimSpace(record.Message))

	limit := len(rest)
	if record.Level >= slog.LevelInfo {
		limit = min(limit, infoFieldLimit)
	}
	for _, f := range rest[:limit] {
		b.WriteString(" " + f.key + "=" + renderValue(f.value))
	}
	if hidden := len(rest) - limit; hidden > 0 {
		fmt.Fprintf(&b, " (+%d)", hidden)
	}
	if h.opts.AddSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&b, " @%s:%d", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]field(nil), h.attrs...)
	for _, attr := range attrs {
		clone.attrs = appendFlattened(clone.attrs, h.prefix, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func appendFlattened(dst []field, prefix string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = prefix + attr.Key + "."
		}
		for _, inner := range value.Group() {
			dst = appendFlattened(dst, next, inner)
		}
		return dst
	}
	return append(dst, field{key: prefix + attr.Key, value: value})
}

// lastWins drops earlier duplicates of a key, keeping the first position.
func lastWins(fields []field) []field {
	index := make(map[string]int, len(fields))
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func renderValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().Local().Format(time.DateTime)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
