// Package logging is the slog handler of the drmcheck command: elapsed
// time since start, then the message colored by level on a terminal or
// prefixed by a level header otherwise.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// LevelSilent is above every level a record is logged at.
const LevelSilent = slog.LevelError + 4

// LevelFromFlags returns the level selected by the verbosity flags:
//   - vv: [slog.LevelDebug]
//   - v: [slog.LevelInfo]
//   - q: [LevelSilent]
//   - (default: [slog.LevelWarn])
//
// The flags are evaluated in that order.
func LevelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return LevelSilent
	default:
		return slog.LevelWarn
	}
}

// ParseLevel accepts silent, error, warn, info and debug.
func ParseLevel(s string) (slog.Level, error) {
	if strings.EqualFold(s, "silent") {
		return LevelSilent, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

type style struct {
	header string
	color  termenv.ANSIColor
}

func levelStyle(l slog.Level) style {
	switch {
	case l >= slog.LevelError:
		return style{"[ERROR]", termenv.ANSIRed}
	case l >= slog.LevelWarn:
		return style{"[WARN]", termenv.ANSIYellow}
	case l >= slog.LevelInfo:
		return style{"[INFO]", termenv.ANSIBlue}
	}
	return style{"[DEBUG]", termenv.ANSIBrightBlack}
}

type Options struct {
	Level slog.Leveler

	// Color styles messages with ANSI escapes instead of level headers.
	Color bool

	// Start is the time elapsed time is measured from; zero means now.
	Start time.Time
}

// Handler is a slog.Handler writing one line per record.
type Handler struct {
	mu  *sync.Mutex
	w   io.Writer
	out *termenv.Output

	level slog.Leveler
	start time.Time
	now   func() time.Time

	prefix string
	attrs  string
}

func NewHandler(w io.Writer, opts *Options) *Handler {
	if opts == nil {
		opts = &Options{}
	}
	h := &Handler{
		mu:    &sync.Mutex{},
		w:     w,
		level: opts.Level,
		start: opts.Start,
		now:   time.Now,
	}
	if h.level == nil {
		h.level = slog.LevelInfo
	}
	if h.start.IsZero() {
		h.start = h.now()
	}
	if opts.Color {
		h.out = termenv.NewOutput(w, termenv.WithProfile(termenv.ANSI))
	}
	return h
}

// Setup installs a Handler on stderr as the default logger. Colors are
// only used when stderr is a terminal.
func Setup(level slog.Level, color bool) *slog.Logger {
	color = color && isatty.IsTerminal(os.Stderr.Fd())
	logger := slog.New(NewHandler(os.Stderr, &Options{Level: level, Color: color}))
	slog.SetDefault(logger)
	return logger
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	elapsed := h.now().Sub(h.start)
	if elapsed < 0 {
		elapsed = 0
	}
	ms := elapsed.Milliseconds()
	fmt.Fprintf(&b, "%02d:%02d:%02d.%03d ", ms/3600000, ms/60000%60, ms/1000%60, ms%1000)

	var msg strings.Builder
	msg.WriteString(r.Message)
	msg.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&msg, h.prefix, a)
		return true
	})

	st := levelStyle(r.Level)
	if h.out != nil {
		b.WriteString(h.out.String(msg.String()).Foreground(st.color).Bold().String())
	} else {
		b.WriteString(st.header)
		b.WriteByte(' ')
		b.WriteString(msg.String())
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	h2 := *h
	h2.attrs += b.String()
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix += name + "."
	return &h2
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, prefix, ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	s := a.Value.String()
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		s = strconv.Quote(s)
	}
	b.WriteString(s)
}
