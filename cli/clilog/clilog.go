// Package clilog builds the CLI's logger from flags.
package clilog

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/xerrors"
	"gopkg.in/natefinch/lumberjack.v2"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"
	"cdr.dev/slog/v3/sloggers/slogjson"

	"github.com/coder/secretcrypt/redact"
	"github.com/coder/serpent"
)

type (
	Option  func(*Builder)
	Builder struct {
		Filter  []string
		Human   string
		JSON    string
		Verbose bool
		// Keys are field names whose values are masked before any sink
		// sees them. A zero KeySet selects redact.DefaultKeys.
		Keys redact.KeySet
	}
)

func New(opts ...Option) *Builder {
	b := &Builder{
		Human: "/dev/stderr",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func WithFilter(filters ...string) Option {
	return func(b *Builder) {
		b.Filter = filters
	}
}

func WithHuman(loc string) Option {
	return func(b *Builder) {
		b.Human = loc
	}
}

func WithJSON(loc string) Option {
	return func(b *Builder) {
		b.JSON = loc
	}
}

func WithVerbose() Option {
	return func(b *Builder) {
		b.Verbose = true
	}
}

func WithKeys(keys redact.KeySet) Option {
	return func(b *Builder) {
		b.Keys = keys
	}
}

// Options binds the builder to logging flags.
func (b *Builder) Options() serpent.OptionSet {
	return serpent.OptionSet{
		{
			Name:          "Verbose",
			Description:   "Output debug-level logs.",
			Flag:          "verbose",
			FlagShorthand: "v",
			Env:           "SECRETCRYPT_VERBOSE",
			Default:       "false",
			Value:         serpent.BoolOf(&b.Verbose),
		},
		{
			Name:        "Human Log Location",
			Description: "Output human-readable logs to a given file.",
			Flag:        "log-human",
			Env:         "SECRETCRYPT_LOGGING_HUMAN",
			Default:     "/dev/stderr",
			Value:       serpent.StringOf(&b.Human),
		},
		{
			Name:        "JSON Log Location",
			Description: "Output JSON logs to a given file.",
			Flag:        "log-json",
			Env:         "SECRETCRYPT_LOGGING_JSON",
			Default:     "",
			Value:       serpent.StringOf(&b.JSON),
		},
		{
			Name:        "Log Filter",
			Description: "Filter debug logs by matching against a given regex. Use .* to match all debug logs.",
			Flag:        "log-filter",
			Env:         "SECRETCRYPT_LOG_FILTER",
			Value:       serpent.StringArrayOf(&b.Filter),
		},
	}
}

func (b *Builder) Build(inv *serpent.Invocation) (log slog.Logger, closeLog func(), err error) {
	var (
		sinks   = []slog.Sink{}
		closers = []func() error{}
	)
	defer func() {
		if err != nil {
			for _, closer := range closers {
				_ = closer()
			}
		}
	}()

	noopClose := func() {}

	addSinkIfProvided := func(sinkFn func(io.Writer) slog.Sink, loc string) {
		switch loc {
		case "":
		case "/dev/null":
		case "/dev/stdout":
			sinks = append(sinks, sinkFn(inv.Stdout))
		case "/dev/stderr":
			sinks = append(sinks, sinkFn(inv.Stderr))
		default:
			logWriter := &LumberjackWriteCloseFixer{Writer: &lumberjack.Logger{
				Filename: loc,
				MaxSize:  5, // MB
				// Without this, rotated logs will never be deleted.
				MaxBackups: 1,
			}}
			closers = append(closers, logWriter.Close)
			sinks = append(sinks, sinkFn(logWriter))
		}
	}
	addSinkIfProvided(sloghuman.Sink, b.Human)
	addSinkIfProvided(slogjson.Sink, b.JSON)

	filter := &debugFilterSink{next: sinks}
	err = filter.compile(b.Filter)
	if err != nil {
		return slog.Logger{}, noopClose, xerrors.Errorf("compile filters: %w", err)
	}

	level := slog.LevelInfo
	// Debug logging is always enabled if a filter is present.
	if b.Verbose || filter.re != nil {
		level = slog.LevelDebug
	}

	keys := b.Keys
	if keys.Len() == 0 {
		keys = redact.DefaultKeys
	}
	return slog.Make(&redactSink{next: filter, keys: keys}).Leveled(level), func() {
		for _, closer := range closers {
			_ = closer()
		}
	}, nil
}

var _ slog.Sink = &redactSink{}

// redactSink masks sensitive field values so that no sink ever receives
// credential material, whatever the caller passed.
type redactSink struct {
	next slog.Sink
	keys redact.KeySet
}

func (r *redactSink) LogEntry(ctx context.Context, ent slog.SinkEntry) {
	ent.Fields = redactFields(ent.Fields, r.keys)
	r.next.LogEntry(ctx, ent)
}

func (r *redactSink) Sync() {
	r.next.Sync()
}

// redactFields masks sensitive names at every depth of nested slog.Map
// values. fields is never modified; a copy is made on the first change.
func redactFields(fields slog.Map, keys redact.KeySet) slog.Map {
	out, _ := redactMap(fields, keys)
	return out
}

func redactMap(fields slog.Map, keys redact.KeySet) (slog.Map, bool) {
	var out slog.Map
	for i, f := range fields {
		var value any
		switch {
		case keys.Has(f.Name) && !redact.IsEmpty(f.Value):
			value = redact.Mask
		default:
			nested, ok := f.Value.(slog.Map)
			if !ok {
				continue
			}
			masked, changed := redactMap(nested, keys)
			if !changed {
				continue
			}
			value = masked
		}
		if out == nil {
			out = append(slog.Map(nil), fields...)
		}
		out[i].Value = value
	}
	if out == nil {
		return fields, false
	}
	return out, true
}

var _ slog.Sink = &debugFilterSink{}

type debugFilterSink struct {
	next []slog.Sink
	re   *regexp.Regexp
}

func (f *debugFilterSink) compile(res []string) error {
	if len(res) == 0 {
		return nil
	}

	var reb strings.Builder
	for i, re := range res {
		_, _ = fmt.Fprintf(&reb, "(%s)", re)
		if i != len(res)-1 {
			_, _ = reb.WriteRune('|')
		}
	}

	re, err := regexp.Compile(reb.String())
	if err != nil {
		return xerrors.Errorf("compile regex: %w", err)
	}
	f.re = re
	return nil
}

func (f *debugFilterSink) LogEntry(ctx context.Context, ent slog.SinkEntry) {
	if ent.Level == slog.LevelDebug {
		logName := strings.Join(ent.LoggerNames, ".")
		if f.re != nil && !f.re.MatchString(logName) && !f.re.MatchString(ent.Message) {
			return
		}
	}
	for _, sink := range f.next {
		sink.LogEntry(ctx, ent)
	}
}

func (f *debugFilterSink) Sync() {
	for _, sink := range f.next {
		sink.Sync()
	}
}

// LumberjackWriteCloseFixer is a wrapper around an io.WriteCloser that
// prevents writes after Close. This is necessary because lumberjack
// re-opens the file on Write.
type LumberjackWriteCloseFixer struct {
	Writer io.WriteCloser
	mu     sync.Mutex // Protects following.
	closed bool
}

func (c *LumberjackWriteCloseFixer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.Writer.Close()
}

func (c *LumberjackWriteCloseFixer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	return c.Writer.Write(p)
}
