// Package logger configures the process-wide structured slog logger and the
// context helpers used to correlate events with Telegram updates and reviews.
package logger

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/reviewbot/core/buildinfo"
	coreconfig "github.com/m3rciful/reviewbot/core/config"
)

var (
	initOnce sync.Once

	closeMu sync.Mutex
	closed  bool

	sink      *asyncWriter
	fileSinks []io.Closer

	levelVar     slog.LevelVar
	debugSampler = newRatioSampler(1, 50)

	// L is the root logger. It is nil until InitLogger runs.
	L *slog.Logger
)

type options struct {
	level    slog.Level
	format   logFormat
	order    []string
	keep     int
	every    int
	filePath string
	profile  string
}

// InitLogger installs the structured logger as the slog default. Only the
// first call has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		err = setup(resolveOptions(cfg))
	})
	return err
}

func setup(opts options) error {
	levelVar.Set(opts.level)
	debugSampler.Set(opts.keep, opts.every)

	outputs := []io.Writer{os.Stdout}
	if opts.filePath != "" {
		f, err := openLogFile(opts.filePath)
		if err != nil {
			// stdout still works, so a broken file sink is not fatal
			log.Printf("logger: %v", err)
		} else {
			outputs = append(outputs, f)
			fileSinks = append(fileSinks, f)
		}
	}
	sink = newAsyncWriter(outputs, 64<<10)

	L = slog.New(newStructuredHandler(handlerConfig{
		level:    &levelVar,
		writer:   sink,
		format:   opts.format,
		keyOrder: opts.order,
	}))
	slog.SetDefault(L)

	L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
		slog.String("component", "app"),
		slog.String("event", "startup"),
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("profile", opts.profile),
	)
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func resolveOptions(cfg *coreconfig.Config) options {
	opts := options{
		level:   slog.LevelInfo,
		format:  formatJSON,
		order:   defaultKeyOrder,
		keep:    1,
		every:   50,
		profile: "prod",
	}
	if cfg == nil {
		return opts
	}
	lc := cfg.Logging
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		opts.profile = p
	}
	opts.format = parseFormat(lc.Format, opts.profile)
	opts.level = parseLevel(lc.Level)
	opts.order = parseKeyOrder(lc.KeysOrder)
	opts.keep, opts.every = parseDebugSample(lc.DebugSample)
	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		opts.filePath = filepath.Join(dir, name)
	}
	return opts
}

func parseFormat(raw, profile string) logFormat {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	if profile == "debug" || profile == "dev" {
		return formatKV
	}
	return formatJSON
}

func parseLevel(raw string) slog.Level {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "warning") {
		return slog.LevelWarn
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseKeyOrder(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return defaultKeyOrder
	}
	var order []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			order = append(order, k)
		}
	}
	if len(order) == 0 {
		return defaultKeyOrder
	}
	return order
}

// Shutdown flushes buffered output and closes file sinks.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	if sink != nil {
		errs = append(errs, sink.Close())
	}
	for _, c := range fileSinks {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Component returns a logger tagged with the given component.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Log writes one event through l, falling back to the logger stored in ctx
// and then to the root logger.
func Log(ctx context.Context, l *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if l == nil {
		l = FromContext(ctx)
	}
	if l == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	l.LogAttrs(ctx, level, "", attrs...)
}

func logAt(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	l := Component(component)
	if l == nil {
		if l = FromContext(ctx); l != nil && component != "" {
			l = l.With("component", component)
		}
	}
	Log(ctx, l, level, event, attrs...)
}

// Debug logs a debug event for component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	logAt(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info event for component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	logAt(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warning event for component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	logAt(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error event for component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	logAt(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug event should be written.
func ShouldSampleDebug() bool {
	return debugSampler.Allow()
}
