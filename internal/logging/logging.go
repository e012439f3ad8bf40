// Package logging holds the process-wide slog logger used by the plugin, the host and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

// Options configures the default logger
type Options struct {
	Level  string // debug, info (default), warn or error
	JSON   bool
	Output io.Writer // defaults to stderr
}

var def atomic.Value

func init() {
	def.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// Configure replaces the default logger
func Configure(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	cfg := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(out, cfg)
	} else {
		h = slog.NewTextHandler(out, cfg)
	}
	l := slog.New(h)
	def.Store(l)
	return l
}

// ParseLevel converts a level name to a slog.Level.  Unknown names give info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the default logger
func L() *slog.Logger {
	l, _ := def.Load().(*slog.Logger)
	return l
}

// EnvOptions gets the options from IMAGECDN_LOG_LEVEL and IMAGECDN_LOG_JSON
func EnvOptions() Options {
	json := false
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("IMAGECDN_LOG_JSON"))); err == nil {
		json = b
	}
	return Options{Level: os.Getenv("IMAGECDN_LOG_LEVEL"), JSON: json}
}

// InitFromEnv configures the default logger from the environment (see EnvOptions)
func InitFromEnv() *slog.Logger {
	return Configure(EnvOptions())
}
