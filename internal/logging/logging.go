// Package logging builds the zerolog logger shared by the service and
// adapts it to gin.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
)

// Options configures New. File enables an additional rotated JSON log
// file; Out overrides the console destination (stderr by default).
type Options struct {
	Level string
	File  string
	Debug bool
	Out   io.Writer
}

// New returns a logger writing human-friendly lines to the console and,
// optionally, JSON lines to a rotated file.
func New(opts Options) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		if opts.Level != "" {
			fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", opts.Level)
		}
		lvl = zerolog.InfoLevel
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	writers := []io.Writer{
		zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = out
			w.TimeFormat = time.Kitchen
		}),
	}

	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).Level(lvl).With().Timestamp()
	if opts.Debug {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// GinWriter forwards gin's plain text output to zerolog events.
type GinWriter struct {
	logger zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}
	w.logger.WithLevel(w.level).Msg(msg)
	return len(p), nil
}
