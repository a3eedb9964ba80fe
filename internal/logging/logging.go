package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options select where log records go.
type Options struct {
	// File receives JSON records. Empty disables file output.
	File string
	// Level is one of debug, info, warn or error. Unknown values mean info.
	Level string
	// LogstashAddr mirrors every record to a Logstash TCP input when set.
	LogstashAddr string
}

// New builds the application logger. The returned closer releases the log
// file and the Logstash connection.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var (
		writers []io.Writer
		closers multiCloser
	)

	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, file)
		closers = append(closers, file)
	}

	if addr := strings.TrimSpace(opts.LogstashAddr); addr != "" {
		ls := newLogstashSink(addr)
		writers = append(writers, ls)
		closers = append(closers, ls)
	}

	if len(writers) == 0 {
		return slog.New(slog.DiscardHandler), closers, nil
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	return slog.New(handler).With("app", "sixcities"), closers, nil
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
