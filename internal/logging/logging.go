// Package logging builds the run logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"ecompipe/internal/config"
)

// New returns a logger writing to stderr and, when cfg.File is set, appending
// to that file as well. The returned closer releases the file; it is never nil.
func New(cfg config.Logging) (*logrus.Logger, io.Closer, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with the console writer replaced by w.
func NewWithWriter(cfg config.Logging, w io.Writer) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nopCloser{}, fmt.Errorf("logging: %w", err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	default:
		return nil, nopCloser{}, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	if cfg.File == "" {
		logger.SetOutput(w)
		return logger, nopCloser{}, nil
	}
	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nopCloser{}, fmt.Errorf("logging: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nopCloser{}, fmt.Errorf("logging: open %s: %w", cfg.File, err)
	}
	logger.SetOutput(io.MultiWriter(w, f))
	return logger, f, nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
