package logger

import (
	"io"
	"log/slog"
	"os"
)

// Format selects the handler encoding.
type Format int

const (
	// JSON is for the API server, where logs are collected.
	JSON Format = iota
	// Text is for the command line, where logs are read by a person.
	Text
)

type options struct {
	out    io.Writer
	format Format
	source bool
}

// Option configures New.
type Option func(*options)

// WithOutput sends log records to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithFormat selects JSON or text records.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

// WithoutSource drops the source location attribute.
func WithoutSource() Option {
	return func(o *options) { o.source = false }
}

// New returns a structured logger, JSON on stdout with source location by
// default. Level should be a valid slog level string: DEBUG, INFO, WARN, ERROR.
// Unrecognized values default to ERROR.
func New(level string, opts ...Option) *slog.Logger {
	o := options{out: os.Stdout, format: JSON, source: true}
	for _, opt := range opts {
		opt(&o)
	}

	handlerOpts := &slog.HandlerOptions{
		AddSource: o.source,
		Level:     ParseLevel(level),
	}
	if o.format == Text {
		return slog.New(slog.NewTextHandler(o.out, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(o.out, handlerOpts))
}

// ParseLevel parses a slog level name, falling back to ERROR.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelError
	}
	return lvl
}
