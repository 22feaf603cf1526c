// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog loggers used across shopassist.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects where and how logs are written.
type Options struct {
	// Level is a zerolog level name; unknown values fall back to info.
	Level string

	// Format is "console" or "json".
	Format string

	// File, when set, receives the log instead of Out. The TUI always logs
	// to a file because stdout belongs to the terminal UI.
	File string

	// Out is used when File is empty. Defaults to stderr.
	Out io.Writer
}

// New creates the root logger. The returned closer releases the log file, if
// one was opened, and is never nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	var closer io.Closer = nopCloser{}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}

	if !strings.EqualFold(opts.Format, "json") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    opts.File != "",
		}
	}

	logger := zerolog.New(out).
		With().
		Timestamp().
		Str("service", "shopassist").
		Logger().
		Level(ParseLevel(opts.Level))
	return logger, closer, nil
}

// ParseLevel converts a level name, defaulting to info.
func ParseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Component returns a child logger tagged with the component name.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
