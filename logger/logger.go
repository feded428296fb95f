//go:build linux
// +build linux

// Package logger builds the console logger used by the server binary.
package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TimeFormat is the timestamp layout of console lines.
const TimeFormat = "2006-01-02 15:04:05"

// New returns a human readable logger writing to w. An unknown level falls
// back to info.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	// Force all timestamps to be in UTC.
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: TimeFormat,
		NoColor:    true,
	}

	return zerolog.New(consoleWriter).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
