// Package applog sets up the run-wide structured logger: a human
// readable console sink plus a JSON file sink, both at the configured
// level.
package applog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger writing to both stderr (console-formatted) and
// logPath (JSON lines), closing over logPath's *os.File for the
// lifetime of the process.
func New(logPath string, debug bool) (zerolog.Logger, *os.File, error) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	file, err := os.Create(logPath)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	writer := io.MultiWriter(console, file)

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return logger, file, nil
}
