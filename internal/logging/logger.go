// Package logging sets up structured logging with zerolog. The TUI owns
// the terminal while running, so logs go to a file rather than stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. It discards everything until Init
// is called with a usable destination.
var Logger = zerolog.New(io.Discard)

// Init routes logs to the given file path. An empty path leaves logging
// disabled. The returned closer flushes and closes the log file.
func Init(path, level string) (io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if path == "" {
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	Logger = zerolog.New(f).With().Timestamp().Logger()
	return f, nil
}
