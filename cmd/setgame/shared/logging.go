// Package shared holds helpers used by every setgame command.
package shared

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger builds the application logger writing to w.
func SetupLogger(w io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
}

// OpenLogFile truncates and opens path for logging. Interactive commands
// log to a file so the terminal UI is not corrupted.
func OpenLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
