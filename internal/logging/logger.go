package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/kingrea/bootstrap/internal/config"
)

// Logger writes launcher diagnostics. Lines go to stderr unless a log file
// is configured, in which case they are appended there with timestamps so a
// failed boot can be inspected after the process is gone.
type Logger struct {
	*log.Logger
	file *os.File
}

// New builds the launcher logger from cfg. Debug enables debug lines;
// otherwise only warnings and errors are written.
func New(cfg *config.Config, stderr io.Writer) (*Logger, error) {
	level := log.WarnLevel
	if cfg != nil && cfg.Debug {
		level = log.DebugLevel
	}
	opts := log.Options{Level: level, Prefix: "bootstrap"}
	if cfg == nil || cfg.LogFile == "" {
		return &Logger{Logger: log.NewWithOptions(stderr, opts)}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	opts.ReportTimestamp = true
	return &Logger{Logger: log.NewWithOptions(f, opts), file: f}, nil
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
