package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lastmile-ai/mcp-agent-go/pkg/config"
)

// SetupFromSettings configures the package default logger from resolved
// logger settings.
//
// Transport mapping: "none" discards output, "file" appends to the resolved
// log path as JSON lines, everything else writes human-readable text to
// stderr. HTTP event shipping is handled by a separate transport and falls
// back to console output here.
func SetupFromSettings(s *config.LoggerSettings) error {
	if s == nil {
		s = config.DefaultLoggerSettings()
	}

	cfg := &Config{
		Level:      LogLevel(s.Level),
		TimeFormat: "15:04:05",
	}

	switch s.Type {
	case "none":
		cfg.Output = io.Discard
	case "file":
		path := s.ResolveLogPath(time.Now())
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cfg.Output = f
		cfg.JSON = true
	default:
		cfg.Output = os.Stderr
	}

	Init(cfg)
	return nil
}
