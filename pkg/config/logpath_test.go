package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerSettings_ResolveLogPath(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	t.Run("Should return the static path without path settings", func(t *testing.T) {
		l := &LoggerSettings{Path: "mcp-agent.jsonl"}
		assert.Equal(t, "mcp-agent.jsonl", l.ResolveLogPath(now))
	})

	t.Run("Should substitute a formatted timestamp", func(t *testing.T) {
		l := &LoggerSettings{
			PathSettings: &LogPathSettings{
				PathPattern:     "logs/run-{unique_id}.jsonl",
				UniqueID:        "timestamp",
				TimestampFormat: "20060102_150405",
			},
		}

		assert.Equal(t, "logs/run-20250314_092653.jsonl", l.ResolveLogPath(now))
	})

	t.Run("Should substitute a session UUID", func(t *testing.T) {
		l := &LoggerSettings{
			PathSettings: &LogPathSettings{
				PathPattern: "logs/run-{unique_id}.jsonl",
				UniqueID:    "session_id",
			},
		}

		path := l.ResolveLogPath(now)

		require.True(t, strings.HasPrefix(path, "logs/run-"))
		require.True(t, strings.HasSuffix(path, ".jsonl"))
		id := strings.TrimSuffix(strings.TrimPrefix(path, "logs/run-"), ".jsonl")
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("Should fall back to default pattern and layout", func(t *testing.T) {
		l := &LoggerSettings{PathSettings: &LogPathSettings{}}

		path := l.ResolveLogPath(now)

		assert.Equal(t, "logs/mcp-agent-20250314_092653.jsonl", path)
	})

	t.Run("Should return empty for a nil receiver", func(t *testing.T) {
		var l *LoggerSettings
		assert.Empty(t, l.ResolveLogPath(now))
	})
}
