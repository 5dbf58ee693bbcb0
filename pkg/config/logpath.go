package config

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const uniqueIDPlaceholder = "{unique_id}"

// ResolveLogPath returns the log file path to open at the given time.
//
// Without PathSettings the static Path is returned. With PathSettings, the
// {unique_id} placeholder in the pattern is replaced by either a timestamp
// formatted with the configured layout or a generated session UUID.
func (l *LoggerSettings) ResolveLogPath(now time.Time) string {
	if l == nil {
		return ""
	}
	if l.PathSettings == nil {
		return l.Path
	}
	ps := l.PathSettings
	pattern := ps.PathPattern
	if pattern == "" {
		pattern = DefaultLogPathSettings().PathPattern
	}
	var unique string
	switch ps.UniqueID {
	case "session_id":
		unique = uuid.NewString()
	default:
		layout := ps.TimestampFormat
		if layout == "" {
			layout = DefaultLogPathSettings().TimestampFormat
		}
		unique = now.Format(layout)
	}
	return strings.ReplaceAll(pattern, uniqueIDPlaceholder, unique)
}
