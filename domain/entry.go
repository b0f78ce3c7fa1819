package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of an activity entry.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// AnonymousUser is recorded as the user id when nobody is signed in.
const AnonymousUser = "anonymous"

// ParseLevel converts a case-insensitive level name into a Level.
// An empty string yields LevelInfo.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case "":
		return LevelInfo, nil
	case LevelDebug:
		return LevelDebug, nil
	case LevelInfo:
		return LevelInfo, nil
	case LevelWarn:
		return LevelWarn, nil
	case LevelError:
		return LevelError, nil
	default:
		return "", fmt.Errorf("level should be either: debug, info, warn, error, got %q", s)
	}
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}

// EntryContext is the ambient metadata captured when an entry is created.
type EntryContext struct {
	URL       string `json:"url"`        // Location the event originated from.
	UserAgent string `json:"user_agent"` // Client identification string.
	SessionID string `json:"session_id"` // Stable for the lifetime of one logger.
	UserID    string `json:"user_id"`    // Signed-in user, or AnonymousUser.
}

// Entry is a single activity event.
// Entries are built once by core.NewEntry and must not be modified afterwards;
// a retried or queued entry still carries the instant it was captured.
type Entry struct {
	ID        uuid.UUID      `json:"id"`        // UUIDv7, used by sinks to drop duplicate deliveries.
	Action    string         `json:"action"`    // Kind of event, e.g. "user_login".
	Data      map[string]any `json:"data"`      // Event details, opaque to the logger.
	Level     Level          `json:"level"`     // Severity of the event.
	Timestamp time.Time      `json:"timestamp"` // Capture time.
	Context   EntryContext   `json:"context"`   // Ambient metadata at capture time.
}
