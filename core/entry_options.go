// Package core provides the building blocks shared by the logger and the sink server.
// This file contains entry construction and the option functions for customizing it.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/tfkr-ae/bridgelog/domain"
)

// UnserializableKey is the data key used when an entry's payload could not be encoded.
const UnserializableKey = "unserializable"

// NewEntry builds an entry for action at level, applying options in order.
// The entry gets a fresh UUIDv7 and the current time unless an option overrides them.
// data is shallow-copied; callers holding nested values pass it through SanitizeData first.
func NewEntry(action string, data map[string]any, level domain.Level, options ...func(entry *domain.Entry) error) (*domain.Entry, error) {
	if action == "" {
		return nil, errors.New("action is required")
	}
	if !level.Valid() {
		return nil, fmt.Errorf("invalid level %q", level)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}

	entry := &domain.Entry{
		ID:        id,
		Action:    action,
		Data:      maps.Clone(data),
		Level:     level,
		Timestamp: time.Now().UTC(),
	}
	if entry.Data == nil {
		entry.Data = make(map[string]any)
	}

	for _, option := range options {
		if err := option(entry); err != nil {
			return nil, fmt.Errorf("applying option on entry %s : %w", action, err)
		}
	}

	if entry.Context.UserID == "" {
		entry.Context.UserID = domain.AnonymousUser
	}
	return entry, nil
}

// SanitizeData returns a deep copy of data in its JSON form: nested maps and
// slices are fresh values and numbers are float64. When data cannot be encoded,
// a marker map holding the encoding error is returned along with the error.
func SanitizeData(data map[string]any) (map[string]any, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return map[string]any{UnserializableKey: err.Error()}, fmt.Errorf("encoding entry data : %w", err)
	}

	copied := make(map[string]any, len(data))
	if err := json.Unmarshal(encoded, &copied); err != nil {
		return map[string]any{UnserializableKey: err.Error()}, fmt.Errorf("decoding entry data : %w", err)
	}
	if copied == nil {
		copied = make(map[string]any)
	}
	return copied, nil
}

// EntryWithContext is an option to set the ambient context of an entry.
func EntryWithContext(context domain.EntryContext) func(entry *domain.Entry) error {
	return func(entry *domain.Entry) error {
		entry.Context = context
		return nil
	}
}

// EntryWithTimestamp is an option to set the capture time of an entry.
func EntryWithTimestamp(timestamp time.Time) func(entry *domain.Entry) error {
	return func(entry *domain.Entry) error {
		if timestamp.IsZero() {
			return errors.New("timestamp is zero")
		}
		entry.Timestamp = timestamp.UTC()
		return nil
	}
}

// EntryWithID is an option to keep an ID assigned elsewhere, e.g. by the client that captured the entry.
func EntryWithID(id uuid.UUID) func(entry *domain.Entry) error {
	return func(entry *domain.Entry) error {
		if id == uuid.Nil {
			return errors.New("id is nil")
		}
		entry.ID = id
		return nil
	}
}
