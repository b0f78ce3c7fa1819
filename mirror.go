package bridgelog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/tfkr-ae/bridgelog/domain"
)

const (
	// LocalLogsKey is the store key holding the mirrored entries.
	LocalLogsKey = "startupbridge_logs"
	// DefaultMirrorLimit is how many entries the mirror keeps.
	DefaultMirrorLimit = 100
)

var errUnreadableMirror = errors.New("decoding mirror")

// Mirror keeps the most recent entries as a JSON array under one key of a KeyValueStore.
// It is a diagnostic trail: delivered entries are never removed from it.
type Mirror struct {
	store domain.KeyValueStore
	key   string
	limit int

	mu sync.Mutex
}

func NewMirror(store domain.KeyValueStore, limit int) *Mirror {
	if limit < 1 {
		limit = DefaultMirrorLimit
	}
	return &Mirror{store: store, key: LocalLogsKey, limit: limit}
}

// Append adds entry, dropping the oldest entries beyond the limit.
// Stored contents that cannot be decoded are replaced and the returned error says so.
// When the store itself fails to read, nothing is written.
func (m *Mirror) Append(entry *domain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, readErr := m.read()
	if readErr != nil {
		if !errors.Is(readErr, errUnreadableMirror) {
			return readErr
		}
		entries = nil
	}

	entries = append(entries, entry)
	if len(entries) > m.limit {
		entries = entries[len(entries)-m.limit:]
	}

	encoded, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding mirror : %w", err)
	}
	if err := m.store.Set(m.key, string(encoded)); err != nil {
		return fmt.Errorf("writing mirror : %w", err)
	}
	if readErr != nil {
		return fmt.Errorf("discarded unreadable mirror : %w", readErr)
	}
	return nil
}

// Entries returns the mirrored entries, oldest first.
func (m *Mirror) Entries() ([]*domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read()
}

// Clear removes every mirrored entry.
func (m *Mirror) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Delete(m.key); err != nil {
		return fmt.Errorf("clearing mirror : %w", err)
	}
	return nil
}

func (m *Mirror) read() ([]*domain.Entry, error) {
	raw, ok, err := m.store.Get(m.key)
	if err != nil {
		return nil, fmt.Errorf("reading mirror : %w", err)
	}
	if !ok || raw == "" {
		return []*domain.Entry{}, nil
	}

	var entries []*domain.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("%w : %w", errUnreadableMirror, err)
	}
	return entries, nil
}
