// Package sink contains the remote sinks an activity logger can deliver to:
// a direct client of the activity store and a REST client of the sink server.
package sink

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tfkr-ae/bridgelog/core"
	"github.com/tfkr-ae/bridgelog/domain"
)

// Payload is the JSON body of POST /api/activity.
// Every field except Action is optional on the wire; the server fills defaults.
type Payload struct {
	ID        string         `json:"id,omitempty"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data,omitempty"`
	Level     string         `json:"level,omitempty"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	URL       string         `json:"url,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
}

// NewPayload flattens an entry into its wire form.
func NewPayload(entry *domain.Entry) Payload {
	ts := entry.Timestamp
	return Payload{
		ID:        entry.ID.String(),
		Action:    entry.Action,
		Data:      entry.Data,
		Level:     string(entry.Level),
		Timestamp: &ts,
		URL:       entry.Context.URL,
		UserAgent: entry.Context.UserAgent,
		SessionID: entry.Context.SessionID,
		UserID:    entry.Context.UserID,
	}
}

// Entry validates the payload and rebuilds the entry it describes.
// Missing values are taken from fallback (id, timestamp, URL, user agent).
func (p Payload) Entry(fallback domain.EntryContext) (*domain.Entry, error) {
	level, err := domain.ParseLevel(p.Level)
	if err != nil {
		return nil, err
	}

	ctx := domain.EntryContext{
		URL:       p.URL,
		UserAgent: p.UserAgent,
		SessionID: p.SessionID,
		UserID:    p.UserID,
	}
	if ctx.URL == "" {
		ctx.URL = fallback.URL
	}
	if ctx.UserAgent == "" {
		ctx.UserAgent = fallback.UserAgent
	}

	options := []func(*domain.Entry) error{core.EntryWithContext(ctx)}
	if p.ID != "" {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing id %q : %w", p.ID, err)
		}
		options = append(options, core.EntryWithID(id))
	}
	if p.Timestamp != nil {
		options = append(options, core.EntryWithTimestamp(*p.Timestamp))
	}

	return core.NewEntry(p.Action, p.Data, level, options...)
}
