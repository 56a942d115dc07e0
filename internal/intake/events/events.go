// Package events publishes domain events about challenges and documents.
// Publishing is best effort: callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aussiebroadwan/leadflow/pkg/idx"
)

const (
	ChallengeSubmitted     = "challenge.submitted"
	ChallengeVerified      = "challenge.verified"
	ChallengeClaimed       = "challenge.claimed"
	ChallengeStatusChanged = "challenge.status_changed"
	DocumentUploaded       = "document.uploaded"
	DocumentDeleted        = "document.deleted"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`

	// Key orders events for one aggregate onto one partition.
	Key string `json:"-"`
}

// New stamps an event of type typ about the aggregate identified by key.
func New(typ, key string, data any) Event {
	now := time.Now().UTC()
	return Event{
		ID:         idx.NewAt(now).String(),
		Type:       typ,
		OccurredAt: now,
		Data:       data,
		Key:        key,
	}
}

func (e Event) Payload() ([]byte, error) { return json.Marshal(e) }

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the type of every recorded event, in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
