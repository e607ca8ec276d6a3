// Package session is the append-only journal of wizard sessions. Every
// controller action is published to JetStream and a session's history is
// rebuilt by reducing its events.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/rentalwizard/internal/logger"
	"github.com/mark3labs/rentalwizard/internal/nats"
	"github.com/nats-io/nats.go/jetstream"
)

var log = logger.Named("session")

// Event is one journal entry.
type Event struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Session   string          `json:"session"`        // Draft key or slug
	Type      string          `json:"type"`           // lifecycle, navigation, edit, save
	Action    string          `json:"action"`         // start, next, update, saved, ...
	Meta      json.RawMessage `json:"meta,omitempty"` // Action-specific metadata
	Data      string          `json:"data,omitempty"` // Primary payload (category, error text, ...)
}

// Actions recorded by the wizard.
const (
	ActionStart       = "start"
	ActionPublish     = "publish"
	ActionCancel      = "cancel"
	ActionGoTo        = "goto"
	ActionNext        = "next"
	ActionPrev        = "prev"
	ActionBlocked     = "blocked"
	ActionUpdate      = "update"
	ActionSetCategory = "set_category"
	ActionSaved       = "saved"
	ActionFailed      = "failed"
)

// NewEvent builds an event, marshaling meta when it is not nil.
func NewEvent(session, eventType, action, data string, meta any) Event {
	e := Event{Session: session, Type: eventType, Action: action, Data: data}
	if meta != nil {
		if raw, err := json.Marshal(meta); err == nil {
			e.Meta = raw
		}
	}
	return e
}

// Store publishes and reads journal events.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewStore creates a Store over the journal stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream}
}

// PublishEvent appends an event to the journal. The ID and timestamp are
// filled in when empty.
func (s *Store) PublishEvent(ctx context.Context, event Event) (*jetstream.PubAck, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForEvent(event.Session, event.Type)
	log.Debug("publishing event: session=%s type=%s action=%s", event.Session, event.Type, event.Action)

	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		log.Error("failed to publish event to subject %s: %v", subject, err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}
	return ack, nil
}

// Record publishes an event and discards the ack.
func (s *Store) Record(ctx context.Context, event Event) error {
	_, err := s.PublishEvent(ctx, event)
	return err
}

// Sessions lists the sessions that have journal entries, sorted by name.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	info, err := s.stream.Info(ctx, jetstream.WithSubjectFilter(nats.JournalSubjects))
	if err != nil {
		return nil, fmt.Errorf("failed to read stream info: %w", err)
	}

	seen := make(map[string]bool)
	for subject := range info.State.Subjects {
		parts := strings.Split(subject, ".")
		if len(parts) == 4 {
			seen[parts[2]] = true
		}
	}

	sessions := make([]string, 0, len(seen))
	for name := range seen {
		sessions = append(sessions, name)
	}
	sort.Strings(sessions)
	return sessions, nil
}

// LoadHistory rebuilds a session's history by reducing all of its events.
func (s *Store) LoadHistory(ctx context.Context, session string) (*History, error) {
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: nats.SubjectForSession(session),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	h := &History{Session: session}

	const batchSize = 500
	malformed := 0
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		n := 0
		for msg := range msgs.Messages() {
			n++
			var event Event
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				malformed++
				_ = msg.Ack()
				continue
			}
			h.Apply(event)
			_ = msg.Ack()
		}

		if n < batchSize {
			break
		}
	}

	if malformed > 0 {
		log.Warn("skipped %d malformed events while loading %s", malformed, session)
	}
	return h, nil
}
