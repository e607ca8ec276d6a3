package session

import (
	"encoding/json"
	"time"

	"github.com/mark3labs/rentalwizard/internal/nats"
)

// History is a session reconstructed from its journal.
type History struct {
	Session   string    `json:"session"`
	Mode      string    `json:"mode,omitempty"`
	Category  string    `json:"category,omitempty"`
	Step      int       `json:"step"`
	Edits     int       `json:"edits"`
	Blocked   int       `json:"blocked"`
	Saves     []Save    `json:"saves,omitempty"`
	Failures  []string  `json:"failures,omitempty"`
	Published bool      `json:"published"`
	Cancelled bool      `json:"cancelled"`
	StartedAt time.Time `json:"startedAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
	Events    int       `json:"events"`
}

// Save is one successful save.
type Save struct {
	ID      string    `json:"id"`
	Slug    string    `json:"slug"`
	Created bool      `json:"created"`
	At      time.Time `json:"at"`
}

// StartMeta is attached to lifecycle/start events.
type StartMeta struct {
	Mode     string `json:"mode"`
	Category string `json:"category"`
}

// StepMeta is attached to navigation events.
type StepMeta struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// SaveMeta is attached to save/saved events.
type SaveMeta struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Created bool   `json:"created"`
}

// Apply folds one event into the history.
func (h *History) Apply(event Event) {
	h.Events++
	if h.StartedAt.IsZero() || event.Timestamp.Before(h.StartedAt) {
		h.StartedAt = event.Timestamp
	}
	if event.Timestamp.After(h.UpdatedAt) {
		h.UpdatedAt = event.Timestamp
	}

	switch event.Type {
	case nats.EventTypeLifecycle:
		h.applyLifecycle(event)
	case nats.EventTypeNavigation:
		h.applyNavigation(event)
	case nats.EventTypeEdit:
		h.applyEdit(event)
	case nats.EventTypeSave:
		h.applySave(event)
	}
}

func (h *History) applyLifecycle(event Event) {
	switch event.Action {
	case ActionStart:
		var meta StartMeta
		_ = json.Unmarshal(event.Meta, &meta)
		h.Mode = meta.Mode
		h.Category = meta.Category
	case ActionPublish:
		h.Published = true
	case ActionCancel:
		h.Cancelled = true
	}
}

func (h *History) applyNavigation(event Event) {
	if event.Action == ActionBlocked {
		h.Blocked++
		return
	}
	var meta StepMeta
	if err := json.Unmarshal(event.Meta, &meta); err == nil {
		h.Step = meta.To
	}
}

func (h *History) applyEdit(event Event) {
	switch event.Action {
	case ActionUpdate:
		h.Edits++
	case ActionSetCategory:
		h.Edits++
		h.Category = event.Data
		h.Step = 0
	}
}

func (h *History) applySave(event Event) {
	switch event.Action {
	case ActionSaved:
		var meta SaveMeta
		_ = json.Unmarshal(event.Meta, &meta)
		h.Saves = append(h.Saves, Save{ID: meta.ID, Slug: meta.Slug, Created: meta.Created, At: event.Timestamp})
	case ActionFailed:
		h.Failures = append(h.Failures, event.Data)
	}
}
