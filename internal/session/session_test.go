package session

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/rentalwizard/internal/nats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	e, err := nats.Start(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	stream, err := nats.SetupJournalStream(ctx, e.JS)
	require.NoError(t, err)
	return NewStore(e.JS, stream)
}

func TestLoadHistory(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	const name = "rentalObjectDraft"

	events := []Event{
		NewEvent(name, nats.EventTypeLifecycle, ActionStart, "", StartMeta{Mode: "create", Category: "LOKALER_OG_BANER"}),
		NewEvent(name, nats.EventTypeEdit, ActionUpdate, "", map[string][]string{"fields": {"name"}}),
		NewEvent(name, nats.EventTypeNavigation, ActionNext, "", StepMeta{From: 0, To: 1}),
		NewEvent(name, nats.EventTypeNavigation, ActionBlocked, "", StepMeta{From: 1, To: 1}),
		NewEvent(name, nats.EventTypeEdit, ActionSetCategory, "UTSTYR", nil),
		NewEvent(name, nats.EventTypeSave, ActionFailed, "backend unavailable", nil),
		NewEvent(name, nats.EventTypeSave, ActionSaved, "", SaveMeta{ID: "id-1", Slug: "hall", Created: true}),
		NewEvent(name, nats.EventTypeLifecycle, ActionPublish, "", nil),
		NewEvent("other", nats.EventTypeLifecycle, ActionCancel, "", nil),
	}
	for _, e := range events {
		require.NoError(t, store.Record(ctx, e))
	}

	h, err := store.LoadHistory(ctx, name)
	require.NoError(t, err)

	assert.Equal(t, 8, h.Events)
	assert.Equal(t, "create", h.Mode)
	assert.Equal(t, "UTSTYR", h.Category)
	assert.Equal(t, 0, h.Step, "category change resets the step")
	assert.Equal(t, 2, h.Edits)
	assert.Equal(t, 1, h.Blocked)
	assert.Equal(t, []string{"backend unavailable"}, h.Failures)
	require.Len(t, h.Saves, 1)
	assert.Equal(t, "hall", h.Saves[0].Slug)
	assert.True(t, h.Saves[0].Created)
	assert.True(t, h.Published)
	assert.False(t, h.Cancelled)
	assert.False(t, h.StartedAt.IsZero())

	other, err := store.LoadHistory(ctx, "other")
	require.NoError(t, err)
	assert.True(t, other.Cancelled)
	assert.Equal(t, 1, other.Events)

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"other", name}, sessions)
}

func TestLoadHistory_Empty(t *testing.T) {
	store := setupStore(t)

	h, err := store.LoadHistory(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, h.Events)
	assert.Empty(t, h.Saves)
}

func TestPublishEvent_FillsIdentity(t *testing.T) {
	store := setupStore(t)

	ack, err := store.PublishEvent(context.Background(), Event{Session: "s", Type: nats.EventTypeEdit, Action: ActionUpdate})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ack.Sequence)
}

func TestHistoryApply_TracksTimestamps(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h := &History{}

	h.Apply(Event{Type: nats.EventTypeNavigation, Action: ActionGoTo, Timestamp: t0.Add(time.Minute), Meta: []byte(`{"from":0,"to":3}`)})
	h.Apply(Event{Type: nats.EventTypeNavigation, Action: ActionPrev, Timestamp: t0, Meta: []byte(`{"from":3,"to":2}`)})

	assert.Equal(t, t0, h.StartedAt)
	assert.Equal(t, t0.Add(time.Minute), h.UpdatedAt)
	assert.Equal(t, 2, h.Step)
}
