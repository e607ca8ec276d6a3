package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	tests := []struct {
		session string
		token   string
	}{
		{session: "rentalObjectDraft", token: "rentalObjectDraft"},
		{session: "community-hall", token: "community-hall"},
		{session: "a.b c", token: "a_b_c"},
		{session: "*", token: "_"},
		{session: ">", token: "_"},
		{session: "", token: "_"},
	}
	for _, tt := range tests {
		t.Run(tt.session, func(t *testing.T) {
			assert.Equal(t, tt.token, SubjectToken(tt.session))
		})
	}

	assert.Equal(t, "rentalwizard.journal.community-hall.>", SubjectForSession("community-hall"))
	assert.Equal(t, "rentalwizard.journal.community-hall.save", SubjectForEvent("community-hall", EventTypeSave))
}

func TestEmbedded(t *testing.T) {
	ctx := context.Background()
	e, err := Start(t.TempDir())
	require.NoError(t, err)

	stream, err := SetupJournalStream(ctx, e.JS)
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, JournalStream, info.Config.Name)
	assert.Equal(t, []string{JournalSubjects}, info.Config.Subjects)

	// Idempotent.
	_, err = SetupJournalStream(ctx, e.JS)
	require.NoError(t, err)

	kv, err := SetupDraftBucket(ctx, e.JS)
	require.NoError(t, err)
	_, err = kv.Put(ctx, "rentalObjectDraft", []byte(`{}`))
	require.NoError(t, err)
	entry, err := kv.Get(ctx, "rentalObjectDraft")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), entry.Value())

	require.NoError(t, e.Close())

	var nilEmbedded *Embedded
	assert.NoError(t, nilEmbedded.Close())
}
