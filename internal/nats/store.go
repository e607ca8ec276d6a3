package nats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// JournalStream holds the wizard session journal.
	JournalStream = "rentalwizard_journal"
	// DraftBucket is the key-value bucket holding create-mode drafts.
	DraftBucket = "rentalwizard_drafts"

	subjectPrefix = "rentalwizard.journal"
	// JournalSubjects matches every journal event of every session.
	JournalSubjects = subjectPrefix + ".>"

	// Journal event types
	EventTypeLifecycle  = "lifecycle"
	EventTypeNavigation = "navigation"
	EventTypeEdit       = "edit"
	EventTypeSave       = "save"
)

var tokenReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// SubjectToken turns a session name (a draft key or a slug) into a single
// subject token.
func SubjectToken(session string) string {
	if session == "" {
		return "_"
	}
	return tokenReplacer.Replace(session)
}

// SubjectForSession returns the wildcard subject for all events in a session.
// Example: "rentalwizard.journal.community-hall.>"
func SubjectForSession(session string) string {
	return fmt.Sprintf("%s.%s.>", subjectPrefix, SubjectToken(session))
}

// SubjectForEvent returns the subject for one event type in a session.
// Example: "rentalwizard.journal.community-hall.save"
func SubjectForEvent(session, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, SubjectToken(session), eventType)
}

// SetupJournalStream creates or updates the journal stream with 30-day retention.
func SetupJournalStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     JournalStream,
		Subjects: []string{JournalSubjects},
		Storage:  jetstream.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
}

// SetupDraftBucket creates or updates the draft bucket. A few revisions are
// kept per key so a clobbered draft can be recovered by hand.
func SetupDraftBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      DraftBucket,
		Description: "rental object wizard drafts",
		History:     5,
		Storage:     jetstream.FileStorage,
	})
}
