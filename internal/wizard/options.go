package wizard

import (
	"context"
	"errors"

	"github.com/mark3labs/rentalwizard/internal/backend"
	"github.com/mark3labs/rentalwizard/internal/draft"
	"github.com/mark3labs/rentalwizard/internal/logger"
	"github.com/mark3labs/rentalwizard/internal/metrics"
	"github.com/mark3labs/rentalwizard/internal/rental"
	"github.com/mark3labs/rentalwizard/internal/session"
)

// DefaultDraftKey is the draft key shared by create-mode sessions.
const DefaultDraftKey = "rentalObjectDraft"

// DefaultDiscardMessage is asked before a dirty session is cancelled.
const DefaultDiscardMessage = "You have unsaved changes. Discard them and leave the wizard?"

// cloneSuffix is appended to the name of a cloned listing.
const cloneSuffix = " (kopi)"

var (
	// ErrCategoryLocked is returned by SetCategory in edit mode.
	ErrCategoryLocked = errors.New("category cannot be changed for an existing rental object")
	// ErrNotEditing is returned by mutations once the wizard has exited.
	ErrNotEditing = errors.New("wizard is not editing")
	// ErrCancelled is returned by Cancel when the user declines to discard changes.
	ErrCancelled = errors.New("cancel was not confirmed")
	// ErrSaveInProgress is returned by Publish while a save is in flight.
	ErrSaveInProgress = errors.New("a save is already in progress")
	// ErrInvalidPatch is returned by UpdateFormData for values that cannot be stored.
	ErrInvalidPatch = errors.New("invalid form data")
)

// Navigator moves the host application between pages.
type Navigator interface {
	// Navigate pushes a new location.
	Navigate(path string)
	// Replace swaps the current location without adding history.
	Replace(path string)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// Journal receives an event for every controller action.
type Journal interface {
	Record(ctx context.Context, e session.Event) error
}

// Callback is run with a copy of the form data after a lifecycle transition.
type Callback func(ctx context.Context, fd *rental.FormData) error

// Options configures a Controller. Backend is required.
type Options struct {
	Backend backend.Client
	// Drafts defaults to an in-memory store.
	Drafts draft.Store
	// Navigator defaults to a no-op.
	Navigator Navigator
	// Confirmer defaults to declining, so dirty sessions are never discarded
	// without an explicit answer.
	Confirmer Confirmer
	Journal   Journal
	Metrics   *metrics.Recorder
	Logger    *logger.Logger

	// OnComplete runs after a successful publish, before navigating away.
	OnComplete Callback
	// OnSave runs after every successful save. Errors are logged only.
	OnSave Callback
	// OnCancel runs after a confirmed cancel. Errors are logged only.
	OnCancel Callback

	// DraftKey defaults to DefaultDraftKey.
	DraftKey string
	// Slug selects edit mode.
	Slug string
	// CloneFromSlug selects clone mode.
	CloneFromSlug string
	// Category is the starting category in create mode when no draft exists.
	Category rental.Category
	// DiscardMessage defaults to DefaultDiscardMessage.
	DiscardMessage string
}

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}
func (nopNavigator) Replace(string)  {}

func declineAll(context.Context, string) (bool, error) { return false, nil }

func (o *Options) setDefaults() {
	if o.Drafts == nil {
		o.Drafts = draft.NewMemoryStore()
	}
	if o.Navigator == nil {
		o.Navigator = nopNavigator{}
	}
	if o.Confirmer == nil {
		o.Confirmer = ConfirmFunc(declineAll)
	}
	if o.Logger == nil {
		o.Logger = logger.Named("wizard")
	}
	if o.DraftKey == "" {
		o.DraftKey = DefaultDraftKey
	}
	if o.DiscardMessage == "" {
		o.DiscardMessage = DefaultDiscardMessage
	}
}
