// Package wizard drives the multi-step rental-object wizard: it owns the
// form data, the current step and the error map, and is the only part of the
// system that talks to the backend, the draft store and the navigator.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/rentalwizard/internal/draft"
	"github.com/mark3labs/rentalwizard/internal/nats"
	"github.com/mark3labs/rentalwizard/internal/rental"
	"github.com/mark3labs/rentalwizard/internal/session"
	"github.com/mark3labs/rentalwizard/internal/validation"
)

const ioTimeout = 2 * time.Second

// Controller is safe for concurrent use. Backend calls run without holding
// the lock; the saving flag is the only guard against overlapping saves.
type Controller struct {
	opts Options

	mu       sync.Mutex
	mode     Mode
	phase    Phase
	form     *rental.FormData
	saved    *rental.FormData // last loaded or saved state, nil before the first save
	current  int
	errors   map[rental.StepID][]string
	dirty    bool
	revision int
	lastErr  error
}

// New starts a wizard session. In edit and clone mode the source object is
// fetched first; a missing object is reported as backend.ErrNotFound.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Backend == nil {
		return nil, errors.New("wizard: backend is required")
	}
	opts.setDefaults()

	c := &Controller{
		opts:   opts,
		mode:   ModeCreate,
		phase:  PhaseLoading,
		errors: make(map[rental.StepID][]string),
	}

	switch {
	case opts.Slug != "":
		obj, err := opts.Backend.Get(ctx, opts.Slug)
		if err != nil {
			return nil, fmt.Errorf("loading rental object %q: %w", opts.Slug, err)
		}
		c.mode = ModeEdit
		c.form = obj.Listing.Clone()
		c.saved = obj.Listing.Clone()

	case opts.CloneFromSlug != "":
		obj, err := opts.Backend.Get(ctx, opts.CloneFromSlug)
		if err != nil {
			return nil, fmt.Errorf("loading clone source %q: %w", opts.CloneFromSlug, err)
		}
		c.mode = ModeClone
		c.form = obj.Listing.Clone()
		c.form.ID = ""
		c.form.Slug = ""
		c.form.Status = rental.StatusDraft
		c.form.Name += cloneSuffix
		c.dirty = true

	default:
		c.form = c.loadDraft(ctx)
	}

	c.phase = PhaseEditing
	opts.Logger.Info("session started: mode=%s category=%s", c.mode, c.form.Category)
	c.record(session.NewEvent(c.sessionName(), nats.EventTypeLifecycle, session.ActionStart, "",
		session.StartMeta{Mode: string(c.mode), Category: string(c.form.Category)}))
	return c, nil
}

// loadDraft returns the stored create-mode draft, or category defaults when
// there is none or it cannot be parsed.
func (c *Controller) loadDraft(ctx context.Context) *rental.FormData {
	data, err := c.opts.Drafts.Get(ctx, c.opts.DraftKey)
	if err != nil {
		if !errors.Is(err, draft.ErrNotFound) {
			c.opts.Logger.Warn("reading draft %q: %v", c.opts.DraftKey, err)
		}
		return rental.NewFormData(c.opts.Category)
	}

	fd, err := rental.ParseFormData(data)
	if err != nil {
		c.opts.Logger.Warn("ignoring corrupt draft %q: %v", c.opts.DraftKey, err)
		return rental.NewFormData(c.opts.Category)
	}
	c.opts.Logger.Debug("resumed draft %q", c.opts.DraftKey)
	return fd
}

func (c *Controller) sessionName() string {
	if c.opts.Slug != "" {
		return c.opts.Slug
	}
	return c.opts.DraftKey
}

// steps returns the step list of the current category. Callers hold c.mu.
func (c *Controller) steps() []rental.StepID {
	return rental.StepsForCategory(c.form.Category)
}

// usesDraft reports whether mutations are mirrored to the draft store:
// only sessions that have not been created on the backend yet are.
func (c *Controller) usesDraft() bool {
	return c.mode != ModeEdit && c.form.ID == ""
}

// persistLocked writes the draft. Failures are logged only.
func (c *Controller) persistLocked() {
	if !c.usesDraft() {
		return
	}
	data, err := json.Marshal(c.form)
	if err != nil {
		c.opts.Logger.Error("encoding draft: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()
	if err := c.opts.Drafts.Set(ctx, c.opts.DraftKey, data); err != nil {
		c.opts.Logger.Error("writing draft %q: %v", c.opts.DraftKey, err)
	}
}

func (c *Controller) clearDraft(ctx context.Context) {
	if err := c.opts.Drafts.Remove(ctx, c.opts.DraftKey); err != nil {
		c.opts.Logger.Error("removing draft %q: %v", c.opts.DraftKey, err)
	}
}

func (c *Controller) record(e session.Event) {
	if c.opts.Journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()
	if err := c.opts.Journal.Record(ctx, e); err != nil {
		c.opts.Logger.Debug("journal %s/%s: %v", e.Type, e.Action, err)
	}
}

func (c *Controller) navEvent(action string, from, to int) session.Event {
	return session.NewEvent(c.sessionName(), nats.EventTypeNavigation, action, "", session.StepMeta{From: from, To: to})
}

func (c *Controller) editable() bool {
	return c.phase == PhaseEditing || c.phase == PhaseSaving
}

// validateLocked validates the current step and stores the outcome in the
// error map.
func (c *Controller) validateLocked() validation.Result {
	id := c.steps()[c.current]
	res := validation.ValidateStep(id, c.form, c.form.Category)
	if res.IsValid {
		delete(c.errors, id)
	} else {
		c.errors[id] = res.Messages()
		c.opts.Metrics.ValidationFailure(string(id))
	}
	return res
}

// GoToStep jumps to step index. Moving forward validates the step being left
// and records its errors, but never blocks. Out-of-range indexes are ignored.
func (c *Controller) GoToStep(index int) bool {
	c.mu.Lock()
	if !c.editable() || index < 0 || index >= len(c.steps()) {
		c.mu.Unlock()
		return false
	}
	from := c.current
	if index > from {
		c.validateLocked()
	}
	c.current = index
	c.mu.Unlock()

	c.opts.Metrics.Navigation(session.ActionGoTo, true)
	c.record(c.navEvent(session.ActionGoTo, from, index))
	return true
}

// NextStep advances one step if the current step validates. On failure the
// step's errors are recorded and the step does not change.
func (c *Controller) NextStep() bool {
	c.mu.Lock()
	from := c.current
	if !c.editable() || from >= len(c.steps())-1 {
		c.mu.Unlock()
		return false
	}
	if res := c.validateLocked(); !res.IsValid {
		c.mu.Unlock()
		c.opts.Metrics.Navigation(session.ActionNext, false)
		c.record(c.navEvent(session.ActionBlocked, from, from))
		return false
	}
	c.current++
	c.mu.Unlock()

	c.opts.Metrics.Navigation(session.ActionNext, true)
	c.record(c.navEvent(session.ActionNext, from, from+1))
	return true
}

// PrevStep goes back one step without validating.
func (c *Controller) PrevStep() bool {
	c.mu.Lock()
	from := c.current
	if !c.editable() || from == 0 {
		c.mu.Unlock()
		return false
	}
	c.current--
	c.mu.Unlock()

	c.opts.Metrics.Navigation(session.ActionPrev, true)
	c.record(c.navEvent(session.ActionPrev, from, from-1))
	return true
}

// UpdateFormData shallow-merges p into the form data and marks the session
// dirty. Fields the current category does not support are ignored. No
// validation runs, but a patch that cannot be encoded (NaN or infinite
// numbers) is rejected with ErrInvalidPatch and leaves the form untouched.
func (c *Controller) UpdateFormData(p rental.Patch) error {
	if p.Empty() {
		return nil
	}

	c.mu.Lock()
	if !c.editable() {
		c.mu.Unlock()
		return ErrNotEditing
	}
	next := c.form.Clone()
	ignored := next.Apply(p)
	if _, err := json.Marshal(next); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	c.form = next
	c.dirty = true
	c.revision++
	c.persistLocked()
	c.mu.Unlock()

	if len(ignored) > 0 {
		c.opts.Logger.Warn("ignored fields not supported by this category: %v", ignored)
	}
	c.record(session.NewEvent(c.sessionName(), nats.EventTypeEdit, session.ActionUpdate, "", p))
	return nil
}

// SetCategory switches the listing to category cat: the time mode is reset,
// unsupported fields are cleared and the wizard returns to the first step.
func (c *Controller) SetCategory(cat rental.Category) error {
	if !cat.Valid() {
		return fmt.Errorf("unknown category %q", cat)
	}

	c.mu.Lock()
	if !c.editable() {
		c.mu.Unlock()
		return ErrNotEditing
	}
	if c.mode == ModeEdit {
		c.mu.Unlock()
		return ErrCategoryLocked
	}
	dropped := c.form.SwitchCategory(cat)
	c.current = 0
	c.errors = make(map[rental.StepID][]string)
	c.dirty = true
	c.revision++
	c.persistLocked()
	c.mu.Unlock()

	if len(dropped) > 0 {
		c.opts.Logger.Info("switching to %s cleared %v", cat, dropped)
	}
	c.record(session.NewEvent(c.sessionName(), nats.EventTypeEdit, session.ActionSetCategory, string(cat), nil))
	return nil
}

// SaveDraft creates or updates the object on the backend. It returns
// immediately when a save is already in flight. After the first create the
// draft is cleared, the server identity is merged into the form and the
// navigator is pointed at the object's page.
func (c *Controller) SaveDraft(ctx context.Context) error {
	_, err := c.save(ctx, nil)
	return err
}

// Save is SaveDraft that also reports whether a request was made. It
// returns false with a nil error when another save was already in flight.
func (c *Controller) Save(ctx context.Context) (bool, error) {
	return c.save(ctx, nil)
}

// save runs one backend round trip. When status is set it is applied for the
// duration of the save and rolled back on failure. It reports whether a
// request was actually made.
func (c *Controller) save(ctx context.Context, status *rental.Status) (bool, error) {
	c.mu.Lock()
	if c.phase == PhaseSaving {
		c.mu.Unlock()
		return false, nil
	}
	if c.phase != PhaseEditing {
		c.mu.Unlock()
		return false, ErrNotEditing
	}

	prevStatus := c.form.Status
	if status != nil {
		c.form.Status = *status
	}
	dto, err := rental.ToDTO(c.form)
	if err != nil {
		c.form.Status = prevStatus
		c.lastErr = err
		c.mu.Unlock()
		c.opts.Logger.Error("preparing save: %v", err)
		return false, err
	}

	id := c.form.ID
	rev := c.revision
	sent := c.form.Clone()
	c.phase = PhaseSaving
	c.mu.Unlock()

	op := "update"
	if id == "" {
		op = "create"
	}

	start := time.Now()
	obj, err := c.send(ctx, id, dto)
	c.opts.Metrics.Save(op, err, time.Since(start))

	c.mu.Lock()
	exited := c.phase == PhaseExited
	if c.phase == PhaseSaving {
		c.phase = PhaseEditing
	}
	if err != nil {
		if status != nil {
			c.form.Status = prevStatus
		}
		c.lastErr = err
		name := c.sessionName()
		c.mu.Unlock()

		c.opts.Logger.Error("%s failed: %v", op, err)
		c.record(session.NewEvent(name, nats.EventTypeSave, session.ActionFailed, err.Error(), nil))
		return true, fmt.Errorf("saving rental object: %w", err)
	}

	created := id == ""
	if created {
		c.clearDraft(ctx)
	}
	c.form.MergeIdentity(obj)
	// The baseline is what went over the wire; edits made while the request
	// was in flight stay visible as changes and keep the session dirty.
	sent.MergeIdentity(obj)
	c.saved = sent
	c.dirty = c.revision != rev
	c.lastErr = nil
	saved := c.form.Clone()
	name := c.sessionName()
	c.mu.Unlock()

	c.opts.Logger.Info("%s succeeded: id=%s slug=%s", op, saved.ID, saved.Slug)
	c.record(session.NewEvent(name, nats.EventTypeSave, session.ActionSaved, "",
		session.SaveMeta{ID: saved.ID, Slug: saved.Slug, Created: created}))

	if exited {
		c.opts.Logger.Info("session exited while saving, skipping redirect and on_save")
		return true, nil
	}
	if created {
		c.opts.Navigator.Replace(rental.ObjectPath(saved.Slug, saved.Name))
	}
	c.runHook(ctx, "on_save", c.opts.OnSave, saved)
	return true, nil
}

func (c *Controller) send(ctx context.Context, id string, dto *rental.DTO) (*rental.Object, error) {
	if id == "" {
		return c.opts.Backend.Create(ctx, dto)
	}
	return c.opts.Backend.Update(ctx, id, dto)
}

func (c *Controller) runHook(ctx context.Context, name string, cb Callback, fd *rental.FormData) {
	if cb == nil {
		return
	}
	if err := cb(ctx, fd); err != nil {
		c.opts.Logger.Warn("%s callback: %v", name, err)
	}
}

// Publish marks the listing as published, saves it, runs OnComplete and
// navigates to the listing index. When the save fails nothing else happens.
// The navigation happens even if OnComplete fails; its error is returned.
func (c *Controller) Publish(ctx context.Context) error {
	published := rental.StatusPublished
	sent, err := c.save(ctx, &published)
	if err != nil {
		return err
	}
	if !sent {
		return ErrSaveInProgress
	}

	c.mu.Lock()
	if c.phase == PhaseExited {
		c.mu.Unlock()
		c.opts.Logger.Info("session exited while publishing, skipping completion")
		return nil
	}
	c.phase = PhaseExited
	fd := c.form.Clone()
	name := c.sessionName()
	c.mu.Unlock()

	var cbErr error
	if c.opts.OnComplete != nil {
		if cbErr = c.opts.OnComplete(ctx, fd); cbErr != nil {
			c.opts.Logger.Error("completion callback: %v", cbErr)
			cbErr = fmt.Errorf("completion callback: %w", cbErr)
		}
	}

	c.opts.Metrics.Exit("published")
	c.record(session.NewEvent(name, nats.EventTypeLifecycle, session.ActionPublish, fd.Slug, nil))
	c.opts.Navigator.Navigate(rental.IndexPath)
	return cbErr
}

// Cancel leaves the wizard. A dirty session is only discarded after the
// Confirmer agrees; otherwise ErrCancelled is returned and nothing changes.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	if c.phase == PhaseExited {
		c.mu.Unlock()
		return nil
	}
	dirty := c.dirty
	c.mu.Unlock()

	if dirty {
		ok, err := c.opts.Confirmer.Confirm(ctx, c.opts.DiscardMessage)
		if err != nil {
			return fmt.Errorf("confirming cancel: %w", err)
		}
		if !ok {
			return ErrCancelled
		}
	}

	c.mu.Lock()
	if c.mode != ModeEdit {
		c.clearDraft(ctx)
	}
	c.phase = PhaseExited
	fd := c.form.Clone()
	name := c.sessionName()
	c.mu.Unlock()

	c.runHook(ctx, "on_cancel", c.opts.OnCancel, fd)
	c.opts.Metrics.Exit("cancelled")
	c.record(session.NewEvent(name, nats.EventTypeLifecycle, session.ActionCancel, "", nil))
	c.opts.Navigator.Navigate(rental.IndexPath)
	return nil
}

// ValidateCurrentStep validates the current step without navigating.
func (c *Controller) ValidateCurrentStep() validation.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

// ValidateAll validates every step of the current category, replaces the
// error map with the outcome and returns it.
func (c *Controller) ValidateAll() map[rental.StepID][]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := validation.ValidateAllSteps(c.steps(), c.form, c.form.Category)
	for id := range errs {
		c.opts.Metrics.ValidationFailure(string(id))
	}
	c.errors = errs
	return copyErrors(errs)
}

// CanPublish runs the publish checklist over the current form data.
func (c *Controller) CanPublish() validation.PublishCheck {
	c.mu.Lock()
	defer c.mu.Unlock()
	return validation.CanPublish(c.form, c.form.Category)
}

// Changes returns a unified diff between the last loaded or saved state and
// the current form data. It is empty when nothing changed.
func (c *Controller) Changes() (string, error) {
	c.mu.Lock()
	before := c.saved.Clone()
	after := c.form.Clone()
	c.mu.Unlock()
	return rental.Diff(before, after)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := c.steps()
	snap := Snapshot{
		Mode:        c.mode,
		Phase:       c.phase,
		CurrentStep: c.current,
		StepID:      ids[c.current],
		Steps:       buildSteps(ids, c.current, c.errors),
		FormData:    c.form.Clone(),
		Errors:      copyErrors(c.errors),
		IsDirty:     c.dirty,
		IsLoading:   c.phase == PhaseLoading,
		IsSaving:    c.phase == PhaseSaving,
		CanGoNext:   c.current < len(ids)-1,
		CanGoPrev:   c.current > 0,
	}
	if c.lastErr != nil {
		snap.LastError = c.lastErr.Error()
	}
	return snap
}

// FormData returns a copy of the current form data.
func (c *Controller) FormData() *rental.FormData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Clone()
}
