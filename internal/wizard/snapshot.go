package wizard

import "github.com/mark3labs/rentalwizard/internal/rental"

// Phase is the controller's position in its state machine.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseEditing Phase = "editing"
	PhaseSaving  Phase = "saving"
	PhaseExited  Phase = "exited"
)

// Mode is how the session was started.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
	ModeClone  Mode = "clone"
)

// Step is the per-step view handed to the UI. It is derived on every
// snapshot and never stored.
type Step struct {
	ID             rental.StepID `json:"id"`
	TitleKey       string        `json:"titleKey"`
	DescriptionKey string        `json:"descriptionKey"`
	Completed      bool          `json:"completed"`
	HasErrors      bool          `json:"hasErrors"`
	Optional       bool          `json:"optional"`
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Mode        Mode                       `json:"mode"`
	Phase       Phase                      `json:"phase"`
	CurrentStep int                        `json:"currentStep"`
	StepID      rental.StepID              `json:"stepId"`
	Steps       []Step                     `json:"steps"`
	FormData    *rental.FormData           `json:"formData"`
	Errors      map[rental.StepID][]string `json:"errors,omitempty"`
	IsDirty     bool                       `json:"isDirty"`
	IsLoading   bool                       `json:"isLoading"`
	IsSaving    bool                       `json:"isSaving"`
	CanGoNext   bool                       `json:"canGoNext"`
	CanGoPrev   bool                       `json:"canGoPrev"`
	LastError   string                     `json:"lastError,omitempty"`
}

func buildSteps(ids []rental.StepID, current int, errs map[rental.StepID][]string) []Step {
	steps := make([]Step, len(ids))
	for i, id := range ids {
		meta := rental.StepMetaFor(id)
		steps[i] = Step{
			ID:             id,
			TitleKey:       meta.TitleKey,
			DescriptionKey: meta.DescriptionKey,
			Completed:      i < current,
			HasErrors:      len(errs[id]) > 0,
			Optional:       meta.Optional,
		}
	}
	return steps
}

func copyErrors(errs map[rental.StepID][]string) map[rental.StepID][]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[rental.StepID][]string, len(errs))
	for id, msgs := range errs {
		out[id] = append([]string(nil), msgs...)
	}
	return out
}
