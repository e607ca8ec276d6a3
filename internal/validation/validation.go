// Package validation holds the per-step rules of the rental-object wizard.
// Every function is pure: failures are returned as data, never as Go errors.
package validation

import (
	"github.com/mark3labs/rentalwizard/internal/rental"
)

// Error is a field-scoped validation failure.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of validating one step.
type Result struct {
	IsValid bool    `json:"isValid"`
	Errors  []Error `json:"errors,omitempty"`
}

// Messages returns the error messages in order.
func (r Result) Messages() []string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Message
	}
	return out
}

// Section ids accepted by ValidateStep in addition to the wizard steps.
// Wizard steps are composed from these.
const (
	SectionLocation     rental.StepID = "location"
	SectionCapacity     rental.StepID = "capacity"
	SectionPricing      rental.StepID = "pricing"
	SectionInventory    rental.StepID = "inventory"
	SectionPickup       rental.StepID = "pickup"
	SectionRequirements rental.StepID = "requirements"
	SectionOpeningHours rental.StepID = "opening-hours"
	SectionSchedule     rental.StepID = "schedule"
)

type rule func(fd *rental.FormData, c rental.Category) []Error

var sections = map[rental.StepID]rule{
	SectionLocation:     checkLocation,
	SectionCapacity:     checkCapacity,
	SectionPricing:      checkPricing,
	SectionInventory:    checkInventory,
	SectionPickup:       checkPickup,
	SectionRequirements: checkRequirements,
	SectionOpeningHours: checkOpeningHours,
	SectionSchedule:     checkSchedule,
}

// steps maps a wizard step to its own rule or to the sections it is built from.
var steps = map[rental.StepID]rule{
	rental.StepCategory:        checkCategory,
	rental.StepBasics:          checkBasics,
	rental.StepDetails:         checkDetails,
	rental.StepResources:       all(SectionInventory, SectionPickup, SectionRequirements),
	rental.StepAvailability:    all(SectionOpeningHours, SectionSchedule),
	rental.StepBookingSettings: checkBookingSettings,
	rental.StepPackages:        checkPackages,
	rental.StepMedia:           checkMedia,
	rental.StepContent:         checkContent,
}

func all(ids ...rental.StepID) rule {
	return func(fd *rental.FormData, c rental.Category) []Error {
		var errs []Error
		for _, id := range ids {
			errs = append(errs, sections[id](fd, c)...)
		}
		return errs
	}
}

// checkDetails covers location, capacity and pricing. Requirements live on
// the resources step when the category has one, otherwise here.
func checkDetails(fd *rental.FormData, c rental.Category) []Error {
	ids := []rental.StepID{SectionLocation, SectionCapacity, SectionPricing}
	if !rental.HasStep(c, rental.StepResources) {
		ids = append(ids, SectionRequirements)
	}
	return all(ids...)(fd, c)
}

// ValidateStep validates one step (or section) of fd for category c.
// Unknown ids are valid.
func ValidateStep(id rental.StepID, fd *rental.FormData, c rental.Category) Result {
	if fd == nil {
		fd = &rental.FormData{}
	}

	check, ok := steps[id]
	if !ok {
		check, ok = sections[id]
	}
	if !ok {
		return Result{IsValid: true}
	}

	errs := check(fd, c)
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateAllSteps validates every step in ids and returns the messages of
// the failing ones, keyed by step.
func ValidateAllSteps(ids []rental.StepID, fd *rental.FormData, c rental.Category) map[rental.StepID][]string {
	out := make(map[rental.StepID][]string)
	for _, id := range ids {
		if r := ValidateStep(id, fd, c); !r.IsValid {
			out[id] = r.Messages()
		}
	}
	return out
}
