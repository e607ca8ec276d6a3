package rental

// StepID identifies one wizard screen.
type StepID string

const (
	StepCategory        StepID = "category"
	StepBasics          StepID = "basics"
	StepDetails         StepID = "details"
	StepResources       StepID = "resources"
	StepAvailability    StepID = "availability"
	StepBookingSettings StepID = "booking-settings"
	StepPackages        StepID = "packages"
	StepMedia           StepID = "media"
	StepContent         StepID = "content"
	StepReview          StepID = "review"
)

// MasterSteps is the fixed order every category's step list is filtered from.
var MasterSteps = []StepID{
	StepCategory,
	StepBasics,
	StepDetails,
	StepResources,
	StepAvailability,
	StepBookingSettings,
	StepPackages,
	StepMedia,
	StepContent,
	StepReview,
}

var stepsByCategory = map[Category][]StepID{
	CategoryVenue: {
		StepCategory, StepBasics, StepDetails, StepAvailability,
		StepBookingSettings, StepPackages, StepMedia, StepContent, StepReview,
	},
	CategoryEquipment: {
		StepCategory, StepBasics, StepDetails, StepResources, StepAvailability,
		StepBookingSettings, StepMedia, StepReview,
	},
	CategoryVehicle: {
		StepCategory, StepBasics, StepDetails, StepResources, StepAvailability,
		StepBookingSettings, StepMedia, StepContent, StepReview,
	},
	CategoryExperience: {
		StepCategory, StepBasics, StepDetails, StepAvailability,
		StepPackages, StepMedia, StepContent, StepReview,
	},
}

// StepsForCategory returns the steps shown for c in master-list order.
// Unknown categories get the default category's steps.
func StepsForCategory(c Category) []StepID {
	wanted := make(map[StepID]bool)
	for _, id := range stepsByCategory[c.OrDefault()] {
		wanted[id] = true
	}

	steps := make([]StepID, 0, len(wanted))
	for _, id := range MasterSteps {
		if wanted[id] {
			steps = append(steps, id)
		}
	}
	return steps
}

// HasStep reports whether c's step list includes id.
func HasStep(c Category, id StepID) bool {
	for _, s := range stepsByCategory[c.OrDefault()] {
		if s == id {
			return true
		}
	}
	return false
}

// StepIndex returns the position of id in the master list, or -1.
func StepIndex(id StepID) int {
	for i, s := range MasterSteps {
		if s == id {
			return i
		}
	}
	return -1
}

// StepMeta is the display metadata of a step. Titles and descriptions are
// i18n keys resolved by the presentation layer.
type StepMeta struct {
	ID             StepID
	TitleKey       string
	DescriptionKey string
	Optional       bool
}

var optionalSteps = map[StepID]bool{
	StepPackages: true,
	StepMedia:    true,
	StepContent:  true,
}

// StepMetaFor returns the display metadata for id.
func StepMetaFor(id StepID) StepMeta {
	return StepMeta{
		ID:             id,
		TitleKey:       "rentalObjects.wizard.steps." + string(id) + ".title",
		DescriptionKey: "rentalObjects.wizard.steps." + string(id) + ".description",
		Optional:       optionalSteps[id],
	}
}
