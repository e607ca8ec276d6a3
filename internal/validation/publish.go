package validation

import (
	"strings"

	"github.com/mark3labs/rentalwizard/internal/rental"
)

// PublishCheck is the outcome of CanPublish.
type PublishCheck struct {
	CanPublish    bool     `json:"canPublish"`
	MissingFields []string `json:"missingFields,omitempty"`
}

// CanPublish is the publish-readiness checklist shown on the review step.
//
// It differs from running ValidateStep over every step: it asks for
// recommended content (description, price, images) that step validation
// treats as optional, and it does not look at malformed values. Keep the
// two rule sets in step when a field becomes required.
func CanPublish(fd *rental.FormData, c rental.Category) PublishCheck {
	if fd == nil {
		fd = &rental.FormData{}
	}

	var missing []string
	if strings.TrimSpace(fd.Name) == "" {
		missing = append(missing, "Name")
	}
	if strings.TrimSpace(fd.Description) == "" {
		missing = append(missing, "Description")
	}
	if !fd.Category.Valid() {
		missing = append(missing, "Category")
	}
	if fd.Pricing == nil {
		missing = append(missing, "Price")
	}
	if len(fd.Images()) == 0 {
		missing = append(missing, "At least one image")
	}

	switch c {
	case rental.CategoryVenue:
		if loc := fd.Location(); loc == nil || strings.TrimSpace(loc.Address) == "" {
			missing = append(missing, "Address")
		}
	case rental.CategoryEquipment:
		if inv := fd.Inventory(); inv == nil || inv.TotalQuantity <= 0 {
			missing = append(missing, "Quantity")
		}
	case rental.CategoryVehicle:
		if p := fd.Pickup(); p == nil || strings.TrimSpace(p.PickupAddress) == "" {
			missing = append(missing, "Pickup location")
		}
	case rental.CategoryExperience:
		if fd.Capacity() == nil {
			missing = append(missing, "Max participants")
		}
	}

	return PublishCheck{CanPublish: len(missing) == 0, MissingFields: missing}
}
