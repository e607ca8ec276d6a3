// Package rental holds the rental-object domain model: categories, the step
// registry, the form data the wizard accumulates, and the backend DTOs.
package rental

import (
	"fmt"
	"strings"
)

// Category selects the business vertical a listing belongs to.
type Category string

const (
	CategoryVenue      Category = "LOKALER_OG_BANER"
	CategoryEquipment  Category = "UTSTYR"
	CategoryVehicle    Category = "KJORETOY"
	CategoryExperience Category = "OPPLEVELSER_OG_ARRANGEMENT"
)

// DefaultCategory is used for new drafts and as the fallback for unknown values.
const DefaultCategory = CategoryVenue

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryVenue,
	CategoryEquipment,
	CategoryVehicle,
	CategoryExperience,
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryVenue, CategoryEquipment, CategoryVehicle, CategoryExperience:
		return true
	}
	return false
}

// OrDefault returns c, or DefaultCategory when c is unknown.
func (c Category) OrDefault() Category {
	if c.Valid() {
		return c
	}
	return DefaultCategory
}

// ParseCategory parses a category tag, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category: %q", s)
	}
	return c, nil
}

// TimeMode is how a listing is priced and booked over time.
type TimeMode string

const (
	TimeModeSlots   TimeMode = "TIME_SLOTS"
	TimeModeDaily   TimeMode = "DAILY"
	TimeModeSession TimeMode = "FIXED_SESSION"
)

// Valid reports whether m is a known time mode.
func (m TimeMode) Valid() bool {
	switch m {
	case TimeModeSlots, TimeModeDaily, TimeModeSession:
		return true
	}
	return false
}

// Field names a category-dependent part of the form data.
type Field uint

const (
	FieldLocation Field = 1 << iota
	FieldCapacity
	FieldOpeningHours
	FieldInventory
	FieldPickup
	FieldRequirements
	FieldPackages
	FieldSchedule
	FieldAmenities
)

var fieldNames = map[Field]string{
	FieldLocation:     "location",
	FieldCapacity:     "capacity",
	FieldOpeningHours: "openingHours",
	FieldInventory:    "inventory",
	FieldPickup:       "pickup",
	FieldRequirements: "requirements",
	FieldPackages:     "packages",
	FieldSchedule:     "schedule",
	FieldAmenities:    "amenities",
}

// String returns the JSON name of the field.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", uint(f))
}

// CategoryConfig is the static configuration of one category.
type CategoryConfig struct {
	Category        Category
	DefaultTimeMode TimeMode
	Fields          Field
}

// Supports reports whether the category carries field f.
func (c CategoryConfig) Supports(f Field) bool {
	return c.Fields&f != 0
}

var categoryConfigs = map[Category]CategoryConfig{
	CategoryVenue: {
		Category:        CategoryVenue,
		DefaultTimeMode: TimeModeSlots,
		Fields:          FieldLocation | FieldCapacity | FieldOpeningHours | FieldPackages | FieldAmenities,
	},
	CategoryEquipment: {
		Category:        CategoryEquipment,
		DefaultTimeMode: TimeModeDaily,
		Fields:          FieldInventory | FieldPickup | FieldOpeningHours,
	},
	CategoryVehicle: {
		Category:        CategoryVehicle,
		DefaultTimeMode: TimeModeDaily,
		Fields:          FieldPickup | FieldCapacity | FieldRequirements,
	},
	CategoryExperience: {
		Category:        CategoryExperience,
		DefaultTimeMode: TimeModeSession,
		Fields:          FieldLocation | FieldCapacity | FieldPackages | FieldSchedule | FieldRequirements,
	},
}

// GetConfig returns the configuration for c, falling back to the default
// category's configuration for unknown values.
func GetConfig(c Category) CategoryConfig {
	return categoryConfigs[c.OrDefault()]
}
