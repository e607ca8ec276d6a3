package rental

import "time"

// Status is the publication state of a rental object.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

// Pricing is the base price of a listing.
type Pricing struct {
	Amount   float64 `json:"amount" validate:"gte=0"`
	Currency string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Unit     string  `json:"unit,omitempty"`
}

// BookingSettings controls how guests can book the listing.
type BookingSettings struct {
	MinDurationMinutes int    `json:"minDurationMinutes,omitempty" validate:"gte=0"`
	MaxDurationMinutes int    `json:"maxDurationMinutes,omitempty" validate:"gte=0"`
	AdvanceBookingDays int    `json:"advanceBookingDays,omitempty" validate:"gte=0"`
	RequiresApproval   bool   `json:"requiresApproval,omitempty"`
	CancellationPolicy string `json:"cancellationPolicy,omitempty"`
}

// MediaKind distinguishes images from other media.
type MediaKind string

const (
	MediaImage MediaKind = "IMAGE"
	MediaVideo MediaKind = "VIDEO"
)

// MediaRef points at an uploaded media file.
type MediaRef struct {
	URL     string    `json:"url" validate:"required"`
	Kind    MediaKind `json:"kind,omitempty"`
	Alt     string    `json:"alt,omitempty"`
	Primary bool      `json:"primary,omitempty"`
}

// FAQEntry is one question/answer pair.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Content is the rich marketing content of a listing.
type Content struct {
	RichText   string     `json:"richText,omitempty"`
	Highlights []string   `json:"highlights,omitempty"`
	Rules      string     `json:"rules,omitempty"`
	FAQ        []FAQEntry `json:"faq,omitempty"`
}

// Location is a street address with optional coordinates.
type Location struct {
	Address    string   `json:"address"`
	PostalCode string   `json:"postalCode,omitempty"`
	City       string   `json:"city,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// OpeningHours is one weekly opening window. Weekday is 0 (Sunday) to 6.
type OpeningHours struct {
	Weekday int    `json:"weekday"`
	Opens   string `json:"opens"`
	Closes  string `json:"closes"`
}

// Inventory describes how many identical units can be rented out.
type Inventory struct {
	TotalQuantity int    `json:"totalQuantity"`
	SKU           string `json:"sku,omitempty"`
}

// PickupReturn describes where rented items are collected and returned.
type PickupReturn struct {
	PickupAddress string `json:"pickupAddress"`
	ReturnAddress string `json:"returnAddress,omitempty"`
	SameAsPickup  bool   `json:"sameAsPickup,omitempty"`
}

// Requirements are renter prerequisites.
type Requirements struct {
	RequiresLicense bool   `json:"requiresLicense,omitempty"`
	LicenseClass    string `json:"licenseClass,omitempty"`
	MinAge          int    `json:"minAge,omitempty"`
}

// Package is a bookable bundle offered alongside the base listing.
type Package struct {
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes,omitempty"`
}

// ScheduleSlot is a fixed occurrence of an experience.
type ScheduleSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Seats int       `json:"seats,omitempty"`
}

// Details is the category-specific part of FormData. The concrete type is
// always the variant matching FormData.Category.
type Details interface {
	Category() Category
}

// VenueDetails carries the fields of LOKALER_OG_BANER listings.
type VenueDetails struct {
	Location     *Location      `json:"location,omitempty"`
	Capacity     *int           `json:"capacity,omitempty"`
	OpeningHours []OpeningHours `json:"openingHours,omitempty"`
	Packages     []Package      `json:"packages,omitempty"`
	Amenities    []string       `json:"amenities,omitempty"`
}

// EquipmentDetails carries the fields of UTSTYR listings.
type EquipmentDetails struct {
	Inventory    *Inventory     `json:"inventory,omitempty"`
	Pickup       *PickupReturn  `json:"pickup,omitempty"`
	OpeningHours []OpeningHours `json:"openingHours,omitempty"`
}

// VehicleDetails carries the fields of KJORETOY listings.
type VehicleDetails struct {
	Pickup       *PickupReturn `json:"pickup,omitempty"`
	Capacity     *int          `json:"capacity,omitempty"`
	Requirements *Requirements `json:"requirements,omitempty"`
}

// ExperienceDetails carries the fields of OPPLEVELSER_OG_ARRANGEMENT listings.
type ExperienceDetails struct {
	Location     *Location      `json:"location,omitempty"`
	Capacity     *int           `json:"capacity,omitempty"`
	Packages     []Package      `json:"packages,omitempty"`
	Schedule     []ScheduleSlot `json:"schedule,omitempty"`
	Requirements *Requirements  `json:"requirements,omitempty"`
}

func (*VenueDetails) Category() Category      { return CategoryVenue }
func (*EquipmentDetails) Category() Category  { return CategoryEquipment }
func (*VehicleDetails) Category() Category    { return CategoryVehicle }
func (*ExperienceDetails) Category() Category { return CategoryExperience }

// FormData is the draft the wizard accumulates across all steps.
type FormData struct {
	ID          string           `json:"id,omitempty"`
	Slug        string           `json:"slug,omitempty"`
	Category    Category         `json:"category"`
	TimeMode    TimeMode         `json:"timeMode,omitempty"`
	Status      Status           `json:"status,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Pricing     *Pricing         `json:"pricing,omitempty"`
	Booking     *BookingSettings `json:"bookingSettings,omitempty"`
	Media       []MediaRef       `json:"media,omitempty"`
	Content     *Content         `json:"content,omitempty"`
	Details     Details          `json:"-"`
}

// NewFormData returns an empty draft with c's defaults.
func NewFormData(c Category) *FormData {
	cfg := GetConfig(c)
	return &FormData{
		Category: cfg.Category,
		TimeMode: cfg.DefaultTimeMode,
		Status:   StatusDraft,
		Details:  fieldBag{}.into(cfg.Category),
	}
}

// fieldBag is a flat view over every category-dependent field, used to move
// values between variants.
type fieldBag struct {
	location     *Location
	capacity     *int
	openingHours []OpeningHours
	inventory    *Inventory
	pickup       *PickupReturn
	requirements *Requirements
	packages     []Package
	schedule     []ScheduleSlot
	amenities    []string
}

func bagOf(d Details) fieldBag {
	switch v := d.(type) {
	case *VenueDetails:
		return fieldBag{location: v.Location, capacity: v.Capacity, openingHours: v.OpeningHours, packages: v.Packages, amenities: v.Amenities}
	case *EquipmentDetails:
		return fieldBag{inventory: v.Inventory, pickup: v.Pickup, openingHours: v.OpeningHours}
	case *VehicleDetails:
		return fieldBag{pickup: v.Pickup, capacity: v.Capacity, requirements: v.Requirements}
	case *ExperienceDetails:
		return fieldBag{location: v.Location, capacity: v.Capacity, packages: v.Packages, schedule: v.Schedule, requirements: v.Requirements}
	}
	return fieldBag{}
}

// into builds c's variant from the bag. Fields c does not carry are dropped.
func (b fieldBag) into(c Category) Details {
	switch c.OrDefault() {
	case CategoryEquipment:
		return &EquipmentDetails{Inventory: b.inventory, Pickup: b.pickup, OpeningHours: b.openingHours}
	case CategoryVehicle:
		return &VehicleDetails{Pickup: b.pickup, Capacity: b.capacity, Requirements: b.requirements}
	case CategoryExperience:
		return &ExperienceDetails{Location: b.location, Capacity: b.capacity, Packages: b.packages, Schedule: b.schedule, Requirements: b.requirements}
	default:
		return &VenueDetails{Location: b.location, Capacity: b.capacity, OpeningHours: b.openingHours, Packages: b.packages, Amenities: b.amenities}
	}
}

// present lists the fields that hold a value.
func (b fieldBag) present() Field {
	var f Field
	if b.location != nil {
		f |= FieldLocation
	}
	if b.capacity != nil {
		f |= FieldCapacity
	}
	if b.openingHours != nil {
		f |= FieldOpeningHours
	}
	if b.inventory != nil {
		f |= FieldInventory
	}
	if b.pickup != nil {
		f |= FieldPickup
	}
	if b.requirements != nil {
		f |= FieldRequirements
	}
	if b.packages != nil {
		f |= FieldPackages
	}
	if b.schedule != nil {
		f |= FieldSchedule
	}
	if b.amenities != nil {
		f |= FieldAmenities
	}
	return f
}

func (fd *FormData) bag() fieldBag {
	if fd == nil {
		return fieldBag{}
	}
	return bagOf(fd.Details)
}

// Location returns the location, or nil when unset or unsupported.
func (fd *FormData) Location() *Location { return fd.bag().location }

// Capacity returns the capacity, or nil when unset or unsupported.
func (fd *FormData) Capacity() *int { return fd.bag().capacity }

// OpeningHours returns the weekly opening hours.
func (fd *FormData) OpeningHours() []OpeningHours { return fd.bag().openingHours }

// Inventory returns the inventory, or nil when unset or unsupported.
func (fd *FormData) Inventory() *Inventory { return fd.bag().inventory }

// Pickup returns the pickup/return details, or nil when unset or unsupported.
func (fd *FormData) Pickup() *PickupReturn { return fd.bag().pickup }

// Requirements returns renter requirements, or nil when unset or unsupported.
func (fd *FormData) Requirements() *Requirements { return fd.bag().requirements }

// Packages returns the bookable packages.
func (fd *FormData) Packages() []Package { return fd.bag().packages }

// Schedule returns the fixed occurrences.
func (fd *FormData) Schedule() []ScheduleSlot { return fd.bag().schedule }

// Amenities returns the venue amenities.
func (fd *FormData) Amenities() []string { return fd.bag().amenities }

// SwitchCategory moves fd to category c: the time mode is reset to c's
// default and fields c does not support are cleared. It returns the fields
// that were dropped.
func (fd *FormData) SwitchCategory(c Category) []Field {
	cfg := GetConfig(c)
	b := fd.bag()

	var dropped []Field
	present := b.present()
	for _, f := range allFields {
		if present&f != 0 && !cfg.Supports(f) {
			dropped = append(dropped, f)
		}
	}

	fd.Category = cfg.Category
	fd.TimeMode = cfg.DefaultTimeMode
	fd.Details = b.into(cfg.Category)
	return dropped
}

// normalize makes sure Details matches Category.
func (fd *FormData) normalize() {
	if fd.Details == nil || fd.Details.Category() != fd.Category.OrDefault() {
		fd.Details = fd.bag().into(fd.Category)
	}
}

// Images returns the media references of kind IMAGE (or with no kind).
func (fd *FormData) Images() []MediaRef {
	var out []MediaRef
	for _, m := range fd.Media {
		if m.Kind == "" || m.Kind == MediaImage {
			out = append(out, m)
		}
	}
	return out
}
