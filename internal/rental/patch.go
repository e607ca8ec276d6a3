package rental

// Patch is a partial update of FormData. Nil fields are left untouched;
// non-nil fields replace the current value wholesale (last write wins).
// An empty, non-nil slice clears the field.
type Patch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	TimeMode    *TimeMode        `json:"timeMode,omitempty"`
	Pricing     *Pricing         `json:"pricing,omitempty"`
	Booking     *BookingSettings `json:"bookingSettings,omitempty"`
	Media       []MediaRef       `json:"media,omitempty"`
	Content     *Content         `json:"content,omitempty"`

	Location     *Location      `json:"location,omitempty"`
	Capacity     *int           `json:"capacity,omitempty"`
	OpeningHours []OpeningHours `json:"openingHours,omitempty"`
	Inventory    *Inventory     `json:"inventory,omitempty"`
	Pickup       *PickupReturn  `json:"pickup,omitempty"`
	Requirements *Requirements  `json:"requirements,omitempty"`
	Packages     []Package      `json:"packages,omitempty"`
	Schedule     []ScheduleSlot `json:"schedule,omitempty"`
	Amenities    []string       `json:"amenities,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.TimeMode == nil &&
		p.Pricing == nil && p.Booking == nil && p.Media == nil && p.Content == nil &&
		p.fields() == 0
}

func (p Patch) fields() Field {
	return fieldBag{
		location:     p.Location,
		capacity:     p.Capacity,
		openingHours: p.OpeningHours,
		inventory:    p.Inventory,
		pickup:       p.Pickup,
		requirements: p.Requirements,
		packages:     p.Packages,
		schedule:     p.Schedule,
		amenities:    p.Amenities,
	}.present()
}

// Apply merges p into fd. Category-dependent fields the current category
// does not support are ignored and returned.
func (fd *FormData) Apply(p Patch) []Field {
	if p.Name != nil {
		fd.Name = *p.Name
	}
	if p.Description != nil {
		fd.Description = *p.Description
	}
	if p.TimeMode != nil {
		fd.TimeMode = *p.TimeMode
	}
	if p.Pricing != nil {
		fd.Pricing = p.Pricing
	}
	if p.Booking != nil {
		fd.Booking = p.Booking
	}
	if p.Media != nil {
		fd.Media = p.Media
	}
	if p.Content != nil {
		fd.Content = p.Content
	}

	b := fd.bag()
	if p.Location != nil {
		b.location = p.Location
	}
	if p.Capacity != nil {
		b.capacity = p.Capacity
	}
	if p.OpeningHours != nil {
		b.openingHours = p.OpeningHours
	}
	if p.Inventory != nil {
		b.inventory = p.Inventory
	}
	if p.Pickup != nil {
		b.pickup = p.Pickup
	}
	if p.Requirements != nil {
		b.requirements = p.Requirements
	}
	if p.Packages != nil {
		b.packages = p.Packages
	}
	if p.Schedule != nil {
		b.schedule = p.Schedule
	}
	if p.Amenities != nil {
		b.amenities = p.Amenities
	}

	cfg := GetConfig(fd.Category)
	var ignored []Field
	for _, f := range allFields {
		if p.fields()&f != 0 && !cfg.Supports(f) {
			ignored = append(ignored, f)
		}
	}

	fd.Details = b.into(fd.Category)
	return ignored
}

// allFields lists every Field in declaration order.
var allFields = []Field{
	FieldLocation,
	FieldCapacity,
	FieldOpeningHours,
	FieldInventory,
	FieldPickup,
	FieldRequirements,
	FieldPackages,
	FieldSchedule,
	FieldAmenities,
}

// Ptr returns a pointer to v, for building patches in code.
func Ptr[T any](v T) *T { return &v }
