package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/rentalwizard/internal/rental"
)

const (
	maxNameLength        = 120
	maxDescriptionLength = 5000
	maxImages            = 20
	maxMinAge            = 120
)

var (
	clockPattern    = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

var cancellationPolicies = map[string]bool{
	"FLEXIBLE": true,
	"MODERATE": true,
	"STRICT":   true,
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func checkCategory(fd *rental.FormData, _ rental.Category) []Error {
	if !fd.Category.Valid() {
		return []Error{{Field: "category", Message: "Choose a category"}}
	}
	return nil
}

func checkBasics(fd *rental.FormData, _ rental.Category) []Error {
	var errs []Error
	switch {
	case blank(fd.Name):
		errs = append(errs, Error{Field: "name", Message: "Name is required"})
	case utf8.RuneCountInString(fd.Name) > maxNameLength:
		errs = append(errs, Error{Field: "name", Message: fmt.Sprintf("Name must be at most %d characters", maxNameLength)})
	}
	if fd.Category == "" {
		errs = append(errs, Error{Field: "category", Message: "Category is required"})
	}
	if utf8.RuneCountInString(fd.Description) > maxDescriptionLength {
		errs = append(errs, Error{Field: "description", Message: fmt.Sprintf("Description must be at most %d characters", maxDescriptionLength)})
	}
	return errs
}

func checkLocation(fd *rental.FormData, c rental.Category) []Error {
	loc := fd.Location()
	if c == rental.CategoryVenue && (loc == nil || blank(loc.Address)) {
		return []Error{{Field: "location.address", Message: "Address is required"}}
	}
	if loc == nil {
		return nil
	}

	var errs []Error
	if loc.Lat != nil && (!finite(*loc.Lat) || *loc.Lat < -90 || *loc.Lat > 90) {
		errs = append(errs, Error{Field: "location.lat", Message: "Latitude must be between -90 and 90"})
	}
	if loc.Lng != nil && (!finite(*loc.Lng) || *loc.Lng < -180 || *loc.Lng > 180) {
		errs = append(errs, Error{Field: "location.lng", Message: "Longitude must be between -180 and 180"})
	}
	return errs
}

func checkCapacity(fd *rental.FormData, c rental.Category) []Error {
	capacity := fd.Capacity()
	if capacity == nil {
		if c == rental.CategoryExperience {
			return []Error{{Field: "capacity", Message: "Maximum number of participants is required"}}
		}
		return nil
	}
	if *capacity <= 0 {
		return []Error{{Field: "capacity", Message: "Capacity must be greater than 0"}}
	}
	return nil
}

func checkPricing(fd *rental.FormData, _ rental.Category) []Error {
	p := fd.Pricing
	if p == nil {
		return nil
	}
	var errs []Error
	switch {
	case !finite(p.Amount):
		errs = append(errs, Error{Field: "pricing.amount", Message: "Price must be a finite number"})
	case p.Amount < 0:
		errs = append(errs, Error{Field: "pricing.amount", Message: "Price cannot be negative"})
	}
	if p.Currency != "" && !currencyPattern.MatchString(p.Currency) {
		errs = append(errs, Error{Field: "pricing.currency", Message: "Currency must be a three-letter code"})
	}
	return errs
}

func checkInventory(fd *rental.FormData, c rental.Category) []Error {
	if c != rental.CategoryEquipment {
		return nil
	}
	inv := fd.Inventory()
	if inv == nil || inv.TotalQuantity <= 0 {
		return []Error{{Field: "inventory.totalQuantity", Message: "Total quantity must be greater than 0"}}
	}
	return nil
}

func checkPickup(fd *rental.FormData, c rental.Category) []Error {
	if c != rental.CategoryVehicle {
		return nil
	}
	pickup := fd.Pickup()
	if pickup == nil || blank(pickup.PickupAddress) {
		return []Error{{Field: "pickup.pickupAddress", Message: "Pickup location is required"}}
	}
	return nil
}

func checkRequirements(fd *rental.FormData, _ rental.Category) []Error {
	req := fd.Requirements()
	if req == nil {
		return nil
	}
	var errs []Error
	if req.RequiresLicense && blank(req.LicenseClass) {
		errs = append(errs, Error{Field: "requirements.licenseClass", Message: "License class is required when a license is required"})
	}
	if req.MinAge < 0 || req.MinAge > maxMinAge {
		errs = append(errs, Error{Field: "requirements.minAge", Message: fmt.Sprintf("Minimum age must be between 0 and %d", maxMinAge)})
	}
	return errs
}

func checkOpeningHours(fd *rental.FormData, _ rental.Category) []Error {
	var errs []Error
	for i, oh := range fd.OpeningHours() {
		field := fmt.Sprintf("openingHours[%d]", i)
		if oh.Weekday < 0 || oh.Weekday > 6 {
			errs = append(errs, Error{Field: field + ".weekday", Message: "Weekday must be between 0 and 6"})
		}
		if !clockPattern.MatchString(oh.Opens) || !clockPattern.MatchString(oh.Closes) {
			errs = append(errs, Error{Field: field, Message: "Opening hours must use HH:MM"})
			continue
		}
		// Zero-padded HH:MM compares correctly as strings.
		if oh.Opens >= oh.Closes {
			errs = append(errs, Error{Field: field, Message: "Opening time must be before closing time"})
		}
	}
	return errs
}

func checkSchedule(fd *rental.FormData, _ rental.Category) []Error {
	var errs []Error
	for i, slot := range fd.Schedule() {
		if !slot.Start.Before(slot.End) {
			errs = append(errs, Error{Field: fmt.Sprintf("schedule[%d]", i), Message: "Start must be before end"})
		}
		if slot.Seats < 0 {
			errs = append(errs, Error{Field: fmt.Sprintf("schedule[%d].seats", i), Message: "Seats cannot be negative"})
		}
	}
	return errs
}

func checkBookingSettings(fd *rental.FormData, _ rental.Category) []Error {
	b := fd.Booking
	if b == nil {
		return nil
	}
	var errs []Error
	if b.MinDurationMinutes < 0 || b.MaxDurationMinutes < 0 {
		errs = append(errs, Error{Field: "bookingSettings.duration", Message: "Booking duration cannot be negative"})
	} else if b.MaxDurationMinutes > 0 && b.MinDurationMinutes > b.MaxDurationMinutes {
		errs = append(errs, Error{Field: "bookingSettings.duration", Message: "Minimum duration cannot exceed maximum duration"})
	}
	if b.AdvanceBookingDays < 0 {
		errs = append(errs, Error{Field: "bookingSettings.advanceBookingDays", Message: "Advance booking days cannot be negative"})
	}
	if b.CancellationPolicy != "" && !cancellationPolicies[b.CancellationPolicy] {
		errs = append(errs, Error{Field: "bookingSettings.cancellationPolicy", Message: "Unknown cancellation policy"})
	}
	return errs
}

func checkPackages(fd *rental.FormData, _ rental.Category) []Error {
	var errs []Error
	for i, p := range fd.Packages() {
		if blank(p.Name) {
			errs = append(errs, Error{Field: fmt.Sprintf("packages[%d].name", i), Message: fmt.Sprintf("Package %d needs a name", i+1)})
		}
		if !finite(p.Price) {
			errs = append(errs, Error{Field: fmt.Sprintf("packages[%d].price", i), Message: fmt.Sprintf("Package %d must have a finite price", i+1)})
		} else if p.Price < 0 {
			errs = append(errs, Error{Field: fmt.Sprintf("packages[%d].price", i), Message: fmt.Sprintf("Package %d cannot have a negative price", i+1)})
		}
	}
	return errs
}

func checkMedia(fd *rental.FormData, _ rental.Category) []Error {
	var errs []Error
	for i, m := range fd.Media {
		if blank(m.URL) {
			errs = append(errs, Error{Field: fmt.Sprintf("media[%d].url", i), Message: "Media is missing a file"})
		}
	}
	if n := len(fd.Images()); n > maxImages {
		errs = append(errs, Error{Field: "media", Message: fmt.Sprintf("At most %d images are allowed", maxImages)})
	}
	return errs
}

func checkContent(fd *rental.FormData, _ rental.Category) []Error {
	if fd.Content == nil {
		return nil
	}
	var errs []Error
	for i, entry := range fd.Content.FAQ {
		if blank(entry.Question) || blank(entry.Answer) {
			errs = append(errs, Error{Field: fmt.Sprintf("content.faq[%d]", i), Message: "FAQ entries need both a question and an answer"})
		}
	}
	return errs
}
