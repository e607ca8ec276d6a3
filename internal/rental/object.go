package rental

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
)

// Object is a rental object as persisted by the backend.
type Object struct {
	Listing   FormData  `json:"listing"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Path returns the canonical URL path of the object.
func (o *Object) Path() string {
	return ObjectPath(o.Listing.Slug, o.Listing.Name)
}

// IndexPath is the listing index the wizard exits to.
const IndexPath = "/rental-objects"

// ObjectPath returns /rental-objects/{slug}, deriving a slug from name when
// the backend did not return one.
func ObjectPath(objectSlug, name string) string {
	if objectSlug == "" {
		objectSlug = slug.Make(name)
	}
	return IndexPath + "/" + objectSlug
}

// DTO is the payload of create and update calls: the form data without the
// server-assigned identity, sanitized and trimmed to what the time mode uses.
type DTO struct {
	Category    Category         `json:"category" validate:"required,oneof=LOKALER_OG_BANER UTSTYR KJORETOY OPPLEVELSER_OG_ARRANGEMENT"`
	TimeMode    TimeMode         `json:"timeMode" validate:"required,oneof=TIME_SLOTS DAILY FIXED_SESSION"`
	Status      Status           `json:"status" validate:"required,oneof=DRAFT PUBLISHED"`
	Name        string           `json:"name" validate:"required,max=120"`
	Description string           `json:"description,omitempty" validate:"max=5000"`
	Pricing     *Pricing         `json:"pricing,omitempty"`
	Booking     *BookingSettings `json:"bookingSettings,omitempty"`
	Media       []MediaRef       `json:"media,omitempty" validate:"max=20,dive"`
	Content     *Content         `json:"content,omitempty"`
	Details     Details          `json:"-" validate:"-"`
}

var (
	dtoValidator = validator.New(validator.WithRequiredStructEnabled())
	plainPolicy  = bluemonday.StrictPolicy()
	richPolicy   = bluemonday.UGCPolicy()
)

// ToDTO builds the create/update payload for fd. It returns an error when
// the payload would be rejected by the backend's schema.
func ToDTO(fd *FormData) (*DTO, error) {
	src := fd.Clone()
	src.normalize()

	status := src.Status
	if status == "" {
		status = StatusDraft
	}

	dto := &DTO{
		Category:    src.Category,
		TimeMode:    src.TimeMode,
		Status:      status,
		Name:        plainText(src.Name),
		Description: plainText(src.Description),
		Pricing:     src.Pricing,
		Booking:     src.Booking,
		Media:       src.Media,
		Content:     sanitizeContent(src.Content),
	}

	b := src.bag()
	switch src.TimeMode {
	case TimeModeSession:
		b.openingHours = nil
	default:
		b.schedule = nil
	}
	dto.Details = b.into(src.Category)

	if err := dtoValidator.Struct(dto); err != nil {
		return nil, fmt.Errorf("invalid rental object payload: %w", err)
	}
	return dto, nil
}

// FormData converts the payload back into form data with the given identity.
func (d *DTO) FormData(id, objectSlug string) *FormData {
	fd := &FormData{
		ID:          id,
		Slug:        objectSlug,
		Category:    d.Category,
		TimeMode:    d.TimeMode,
		Status:      d.Status,
		Name:        d.Name,
		Description: d.Description,
		Pricing:     d.Pricing,
		Booking:     d.Booking,
		Media:       d.Media,
		Content:     d.Content,
		Details:     d.Details,
	}
	fd.normalize()
	return fd
}

// MarshalJSON encodes the DTO with the same layout as FormData.
func (d DTO) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.FormData("", ""))
}

// UnmarshalJSON decodes a FormData-shaped payload. Identity fields are ignored.
func (d *DTO) UnmarshalJSON(data []byte) error {
	var fd FormData
	if err := json.Unmarshal(data, &fd); err != nil {
		return err
	}
	*d = DTO{
		Category:    fd.Category,
		TimeMode:    fd.TimeMode,
		Status:      fd.Status,
		Name:        fd.Name,
		Description: fd.Description,
		Pricing:     fd.Pricing,
		Booking:     fd.Booking,
		Media:       fd.Media,
		Content:     fd.Content,
		Details:     fd.Details,
	}
	return nil
}

// Validate checks the payload against the backend schema.
func (d *DTO) Validate() error {
	return dtoValidator.Struct(d)
}

// MergeIdentity copies the server-assigned identity of obj into fd.
func (fd *FormData) MergeIdentity(obj *Object) {
	if obj == nil {
		return
	}
	fd.ID = obj.Listing.ID
	fd.Slug = obj.Listing.Slug
	if obj.Listing.Status != "" {
		fd.Status = obj.Listing.Status
	}
}

// plainText strips all markup but keeps the text readable.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(s)))
}

func sanitizeContent(c *Content) *Content {
	if c == nil {
		return nil
	}
	out := &Content{
		RichText: richPolicy.Sanitize(c.RichText),
		Rules:    richPolicy.Sanitize(c.Rules),
	}
	for _, h := range c.Highlights {
		if h = plainText(h); h != "" {
			out.Highlights = append(out.Highlights, h)
		}
	}
	for _, entry := range c.FAQ {
		out.FAQ = append(out.FAQ, FAQEntry{
			Question: plainText(entry.Question),
			Answer:   richPolicy.Sanitize(entry.Answer),
		})
	}
	return out
}
