package rental

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDTO_SanitizesText(t *testing.T) {
	fd := venueDraft()
	fd.Name = "Hall <b>A</b> & Court"
	fd.Content = &Content{
		RichText:   `<p>Welcome</p><script>alert(1)</script>`,
		Highlights: []string{"<i>Central</i>", "  "},
		FAQ:        []FAQEntry{{Question: "<b>Parking?</b>", Answer: `<a href="https://example.com" onclick="x()">Yes</a>`}},
	}

	dto, err := ToDTO(fd)
	require.NoError(t, err)

	assert.Equal(t, "Hall A & Court", dto.Name)
	assert.Contains(t, dto.Content.RichText, "<p>Welcome</p>")
	assert.NotContains(t, dto.Content.RichText, "script")
	assert.Equal(t, []string{"Central"}, dto.Content.Highlights)
	assert.Equal(t, "Parking?", dto.Content.FAQ[0].Question)
	assert.NotContains(t, dto.Content.FAQ[0].Answer, "onclick")
}

func TestToDTO_TrimsByTimeMode(t *testing.T) {
	fd := NewFormData(CategoryExperience)
	start := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	fd.Name = "Tour"
	fd.Apply(Patch{Schedule: []ScheduleSlot{{Start: start, End: start.Add(time.Hour)}}})

	dto, err := ToDTO(fd)
	require.NoError(t, err)
	assert.Len(t, dto.Details.(*ExperienceDetails).Schedule, 1)

	fd.TimeMode = TimeModeDaily
	dto, err = ToDTO(fd)
	require.NoError(t, err)
	assert.Nil(t, dto.Details.(*ExperienceDetails).Schedule)
}

func TestToDTO_RejectsInvalidPayload(t *testing.T) {
	fd := NewFormData(CategoryVenue)
	_, err := ToDTO(fd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")

	fd.Name = strings.Repeat("x", 121)
	_, err = ToDTO(fd)
	assert.Error(t, err)

	fd.Name = "ok"
	fd.Pricing = &Pricing{Amount: -1}
	_, err = ToDTO(fd)
	assert.Error(t, err)
}

func TestDTO_JSONMatchesFormDataLayout(t *testing.T) {
	fd := venueDraft()
	fd.ID = "obj-1"
	fd.Slug = "hall-a"

	dto, err := ToDTO(fd)
	require.NoError(t, err)

	data, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
	assert.NotContains(t, string(data), `"slug"`)

	var decoded DTO
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NoError(t, decoded.Validate())

	back := decoded.FormData("obj-2", "hall-a-2")
	assert.Equal(t, "obj-2", back.ID)
	assert.Equal(t, "Storgata 1", back.Location().Address)
	assert.Equal(t, 120, *back.Capacity())
}

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "/rental-objects/hall-a", ObjectPath("hall-a", "ignored"))
	assert.Equal(t, "/rental-objects/hall-a-og-bane", ObjectPath("", "Hall A og bane"))

	obj := &Object{Listing: FormData{Slug: "kayak"}}
	assert.Equal(t, "/rental-objects/kayak", obj.Path())
}

func TestMergeIdentity(t *testing.T) {
	fd := venueDraft()
	fd.MergeIdentity(&Object{Listing: FormData{ID: "42", Slug: "hall-a", Status: StatusDraft}})
	assert.Equal(t, "42", fd.ID)
	assert.Equal(t, "hall-a", fd.Slug)
	assert.Equal(t, "Hall A", fd.Name)

	fd.MergeIdentity(nil)
	assert.Equal(t, "42", fd.ID)
}

func TestDiff(t *testing.T) {
	before := venueDraft()
	after := before.Clone()

	diff, err := Diff(before, after)
	require.NoError(t, err)
	assert.Empty(t, diff)

	after.Name = "Hall B"
	diff, err = Diff(before, after)
	require.NoError(t, err)
	assert.Contains(t, diff, "-name: Hall A")
	assert.Contains(t, diff, "+name: Hall B")
	assert.True(t, strings.HasPrefix(diff, "--- saved"))
}
