package rental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig_KnownCategories(t *testing.T) {
	tests := []struct {
		category Category
		mode     TimeMode
		supports []Field
		lacks    []Field
	}{
		{CategoryVenue, TimeModeSlots, []Field{FieldLocation, FieldOpeningHours, FieldPackages}, []Field{FieldInventory, FieldSchedule}},
		{CategoryEquipment, TimeModeDaily, []Field{FieldInventory, FieldPickup}, []Field{FieldLocation, FieldPackages}},
		{CategoryVehicle, TimeModeDaily, []Field{FieldPickup, FieldRequirements}, []Field{FieldInventory, FieldOpeningHours}},
		{CategoryExperience, TimeModeSession, []Field{FieldLocation, FieldSchedule, FieldPackages}, []Field{FieldPickup, FieldInventory}},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			cfg := GetConfig(tt.category)
			assert.Equal(t, tt.category, cfg.Category)
			assert.Equal(t, tt.mode, cfg.DefaultTimeMode)
			for _, f := range tt.supports {
				assert.True(t, cfg.Supports(f), "expected %s to support %s", tt.category, f)
			}
			for _, f := range tt.lacks {
				assert.False(t, cfg.Supports(f), "expected %s not to support %s", tt.category, f)
			}
		})
	}
}

func TestGetConfig_UnknownFallsBackToDefault(t *testing.T) {
	for _, c := range []Category{"", "BÅTER", "lokaler_og_baner "} {
		cfg := GetConfig(c)
		assert.Equal(t, GetConfig(DefaultCategory), cfg, "category %q", c)
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" utstyr ")
	require.NoError(t, err)
	assert.Equal(t, CategoryEquipment, c)

	_, err = ParseCategory("boats")
	assert.Error(t, err)
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "openingHours", FieldOpeningHours.String())
	assert.Equal(t, "field(0)", Field(0).String())
}
