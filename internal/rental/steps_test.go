package rental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepsForCategory_OrderedSubsetOfMaster(t *testing.T) {
	for _, c := range append(append([]Category{}, Categories...), "UNKNOWN") {
		t.Run(string(c), func(t *testing.T) {
			steps := StepsForCategory(c)
			require.NotEmpty(t, steps)
			assert.Equal(t, StepCategory, steps[0])
			assert.Equal(t, StepReview, steps[len(steps)-1])

			last := -1
			for _, id := range steps {
				idx := StepIndex(id)
				require.GreaterOrEqual(t, idx, 0, "step %s missing from master list", id)
				assert.Greater(t, idx, last, "step %s out of master order", id)
				last = idx
			}
		})
	}
}

func TestStepsForCategory_UnknownUsesDefault(t *testing.T) {
	assert.Equal(t, StepsForCategory(DefaultCategory), StepsForCategory("NOPE"))
}

func TestStepsForCategory_ReturnsFreshSlice(t *testing.T) {
	steps := StepsForCategory(CategoryVenue)
	steps[0] = StepReview
	assert.Equal(t, StepCategory, StepsForCategory(CategoryVenue)[0])
}

func TestHasStep(t *testing.T) {
	assert.True(t, HasStep(CategoryEquipment, StepResources))
	assert.False(t, HasStep(CategoryVenue, StepResources))
	assert.True(t, HasStep(CategoryExperience, StepPackages))
}

func TestStepMetaFor(t *testing.T) {
	meta := StepMetaFor(StepMedia)
	assert.Equal(t, "rentalObjects.wizard.steps.media.title", meta.TitleKey)
	assert.Equal(t, "rentalObjects.wizard.steps.media.description", meta.DescriptionKey)
	assert.True(t, meta.Optional)
	assert.False(t, StepMetaFor(StepBasics).Optional)
}
