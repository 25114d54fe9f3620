package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepIDs(steps []Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID
	}
	return ids
}

func TestParsePredictionType(t *testing.T) {
	for _, valid := range []string{"static", "dynamic", "both"} {
		pt, err := ParsePredictionType(valid)
		require.NoError(t, err)
		assert.Equal(t, PredictionType(valid), pt)
	}

	pt, err := ParsePredictionType("")
	require.NoError(t, err)
	assert.Equal(t, PredictBoth, pt)

	_, err = ParsePredictionType("combined")
	require.Error(t, err)
	assert.Equal(t, "ValidationError", ErrorType(err))
}

func TestPlanSteps_Static(t *testing.T) {
	steps := PlanSteps(PredictStatic)
	assert.Equal(t, []string{StepDecodeAudio, StepExtractFeatures, StepStaticInference}, stepIDs(steps))
	for _, s := range steps {
		assert.Equal(t, StepPending, s.Status)
		assert.NotEmpty(t, s.Name)
	}
}

func TestPlanSteps_Dynamic(t *testing.T) {
	steps := PlanSteps(PredictDynamic)
	assert.Equal(t, []string{StepDecodeAudio, StepExtractFeatures, StepDynamicInference}, stepIDs(steps))
}

func TestPlanSteps_BothOrdersStaticFirst(t *testing.T) {
	steps := PlanSteps(PredictBoth)
	assert.Equal(t, []string{StepDecodeAudio, StepExtractFeatures, StepStaticInference, StepDynamicInference}, stepIDs(steps))
}
