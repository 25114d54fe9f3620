package analysis

// PredictionType selects the scope of inference for one request.
type PredictionType string

const (
	PredictStatic  PredictionType = "static"
	PredictDynamic PredictionType = "dynamic"
	PredictBoth    PredictionType = "both"
)

// ParsePredictionType validates the client-supplied selector. An empty
// selector defaults to "both", matching the original upload form.
func ParsePredictionType(s string) (PredictionType, error) {
	switch PredictionType(s) {
	case "":
		return PredictBoth, nil
	case PredictStatic, PredictDynamic, PredictBoth:
		return PredictionType(s), nil
	default:
		return "", &ValidationError{Field: "prediction_type", Reason: `must be one of "static", "dynamic", "both"`}
	}
}

// StepStatus is the lifecycle state of one pipeline step.
// Transitions are forward-only: pending → in_progress → completed|failed.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
)

// Step IDs in the fixed pipeline order.
const (
	StepDecodeAudio      = "decode_audio"
	StepExtractFeatures  = "extract_features"
	StepStaticInference  = "static_inference"
	StepDynamicInference = "dynamic_inference"
)

// Step is one named stage of the analysis pipeline as reported on the wire.
type Step struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Status   StepStatus `json:"status"`
	Progress float64    `json:"progress"`
	Message  string     `json:"message,omitempty"`
	Duration float64    `json:"duration,omitempty"` // seconds, set once terminal
}

// stepNames maps step IDs to their display names.
var stepNames = map[string]string{
	StepDecodeAudio:      "Decoding Audio",
	StepExtractFeatures:  "Extracting Features",
	StepStaticInference:  "Running Static Emotion Model",
	StepDynamicInference: "Running Dynamic Emotion Model",
}

// PlanSteps returns the ordered step sequence for a prediction type. The
// plan is fixed at request acceptance and never resized afterward; for
// "both", static inference always precedes dynamic.
func PlanSteps(pt PredictionType) []Step {
	ids := []string{StepDecodeAudio, StepExtractFeatures}
	switch pt {
	case PredictStatic:
		ids = append(ids, StepStaticInference)
	case PredictDynamic:
		ids = append(ids, StepDynamicInference)
	default:
		ids = append(ids, StepStaticInference, StepDynamicInference)
	}

	steps := make([]Step, len(ids))
	for i, id := range ids {
		steps[i] = Step{ID: id, Name: stepNames[id], Status: StepPending}
	}
	return steps
}
