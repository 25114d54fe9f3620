package analysis

// EmotionNames is the GEMS-9 label vocabulary, in model output order.
var EmotionNames = []string{
	"Wonder",
	"Transcendence",
	"Tenderness",
	"Nostalgia",
	"Peacefulness",
	"Power",
	"Joyful Activation",
	"Tension",
	"Sadness",
}

// ModelVersion identifies the emotion model family in results.
const ModelVersion = "GEMS-9"

// StaticPrediction is the whole-clip emotion distribution.
type StaticPrediction struct {
	Emotions        map[string]float64 `json:"emotions"`
	DurationSeconds float64            `json:"duration_seconds"`
	NumSegments     int                `json:"num_segments"`
	ModelVersion    string             `json:"model_version"`
}

// DynamicPrediction is the time-segmented emotion distribution: one value
// per timestamp for every label, all series the same length as Timestamps.
type DynamicPrediction struct {
	Timestamps      []float64            `json:"timestamps"`
	Emotions        map[string][]float64 `json:"emotions"`
	DurationSeconds float64              `json:"duration_seconds"`
	SegmentDuration float64              `json:"segment_duration"`
}

// Result is the terminal payload of a successful run. Static and Dynamic
// are populated according to the request's prediction type.
type Result struct {
	Static  *StaticPrediction  `json:"static,omitempty"`
	Dynamic *DynamicPrediction `json:"dynamic,omitempty"`
}
