package analysis

// Event kinds sent to the client. For a single session the stream is
// strictly ordered: connected, analysis_started, then per step
// (step_started, progress_update*, step_completed), then either
// (pipeline_completed, analysis_complete) or pipeline_failed, with no
// events after a terminal one.
const (
	EventConnected         = "connected"
	EventAnalysisStarted   = "analysis_started"
	EventStepStarted       = "step_started"
	EventProgressUpdate    = "progress_update"
	EventStepCompleted     = "step_completed"
	EventPipelineCompleted = "pipeline_completed"
	EventAnalysisComplete  = "analysis_complete"
	EventPipelineFailed    = "pipeline_failed"
	EventError             = "error"
	EventCancelled         = "cancelled"
)

// Event is one server→client message.
type Event struct {
	Type            string   `json:"type"`
	SessionID       string   `json:"session_id,omitempty"`
	Message         string   `json:"message,omitempty"`
	Filename        string   `json:"filename,omitempty"`
	PredictionType  string   `json:"prediction_type,omitempty"`
	OverallProgress *float64 `json:"overall_progress,omitempty"`
	TotalDuration   *float64 `json:"total_duration,omitempty"` // seconds since run start
	Step            *Step    `json:"step,omitempty"`
	AllSteps        []Step   `json:"all_steps,omitempty"`
	Result          *Result  `json:"result,omitempty"`
	Error           string   `json:"error,omitempty"`
	ErrorType       string   `json:"error_type,omitempty"`
}

// EventSink receives events in production order. Implementations must not
// reorder or batch; the client UI is reconstructed solely from event order.
type EventSink func(Event)

// Client→server command actions.
const (
	ActionAnalyze = "analyze"
	ActionCancel  = "cancel"
)

// Command is one client→server message.
type Command struct {
	Action         string `json:"action"`
	FileData       string `json:"file_data,omitempty"` // base64-encoded audio
	Filename       string `json:"filename,omitempty"`
	PredictionType string `json:"prediction_type,omitempty"`
}
