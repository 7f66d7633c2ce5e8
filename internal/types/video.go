// Package types defines the request, response and wire types shared by the
// API handlers, the pipeline and the capability provider clients.
package types

// VideoRequest is the closed set of parameters accepted by the submission
// endpoint. Unknown fields in the request body are ignored.
type VideoRequest struct {
	Topic                string            `json:"topic,omitempty"`
	Script               string            `json:"script,omitempty"`
	Tone                 string            `json:"tone,omitempty"`
	Duration             int               `json:"duration,omitempty"`
	VisualStyle          string            `json:"visualStyle,omitempty"`
	UseModularGeneration bool              `json:"useModularGeneration,omitempty"`
	Platform             string            `json:"platform,omitempty"`
	Context              map[string]string `json:"context,omitempty"`
}

// EffectiveTopic returns the topic the script generator should work from.
// Platform is the historical fallback used by older clients.
func (r *VideoRequest) EffectiveTopic() string {
	if r.Topic != "" {
		return r.Topic
	}
	if r.Platform != "" {
		return r.Platform
	}
	return "general content"
}

// PromptTiming is a half-open time range [Start, End) in seconds within the
// target duration.
type PromptTiming struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// VideoPrompt is one scene's visual direction: a description, a positive and
// a negative directive, and the time range the scene covers.
type VideoPrompt struct {
	Scene    string       `json:"scene"`
	Positive string       `json:"positive"`
	Negative string       `json:"negative"`
	Timing   PromptTiming `json:"timing"`
}

// GeneratedScript is the script stage output: narration text, the duration it
// was written for, and the visual prompts covering that duration.
type GeneratedScript struct {
	Text         string        `json:"text"`
	Duration     int           `json:"duration"`
	VideoPrompts []VideoPrompt `json:"videoPrompts"`
}

// Step statuses recorded in the pipeline step log.
const (
	StepStatusOK     = "ok"
	StepStatusFailed = "failed"
)

// PipelineStep records one stage's outcome. The ordered step log is embedded
// into the job result on completion.
type PipelineStep struct {
	Name   string                 `json:"name"`
	Status string                 `json:"status"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
}

// VideoMetadata describes the finished artifact as reported by the assembler
// or the render delegate.
type VideoMetadata struct {
	Duration   float64 `json:"duration,omitempty"`
	FileSize   int64   `json:"fileSize,omitempty"`
	Resolution string  `json:"resolution,omitempty"`
	Format     string  `json:"format,omitempty"`
}

// VideoResult is the structured success payload stored on a completed job.
type VideoResult struct {
	URL             string         `json:"url,omitempty"`
	CloudProvider   string         `json:"cloudProvider,omitempty"`
	RenderJobID     string         `json:"renderJobId,omitempty"`
	Steps           []PipelineStep `json:"steps,omitempty"`
	GeneratedScript string         `json:"generatedScript,omitempty"`
	VideoPrompts    []VideoPrompt  `json:"videoPrompts,omitempty"`
	Summary         string         `json:"summary,omitempty"`
	Metadata        *VideoMetadata `json:"metadata,omitempty"`
}
