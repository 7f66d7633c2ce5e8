// Package script implements the script generation stage: narration text plus
// the visual prompts covering the target duration.
package script

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/saymi-el/looply/internal/types"
)

// Generation constants.
const (
	// WordsPerSecond is the narration pace used to size scripts.
	WordsPerSecond = 2.5
	// SegmentCount is the number of visual prompts per script.
	SegmentCount = 3
	// DefaultDurationSeconds is used when the request does not specify one.
	DefaultDurationSeconds = 15
	// DefaultNegativePrompt lists the defects every visual prompt excludes.
	DefaultNegativePrompt = "low quality, blurry, distorted, ugly, bad anatomy, text, watermark, deformed"
)

// Input carries the parameters of a script generation call.
type Input struct {
	Topic                string
	Tone                 string
	Duration             int
	VisualStyle          string
	UseModularGeneration bool
	Context              map[string]string
}

// Generator produces a narration script and its visual prompt partition.
type Generator interface {
	Generate(ctx context.Context, in Input) (*types.GeneratedScript, error)
}

// ValidateInput checks the generation parameters, including the visual style
// against the catalog. Returns a validation error usable at the stage
// boundary.
func ValidateInput(in Input) error {
	if in.Duration < types.MinDurationSeconds || in.Duration > types.MaxDurationSeconds {
		return fmt.Errorf("duration must be between %d and %d seconds", types.MinDurationSeconds, types.MaxDurationSeconds)
	}
	if len(in.Topic) > types.MaxTopicLength {
		return fmt.Errorf("topic must be less than %d characters", types.MaxTopicLength)
	}
	if len(in.Tone) > types.MaxToneLength {
		return fmt.Errorf("tone must be less than %d characters", types.MaxToneLength)
	}
	if in.VisualStyle != "" {
		if _, ok := StyleByName(in.VisualStyle); !ok {
			return fmt.Errorf("visual style %q is not supported, available styles: %s",
				in.VisualStyle, strings.Join(StyleNames(), ", "))
		}
	}
	return nil
}

// WordBudget returns the target word count for a narration of the given
// duration.
func WordBudget(durationSeconds int) int {
	return int(math.Round(float64(durationSeconds) * WordsPerSecond))
}

// SegmentTimings splits duration into count contiguous ranges that exactly
// partition [0, duration).
func SegmentTimings(duration, count int) []types.PromptTiming {
	if count <= 0 {
		count = SegmentCount
	}
	timings := make([]types.PromptTiming, count)
	for i := 0; i < count; i++ {
		timings[i] = types.PromptTiming{
			Start: i * duration / count,
			End:   (i + 1) * duration / count,
		}
	}
	return timings
}

// CleanText normalizes whitespace and quote characters in generated text.
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Join(strings.Fields(text), " ")
	replacer := strings.NewReplacer(
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
	)
	return replacer.Replace(text)
}

// restampTimings overwrites prompt timings with the canonical segment
// partition. Model-produced timings are advisory; the partition invariant is
// enforced here.
func restampTimings(prompts []types.VideoPrompt, duration int) []types.VideoPrompt {
	timings := SegmentTimings(duration, len(prompts))
	for i := range prompts {
		prompts[i].Timing = timings[i]
	}
	return prompts
}
