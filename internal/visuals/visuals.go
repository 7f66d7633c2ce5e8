// Package visuals implements the clip generation stage: one video asset per
// visual prompt.
package visuals

import (
	"context"
	"strings"

	"github.com/saymi-el/looply/internal/types"
)

// FallbackPromptLength caps the script excerpt used when a job arrives
// without visual prompts.
const FallbackPromptLength = 200

// Asset is one generated clip and the prompt that produced it.
type Asset struct {
	Prompt types.VideoPrompt `json:"prompt"`
	URL    string            `json:"url"`
}

// Generator turns visual prompts into clip assets.
type Generator interface {
	Generate(ctx context.Context, prompts []types.VideoPrompt, duration int) ([]Asset, error)
}

// FallbackPrompts builds a single full-length prompt from the script text.
// Used when the script stage produced no prompt partition.
func FallbackPrompts(script string, duration int) []types.VideoPrompt {
	excerpt := strings.TrimSpace(script)
	if len(excerpt) > FallbackPromptLength {
		excerpt = excerpt[:FallbackPromptLength]
	}
	return []types.VideoPrompt{{
		Scene:    "full video",
		Positive: excerpt,
		Timing:   types.PromptTiming{Start: 0, End: duration},
	}}
}
