package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/saymi-el/looply/internal/types"
)

// StaticGenerator produces deterministic scripts without calling an LLM. It
// backs deployments that have no Groq API key and the test suite.
type StaticGenerator struct{}

// NewStaticGenerator creates a StaticGenerator.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

// Generate builds a templated narration sized to the duration's word budget
// and a prompt partition from the style catalog.
func (s *StaticGenerator) Generate(_ context.Context, in Input) (*types.GeneratedScript, error) {
	if in.Duration == 0 {
		in.Duration = DefaultDurationSeconds
	}
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	topic := in.Topic
	if topic == "" {
		topic = "an interesting subject"
	}
	style := styleOrDefault(in.VisualStyle)
	tone := toneOrDefault(in.Tone)

	text := buildNarration(topic, tone, WordBudget(in.Duration))
	timings := SegmentTimings(in.Duration, SegmentCount)
	scenes := []string{"opening shot", "main sequence", "closing shot"}

	prompts := make([]types.VideoPrompt, SegmentCount)
	for i := range prompts {
		prompts[i] = types.VideoPrompt{
			Scene:    scenes[i%len(scenes)],
			Positive: fmt.Sprintf("%s of %s, %s", scenes[i%len(scenes)], topic, StyleKeywords(style)),
			Negative: NegativePrompt(style),
			Timing:   timings[i],
		}
	}

	return &types.GeneratedScript{
		Text:         text,
		Duration:     in.Duration,
		VideoPrompts: prompts,
	}, nil
}

// buildNarration repeats a topic-centric sentence pool until the word budget
// is met, then trims to it.
func buildNarration(topic, tone string, budget int) string {
	sentences := []string{
		fmt.Sprintf("Let's take a closer look at %s.", topic),
		fmt.Sprintf("There is more to %s than meets the eye.", topic),
		fmt.Sprintf("Here is what makes %s worth your attention, told in a %s voice.", topic, tone),
		fmt.Sprintf("Every detail of %s tells part of the story.", topic),
		fmt.Sprintf("And that is why %s matters today.", topic),
	}

	var words []string
	for i := 0; len(words) < budget; i++ {
		words = append(words, strings.Fields(sentences[i%len(sentences)])...)
	}
	if len(words) > budget {
		words = words[:budget]
	}
	return CleanText(strings.Join(words, " "))
}
