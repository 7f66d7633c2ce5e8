package script

import "fmt"

const systemPrompt = "You are an expert short-form video scriptwriter and visual director. " +
	"Follow the output format instructions exactly."

func scriptPrompt(in Input) string {
	return fmt.Sprintf(`Write a %d second video narration script about "%s" with a %s tone.

The script must be:
- Natural and fluid when read aloud
- Engaging from the first sentence
- Around %d words to fit the duration
- Coherent from start to finish

Respond with the narration text only, no extra formatting.`,
		in.Duration, in.Topic, toneOrDefault(in.Tone), WordBudget(in.Duration))
}

func videoPromptsPrompt(in Input, scriptText string) string {
	return fmt.Sprintf(`You are given this video narration script:
"%s"

Directives:
- Topic: %s
- Tone: %s
- Duration: %d seconds
- Visual style: %s

Generate exactly %d video generation prompts synchronized with the script.
Respond with strict JSON of the form:
{"videoPrompts": [{"scene": "...", "positive": "...", "negative": "%s", "timing": {"start": 0, "end": 0}}]}

Each positive prompt must be detailed, visually rich and consistent with the
script; integrate these style keywords: %s.`,
		scriptText, in.Topic, toneOrDefault(in.Tone), in.Duration, styleOrDefault(in.VisualStyle),
		SegmentCount, DefaultNegativePrompt, StyleKeywords(styleOrDefault(in.VisualStyle)))
}

func combinedPrompt(in Input) string {
	return fmt.Sprintf(`Write a %d second video about "%s" with a %s tone.

Respond with strict JSON of the form:
{"text": "the full narration script", "videoPrompts": [{"scene": "...", "positive": "...", "negative": "...", "timing": {"start": 0, "end": 0}}]}

Requirements:
- The narration must be around %d words and natural to read aloud
- Produce exactly %d video prompts whose timings cover the full %d seconds
- Positive prompts must be detailed and use the %s visual style (%s)
- Negative prompts must list defects to avoid, starting from: %s`,
		in.Duration, in.Topic, toneOrDefault(in.Tone), WordBudget(in.Duration),
		SegmentCount, in.Duration, styleOrDefault(in.VisualStyle),
		StyleKeywords(styleOrDefault(in.VisualStyle)), DefaultNegativePrompt)
}

func toneOrDefault(tone string) string {
	if tone == "" {
		return "neutral"
	}
	return tone
}

func styleOrDefault(style string) string {
	if style == "" {
		return "modern"
	}
	return style
}
