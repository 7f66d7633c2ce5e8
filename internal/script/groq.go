package script

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conneroisu/groq-go"

	"github.com/saymi-el/looply/internal/types"
)

// GroqGenerator generates scripts and visual prompts with the Groq chat
// completion API. Modular mode issues separate script and prompt calls;
// combined mode asks for both in a single JSON response.
type GroqGenerator struct {
	client *groq.Client
	model  groq.ChatModel
}

// NewGroqGenerator creates a GroqGenerator for the given API key and model.
func NewGroqGenerator(apiKey, model string) (*GroqGenerator, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}
	return &GroqGenerator{
		client: client,
		model:  groq.ChatModel(model),
	}, nil
}

// Generate produces the narration script and prompt partition for the input.
func (g *GroqGenerator) Generate(ctx context.Context, in Input) (*types.GeneratedScript, error) {
	if in.Duration == 0 {
		in.Duration = DefaultDurationSeconds
	}
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	if in.UseModularGeneration {
		return g.generateModular(ctx, in)
	}
	return g.generateCombined(ctx, in)
}

func (g *GroqGenerator) generateModular(ctx context.Context, in Input) (*types.GeneratedScript, error) {
	text, err := g.complete(ctx, scriptPrompt(in), false)
	if err != nil {
		return nil, fmt.Errorf("script generation: %w", err)
	}
	text = CleanText(text)

	promptsJSON, err := g.complete(ctx, videoPromptsPrompt(in, text), true)
	if err != nil {
		return nil, fmt.Errorf("video prompt generation: %w", err)
	}

	prompts, err := parsePromptsResponse(promptsJSON, in)
	if err != nil {
		return nil, err
	}

	return &types.GeneratedScript{
		Text:         text,
		Duration:     in.Duration,
		VideoPrompts: prompts,
	}, nil
}

func (g *GroqGenerator) generateCombined(ctx context.Context, in Input) (*types.GeneratedScript, error) {
	content, err := g.complete(ctx, combinedPrompt(in), true)
	if err != nil {
		return nil, fmt.Errorf("combined generation: %w", err)
	}

	return parseCombinedResponse(content, in)
}

func (g *GroqGenerator) complete(ctx context.Context, prompt string, wantJSON bool) (string, error) {
	req := groq.ChatCompletionRequest{
		Model: g.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: systemPrompt},
			{Role: groq.RoleUser, Content: prompt},
		},
	}
	if wantJSON {
		req.ResponseFormat = &groq.ChatResponseFormat{Type: "json_object"}
	}

	resp, err := g.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty completion content")
	}
	return content, nil
}

// parsePromptsResponse decodes a prompt-list JSON response and enforces the
// partition invariant over the requested duration.
func parsePromptsResponse(content string, in Input) ([]types.VideoPrompt, error) {
	var wrapped struct {
		VideoPrompts []types.VideoPrompt `json:"videoPrompts"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &wrapped); err != nil {
		return nil, fmt.Errorf("parse video prompts response: %w", err)
	}
	if len(wrapped.VideoPrompts) == 0 {
		return nil, fmt.Errorf("model returned no video prompts")
	}
	return normalizePrompts(wrapped.VideoPrompts, in), nil
}

// parseCombinedResponse decodes a combined script+prompts JSON response.
func parseCombinedResponse(content string, in Input) (*types.GeneratedScript, error) {
	var decoded struct {
		Text         string              `json:"text"`
		VideoPrompts []types.VideoPrompt `json:"videoPrompts"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &decoded); err != nil {
		return nil, fmt.Errorf("parse combined response: %w", err)
	}
	if decoded.Text == "" {
		return nil, fmt.Errorf("combined response is missing the script text")
	}
	if len(decoded.VideoPrompts) == 0 {
		return nil, fmt.Errorf("combined response is missing video prompts")
	}

	return &types.GeneratedScript{
		Text:         CleanText(decoded.Text),
		Duration:     in.Duration,
		VideoPrompts: normalizePrompts(decoded.VideoPrompts, in),
	}, nil
}

// normalizePrompts fills missing negatives and replaces the model's timings
// with the canonical partition when they do not cover the duration exactly.
func normalizePrompts(prompts []types.VideoPrompt, in Input) []types.VideoPrompt {
	for i := range prompts {
		if prompts[i].Negative == "" {
			prompts[i].Negative = NegativePrompt(in.VisualStyle)
		}
	}
	if err := types.ValidatePromptPartition(prompts, in.Duration); err != nil {
		prompts = restampTimings(prompts, in.Duration)
	}
	return prompts
}

func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
