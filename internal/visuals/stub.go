package visuals

import (
	"context"
	"fmt"

	"github.com/saymi-el/looply/internal/types"
)

// StubGenerator stands in when no text-to-video endpoint is configured.
type StubGenerator struct{}

func NewStubGenerator() *StubGenerator {
	return &StubGenerator{}
}

func (s *StubGenerator) Generate(_ context.Context, prompts []types.VideoPrompt, _ int) ([]Asset, error) {
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts to generate")
	}
	assets := make([]Asset, 0, len(prompts))
	for i, prompt := range prompts {
		assets = append(assets, Asset{
			Prompt: prompt,
			URL:    fmt.Sprintf("stub://clip/%d", i),
		})
	}
	return assets, nil
}
