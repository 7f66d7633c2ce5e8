package speech

import (
	"context"
	"fmt"
)

// StubSynthesizer stands in when no TTS API key is configured. It returns a
// small deterministic payload so downstream stages still have bytes to move.
type StubSynthesizer struct{}

func NewStubSynthesizer() *StubSynthesizer {
	return &StubSynthesizer{}
}

func (s *StubSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("no narration text to synthesize")
	}
	return []byte("stub-audio:" + text[:min(len(text), 32)]), nil
}
