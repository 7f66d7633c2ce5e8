// Package speech implements the voiceover stage.
package speech

import "context"

// Synthesizer converts narration text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
