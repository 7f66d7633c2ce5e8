// Package assembly implements the final stage: stitching clips and narration
// audio into the deliverable video.
package assembly

import (
	"context"

	"github.com/saymi-el/looply/internal/types"
	"github.com/saymi-el/looply/internal/visuals"
)

// Input carries everything the assembler needs to cut the final video.
type Input struct {
	JobID    string
	Assets   []visuals.Asset
	Audio    []byte
	Duration int
}

// Output is the finished video and what we know about it.
type Output struct {
	URL      string
	Metadata *types.VideoMetadata
}

// Assembler produces the final video from clips and audio.
type Assembler interface {
	Assemble(ctx context.Context, in Input) (*Output, error)
}
