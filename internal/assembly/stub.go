package assembly

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saymi-el/looply/internal/storage"
	"github.com/saymi-el/looply/internal/types"
)

// StubAssembler stands in when no edit API is configured. It writes a JSON
// manifest of the cut through the artifact store and returns its URL, so the
// rest of the pipeline behaves as in production.
type StubAssembler struct {
	store storage.Store
}

func NewStubAssembler(store storage.Store) *StubAssembler {
	return &StubAssembler{store: store}
}

func (a *StubAssembler) Assemble(ctx context.Context, in Input) (*Output, error) {
	if len(in.Assets) == 0 {
		return nil, fmt.Errorf("no clips to assemble")
	}

	manifest, err := json.Marshal(map[string]any{
		"jobId":    in.JobID,
		"clips":    in.Assets,
		"duration": in.Duration,
		"hasAudio": len(in.Audio) > 0,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}

	url, err := a.store.Save(ctx, in.JobID+".json", manifest)
	if err != nil {
		return nil, fmt.Errorf("store manifest: %w", err)
	}

	return &Output{
		URL: url,
		Metadata: &types.VideoMetadata{
			Duration:   float64(in.Duration),
			FileSize:   int64(len(manifest)),
			Resolution: "1080x1920",
			Format:     "json",
		},
	}, nil
}
