package types

import (
	"errors"
	"fmt"
)

// ErrValidation marks request validation failures so transport layers can map
// them to 400 responses.
var ErrValidation = errors.New("validation failed")

// Request parameter bounds.
const (
	MinDurationSeconds = 5
	MaxDurationSeconds = 300
	MaxTopicLength     = 200
	MaxToneLength      = 100
)

// Validate checks the submission parameters against the accepted bounds.
// A zero duration is allowed and resolved to the default later.
func (r *VideoRequest) Validate() error {
	if r.Duration != 0 && (r.Duration < MinDurationSeconds || r.Duration > MaxDurationSeconds) {
		return fmt.Errorf("%w: duration must be between %d and %d seconds", ErrValidation, MinDurationSeconds, MaxDurationSeconds)
	}
	if len(r.Topic) > MaxTopicLength {
		return fmt.Errorf("%w: topic must be less than %d characters", ErrValidation, MaxTopicLength)
	}
	if len(r.Tone) > MaxToneLength {
		return fmt.Errorf("%w: tone must be less than %d characters", ErrValidation, MaxToneLength)
	}
	return nil
}

// ValidatePrompt checks that a single video prompt is structurally usable.
func ValidatePrompt(p VideoPrompt) error {
	if p.Positive == "" {
		return fmt.Errorf("prompt is missing a positive directive")
	}
	if p.Timing.End <= p.Timing.Start {
		return fmt.Errorf("prompt timing [%d, %d) is empty or inverted", p.Timing.Start, p.Timing.End)
	}
	return nil
}

// ValidatePromptPartition checks that the prompt time ranges exactly cover
// [0, duration): the first range starts at 0, every range begins where the
// previous one ended, and the last range ends at duration.
func ValidatePromptPartition(prompts []VideoPrompt, duration int) error {
	if len(prompts) == 0 {
		return fmt.Errorf("no prompts to cover %d seconds", duration)
	}

	expectedStart := 0
	for i, p := range prompts {
		if err := ValidatePrompt(p); err != nil {
			return fmt.Errorf("prompt %d: %w", i, err)
		}
		if p.Timing.Start != expectedStart {
			return fmt.Errorf("prompt %d starts at %d, expected %d", i, p.Timing.Start, expectedStart)
		}
		expectedStart = p.Timing.End
	}

	if expectedStart != duration {
		return fmt.Errorf("prompts end at %d, expected %d", expectedStart, duration)
	}
	return nil
}
