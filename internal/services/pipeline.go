package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/saymi-el/looply/internal/assembly"
	"github.com/saymi-el/looply/internal/db/repos"
	"github.com/saymi-el/looply/internal/events"
	"github.com/saymi-el/looply/internal/logger"
	"github.com/saymi-el/looply/internal/render"
	"github.com/saymi-el/looply/internal/script"
	"github.com/saymi-el/looply/internal/speech"
	"github.com/saymi-el/looply/internal/types"
	"github.com/saymi-el/looply/internal/visuals"
)

// Progress checkpoints reported as stages finish.
const (
	ProgressStarted     = 0
	ProgressScriptDone  = 20
	ProgressHandedOff   = 30
	ProgressSpeechDone  = 45
	ProgressVisualsDone = 70
	ProgressDone        = 100
)

// Stage names recorded in the step log.
const (
	StageScript   = "script"
	StageHandoff  = "handoff"
	StageSpeech   = "speech"
	StageVisuals  = "visuals"
	StageAssemble = "assemble"
)

// StageError reports which pipeline stage failed. Its message is what ends
// up in the job's error_message column.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Pipeline orchestrates the generation stages for one job at a time. When a
// render delegate is configured the visual stages are handed off to it and
// the job is completed later by the webhook receiver; otherwise all stages
// run locally and the job completes synchronously.
type Pipeline struct {
	jobs       *repos.VideoJobRepository
	scripts    script.Generator
	speech     speech.Synthesizer
	visuals    visuals.Generator
	assembler  assembly.Assembler
	delegate   *render.Client
	webhookURL string
}

// NewPipeline creates the orchestrator. delegate may be nil, which forces the
// local path.
func NewPipeline(
	jobs *repos.VideoJobRepository,
	scripts script.Generator,
	synth speech.Synthesizer,
	clips visuals.Generator,
	assembler assembly.Assembler,
	delegate *render.Client,
	webhookURL string,
) *Pipeline {
	return &Pipeline{
		jobs:       jobs,
		scripts:    scripts,
		speech:     synth,
		visuals:    clips,
		assembler:  assembler,
		delegate:   delegate,
		webhookURL: webhookURL,
	}
}

// Process runs the pipeline for the given job. A redelivered terminal job is
// a no-op. Any stage failure finalizes the job as FAILED before the error is
// returned to the caller.
func (p *Pipeline) Process(ctx context.Context, jobID string) error {
	job, err := p.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Retrying cannot make the row appear, drop the message.
			logger.WarnWithFields("Dropping message for unknown job", map[string]interface{}{
				"job_id": jobID,
			})
			return nil
		}
		return fmt.Errorf("load job %s: %w", jobID, err)
	}

	if err := p.jobs.MarkRunning(ctx, jobID); err != nil {
		if errors.Is(err, repos.ErrJobFinalized) {
			logger.InfoWithFields("Skipping redelivered terminal job", map[string]interface{}{
				"job_id": jobID,
				"status": job.Status,
			})
			return nil
		}
		return fmt.Errorf("mark job %s running: %w", jobID, err)
	}

	req, err := job.RequestData()
	if err != nil {
		return p.fail(ctx, jobID, &StageError{Stage: StageScript, Err: fmt.Errorf("decode request: %w", err)})
	}

	logger.InfoWithFields("Pipeline started", map[string]interface{}{
		"job_id":   jobID,
		"topic":    req.EffectiveTopic(),
		"duration": req.Duration,
	})

	var steps []types.PipelineStep

	generated, err := p.runScriptStage(ctx, req)
	if err != nil {
		return p.fail(ctx, jobID, &StageError{Stage: StageScript, Err: err})
	}
	steps = append(steps, okStep(StageScript, map[string]interface{}{
		"chars":   len(generated.Text),
		"prompts": len(generated.VideoPrompts),
	}))
	if err := p.jobs.UpdateProgress(ctx, jobID, ProgressScriptDone); err != nil {
		return fmt.Errorf("update progress for %s: %w", jobID, err)
	}

	if p.delegate != nil {
		return p.handOff(ctx, jobID, generated, steps)
	}
	return p.runLocal(ctx, jobID, req, generated, steps)
}

// runScriptStage produces the script. A request carrying a literal script
// skips generation entirely and gets the default duration with no prompts;
// the visuals stage will derive a fallback prompt from the text.
func (p *Pipeline) runScriptStage(ctx context.Context, req types.VideoRequest) (*types.GeneratedScript, error) {
	if req.Script != "" {
		duration := req.Duration
		if duration == 0 {
			duration = script.DefaultDurationSeconds
		}
		return &types.GeneratedScript{
			Text:     req.Script,
			Duration: duration,
		}, nil
	}

	return p.scripts.Generate(ctx, script.Input{
		Topic:                req.EffectiveTopic(),
		Tone:                 req.Tone,
		Duration:             req.Duration,
		VisualStyle:          req.VisualStyle,
		UseModularGeneration: req.UseModularGeneration,
		Context:              req.Context,
	})
}

// handOff submits the job to the render delegate and parks it at RUNNING
// with the hand-off snapshot. The webhook receiver finishes it.
func (p *Pipeline) handOff(ctx context.Context, jobID string, generated *types.GeneratedScript, steps []types.PipelineStep) error {
	prompts := generated.VideoPrompts
	if len(prompts) == 0 {
		prompts = visuals.FallbackPrompts(generated.Text, generated.Duration)
	}

	resp, err := p.delegate.Submit(ctx, types.RenderRequest{
		VideoJobID:   jobID,
		Duration:     generated.Duration,
		VideoPrompts: prompts,
		WebhookURL:   p.webhookURL,
	})
	if err != nil {
		return p.fail(ctx, jobID, &StageError{Stage: StageHandoff, Err: err})
	}

	steps = append(steps, okStep(StageHandoff, map[string]interface{}{
		"render_job_id": resp.RenderJobID,
		"estimated_s":   resp.EstimatedCompletionSeconds,
	}))

	snapshot, err := json.Marshal(types.VideoResult{
		RenderJobID:     resp.RenderJobID,
		Steps:           steps,
		GeneratedScript: generated.Text,
		VideoPrompts:    prompts,
	})
	if err != nil {
		return p.fail(ctx, jobID, &StageError{Stage: StageHandoff, Err: fmt.Errorf("marshal snapshot: %w", err)})
	}

	if err := p.jobs.SetHandoff(ctx, jobID, resp.RenderJobID, snapshot); err != nil {
		return fmt.Errorf("record hand-off for %s: %w", jobID, err)
	}

	logger.InfoWithFields("Job handed off to render delegate", map[string]interface{}{
		"job_id":        jobID,
		"render_job_id": resp.RenderJobID,
	})
	events.Publish(events.Event{Type: events.EventJobHandedOff, JobID: jobID, RenderJobID: resp.RenderJobID})
	return nil
}

// runLocal executes the speech, visuals and assemble stages in-process and
// finalizes the job.
func (p *Pipeline) runLocal(ctx context.Context, jobID string, req types.VideoRequest, generated *types.GeneratedScript, steps []types.PipelineStep) error {
	audio, err := p.speech.Synthesize(ctx, generated.Text)
	if err != nil {
		return p.fail(ctx, jobID, &StageError{Stage: StageSpeech, Err: err})
	}
	steps = append(steps, okStep(StageSpeech, map[string]interface{}{"bytes": len(audio)}))
	if err := p.jobs.UpdateProgress(ctx, jobID, ProgressSpeechDone); err != nil {
		return fmt.Errorf("update progress for %s: %w", jobID, err)
	}

	prompts := generated.VideoPrompts
	if len(prompts) == 0 {
		prompts = visuals.FallbackPrompts(generated.Text, generated.Duration)
	}
	assets, err := p.visuals.Generate(ctx, prompts, generated.Duration)
	if err != nil {
		return p.fail(ctx, jobID, &StageError{Stage: StageVisuals, Err: err})
	}
	steps = append(steps, okStep(StageVisuals, map[string]interface{}{"clips": len(assets)}))
	if err := p.jobs.UpdateProgress(ctx, jobID, ProgressVisualsDone); err != nil {
		return fmt.Errorf("update progress for %s: %w", jobID, err)
	}

	out, err := p.assembler.Assemble(ctx, assembly.Input{
		JobID:    jobID,
		Assets:   assets,
		Audio:    audio,
		Duration: generated.Duration,
	})
	if err != nil {
		return p.fail(ctx, jobID, &StageError{Stage: StageAssemble, Err: err})
	}
	steps = append(steps, okStep(StageAssemble, nil))

	result, err := json.Marshal(types.VideoResult{
		URL:             out.URL,
		Steps:           steps,
		GeneratedScript: generated.Text,
		VideoPrompts:    prompts,
		Summary:         buildSummary(req, generated, len(assets)),
		Metadata:        out.Metadata,
	})
	if err != nil {
		return p.fail(ctx, jobID, &StageError{Stage: StageAssemble, Err: fmt.Errorf("marshal result: %w", err)})
	}

	if err := p.jobs.Complete(ctx, jobID, result, "", nil); err != nil {
		return fmt.Errorf("complete job %s: %w", jobID, err)
	}

	logger.InfoWithFields("Pipeline completed", map[string]interface{}{
		"job_id": jobID,
		"url":    out.URL,
	})
	events.Publish(events.Event{Type: events.EventJobCompleted, JobID: jobID})
	return nil
}

// fail finalizes the job as FAILED, then returns the stage error. A job that
// reached a terminal state through another path keeps its original outcome.
func (p *Pipeline) fail(ctx context.Context, jobID string, stageErr *StageError) error {
	logger.ErrorWithFields("Pipeline stage failed", map[string]interface{}{
		"job_id": jobID,
		"stage":  stageErr.Stage,
		"error":  stageErr.Err.Error(),
	})

	if err := p.jobs.Fail(ctx, jobID, stageErr.Error()); err != nil && !errors.Is(err, repos.ErrJobFinalized) {
		logger.Errorf("Failed to record failure for job %s: %v", jobID, err)
	}
	events.Publish(events.Event{Type: events.EventJobFailed, JobID: jobID, Error: stageErr.Error()})
	return stageErr
}

func okStep(name string, meta map[string]interface{}) types.PipelineStep {
	return types.PipelineStep{Name: name, Status: types.StepStatusOK, Meta: meta}
}

func buildSummary(req types.VideoRequest, generated *types.GeneratedScript, clipCount int) string {
	return fmt.Sprintf("Generated a %d second video about %q with %d scenes",
		generated.Duration, req.EffectiveTopic(), clipCount)
}
