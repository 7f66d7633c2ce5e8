package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/saymi-el/looply/internal/assembly"
	"github.com/saymi-el/looply/internal/db/models"
	"github.com/saymi-el/looply/internal/render"
	"github.com/saymi-el/looply/internal/script"
	"github.com/saymi-el/looply/internal/speech"
	"github.com/saymi-el/looply/internal/storage"
	"github.com/saymi-el/looply/internal/types"
	"github.com/saymi-el/looply/internal/visuals"
)

func (s *ServicesTestSuite) delegateServer(renderJobID string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.RenderRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
		s.NotEmpty(req.VideoJobID)
		s.NotEmpty(req.VideoPrompts)
		s.NotEmpty(req.WebhookURL)

		_ = json.NewEncoder(w).Encode(types.RenderResponse{
			Success:     true,
			RenderJobID: renderJobID,
		})
	}))
	s.T().Cleanup(srv.Close)
	return srv
}

func (s *ServicesTestSuite) TestLocalPipelineCompletesJob() {
	job := s.createJob(types.VideoRequest{Topic: "deep sea creatures", Duration: 15, VisualStyle: "cinematic"})

	err := s.newLocalPipeline().Process(s.ctx, job.ID)
	s.Require().NoError(err)

	got := s.reload(job.ID)
	s.Equal(models.VideoJobStatusCompleted, got.Status)
	s.Equal(100, got.Progress)
	s.Empty(got.ErrorMessage)

	result, err := got.ResultData()
	s.Require().NoError(err)
	s.Require().NotNil(result)
	s.NotEmpty(result.URL)
	s.NotEmpty(result.GeneratedScript)
	s.NotEmpty(result.Summary)

	s.Require().Len(result.VideoPrompts, 3)
	s.Equal(types.PromptTiming{Start: 0, End: 5}, result.VideoPrompts[0].Timing)
	s.Equal(types.PromptTiming{Start: 5, End: 10}, result.VideoPrompts[1].Timing)
	s.Equal(types.PromptTiming{Start: 10, End: 15}, result.VideoPrompts[2].Timing)

	stages := make([]string, 0, len(result.Steps))
	for _, step := range result.Steps {
		s.Equal(types.StepStatusOK, step.Status)
		stages = append(stages, step.Name)
	}
	s.Equal([]string{StageScript, StageSpeech, StageVisuals, StageAssemble}, stages)
}

func (s *ServicesTestSuite) TestLiteralScriptSkipsGeneration() {
	job := s.createJob(types.VideoRequest{Script: "This is my prewritten narration."})

	pipeline := NewPipeline(
		s.repo,
		&failGenerator{t: s.T()},
		speech.NewStubSynthesizer(),
		visuals.NewStubGenerator(),
		assembly.NewStubAssembler(storage.NewLocalStorage(s.T().TempDir())),
		nil,
		"",
	)
	s.Require().NoError(pipeline.Process(s.ctx, job.ID))

	got := s.reload(job.ID)
	s.Equal(models.VideoJobStatusCompleted, got.Status)

	result, err := got.ResultData()
	s.Require().NoError(err)
	s.Equal("This is my prewritten narration.", result.GeneratedScript)

	// No prompt partition from the script stage, so the visuals stage ran on
	// a single full-length fallback prompt at the default duration.
	s.Require().Len(result.VideoPrompts, 1)
	s.Equal(types.PromptTiming{Start: 0, End: 15}, result.VideoPrompts[0].Timing)
	s.Contains(result.VideoPrompts[0].Positive, "prewritten narration")
}

func (s *ServicesTestSuite) TestStageFailureFinalizesJob() {
	job := s.createJob(types.VideoRequest{Topic: "volcanoes", Duration: 15})

	synth := &failSynth{}
	pipeline := NewPipeline(
		s.repo,
		script.NewStaticGenerator(),
		synth,
		visuals.NewStubGenerator(),
		assembly.NewStubAssembler(storage.NewLocalStorage(s.T().TempDir())),
		nil,
		"",
	)

	err := pipeline.Process(s.ctx, job.ID)
	s.Require().Error(err)

	var stageErr *StageError
	s.Require().ErrorAs(err, &stageErr)
	s.Equal(StageSpeech, stageErr.Stage)

	got := s.reload(job.ID)
	s.Equal(models.VideoJobStatusFailed, got.Status)
	s.Equal(100, got.Progress)
	s.Contains(got.ErrorMessage, "speech stage failed")
	s.Contains(got.ErrorMessage, "voice service unavailable")
	s.Nil(got.Result)
}

func (s *ServicesTestSuite) TestHandoffParksJobAwaitingCallback() {
	job := s.createJob(types.VideoRequest{Topic: "city timelapse", Duration: 15})

	srv := s.delegateServer("render-7")
	delegate := render.NewClient(srv.URL, "key", time.Second)

	s.Require().NoError(s.newDelegatePipeline(delegate, nil).Process(s.ctx, job.ID))

	got := s.reload(job.ID)
	s.Equal(models.VideoJobStatusRunning, got.Status)
	s.Equal(ProgressHandedOff, got.Progress)
	s.Equal("render-7", got.RenderJobID)

	snapshot, err := got.ResultData()
	s.Require().NoError(err)
	s.Require().NotNil(snapshot)
	s.Equal("render-7", snapshot.RenderJobID)
	s.Empty(snapshot.URL, "no video yet, the delegate owns the visual stages")

	stages := make([]string, 0, len(snapshot.Steps))
	for _, step := range snapshot.Steps {
		stages = append(stages, step.Name)
	}
	s.Equal([]string{StageScript, StageHandoff}, stages)
}

func (s *ServicesTestSuite) TestDelegateUnreachableFailsWithoutLocalStages() {
	job := s.createJob(types.VideoRequest{Topic: "northern lights", Duration: 15})

	delegate := render.NewClient("http://127.0.0.1:1", "key", 100*time.Millisecond)
	synth := &failSynth{}

	err := s.newDelegatePipeline(delegate, synth).Process(s.ctx, job.ID)
	s.Require().Error(err)

	var stageErr *StageError
	s.Require().ErrorAs(err, &stageErr)
	s.Equal(StageHandoff, stageErr.Stage)

	got := s.reload(job.ID)
	s.Equal(models.VideoJobStatusFailed, got.Status)
	s.False(synth.called, "local stages must not run on the delegate path")
}

func (s *ServicesTestSuite) TestProcessIsNoOpForTerminalJob() {
	job := s.createJob(types.VideoRequest{Topic: "redelivery", Duration: 15})
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))
	s.Require().NoError(s.repo.Fail(s.ctx, job.ID, "first attempt failed"))

	s.Require().NoError(s.newLocalPipeline().Process(s.ctx, job.ID))

	got := s.reload(job.ID)
	s.Equal(models.VideoJobStatusFailed, got.Status)
	s.Equal("first attempt failed", got.ErrorMessage)
}

func (s *ServicesTestSuite) TestProcessDropsUnknownJob() {
	// A message naming a job with no row is not redelivered.
	err := s.newLocalPipeline().Process(s.ctx, "00000000-0000-0000-0000-000000000000")
	s.Require().NoError(err)
}
