package services

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/saymi-el/looply/internal/db/models"
	"github.com/saymi-el/looply/internal/db/repos"
	"github.com/saymi-el/looply/internal/render"
	"github.com/saymi-el/looply/internal/types"
)

// handOffJob creates a job parked at RUNNING with a hand-off snapshot, the
// state a delegate callback finds it in.
func (s *ServicesTestSuite) handOffJob(renderJobID string) *models.VideoJob {
	job := s.createJob(types.VideoRequest{Topic: "aurora", Duration: 15})

	srv := s.delegateServer(renderJobID)
	delegate := render.NewClient(srv.URL, "key", time.Second)
	s.Require().NoError(s.newDelegatePipeline(delegate, nil).Process(s.ctx, job.ID))

	return s.reload(job.ID)
}

func (s *ServicesTestSuite) TestWebhookCompletedFinalizesJob() {
	job := s.handOffJob("render-1")
	svc := NewWebhookService(s.repo)

	err := svc.HandleNotification(s.ctx, types.RenderWebhookPayload{
		RenderJobID:   "render-1",
		VideoJobID:    job.ID,
		Status:        types.RenderStatusCompleted,
		VideoURL:      "https://cdn.example.com/final.mp4",
		CloudProvider: "vast",
		Metadata:      &types.VideoMetadata{Duration: 15, FileSize: 1024, Format: "mp4"},
	})
	s.Require().NoError(err)

	got := s.reload(job.ID)
	s.Equal(models.VideoJobStatusCompleted, got.Status)
	s.Equal(100, got.Progress)
	s.Equal("vast", got.CloudProvider)

	result, err := got.ResultData()
	s.Require().NoError(err)
	s.Equal("https://cdn.example.com/final.mp4", result.URL)
	s.Equal("render-1", result.RenderJobID)
	s.NotEmpty(result.GeneratedScript, "hand-off snapshot survives completion")
	s.Require().NotNil(result.Metadata)
	s.Equal(int64(1024), result.Metadata.FileSize)

	last := result.Steps[len(result.Steps)-1]
	s.Equal("render", last.Name)
	s.Equal(types.StepStatusOK, last.Status)
}

func (s *ServicesTestSuite) TestWebhookDuplicateCompletionIsRejectedIdempotently() {
	job := s.handOffJob("render-2")
	svc := NewWebhookService(s.repo)

	payload := types.RenderWebhookPayload{
		RenderJobID: "render-2",
		VideoJobID:  job.ID,
		Status:      types.RenderStatusCompleted,
		VideoURL:    "https://cdn.example.com/first.mp4",
	}
	s.Require().NoError(svc.HandleNotification(s.ctx, payload))

	payload.VideoURL = "https://cdn.example.com/second.mp4"
	err := svc.HandleNotification(s.ctx, payload)
	s.Require().ErrorIs(err, repos.ErrJobFinalized)

	result, err := s.reload(job.ID).ResultData()
	s.Require().NoError(err)
	s.Equal("https://cdn.example.com/first.mp4", result.URL, "first outcome wins")
}

func (s *ServicesTestSuite) TestWebhookFailedFinalizesJob() {
	job := s.handOffJob("render-3")
	svc := NewWebhookService(s.repo)

	err := svc.HandleNotification(s.ctx, types.RenderWebhookPayload{
		RenderJobID: "render-3",
		VideoJobID:  job.ID,
		Status:      types.RenderStatusFailed,
		Error:       "gpu instance preempted",
	})
	s.Require().NoError(err)

	got := s.reload(job.ID)
	s.Equal(models.VideoJobStatusFailed, got.Status)
	s.Equal(100, got.Progress)
	s.Equal("gpu instance preempted", got.ErrorMessage)
}

func (s *ServicesTestSuite) TestWebhookProcessingLeavesJobUntouched() {
	job := s.handOffJob("render-4")
	svc := NewWebhookService(s.repo)

	err := svc.HandleNotification(s.ctx, types.RenderWebhookPayload{
		RenderJobID: "render-4",
		VideoJobID:  job.ID,
		Status:      types.RenderStatusProcessing,
	})
	s.Require().NoError(err)

	got := s.reload(job.ID)
	s.Equal(models.VideoJobStatusRunning, got.Status)
	s.Equal(ProgressHandedOff, got.Progress, "processing pings carry no state change")
	s.Equal("render-4", got.RenderJobID)
}

func (s *ServicesTestSuite) TestWebhookFindsJobByRenderJobID() {
	job := s.handOffJob("render-5")
	svc := NewWebhookService(s.repo)

	err := svc.HandleNotification(s.ctx, types.RenderWebhookPayload{
		RenderJobID: "render-5",
		Status:      types.RenderStatusCompleted,
		VideoURL:    "https://cdn.example.com/final.mp4",
	})
	s.Require().NoError(err)
	s.Equal(models.VideoJobStatusCompleted, s.reload(job.ID).Status)
}

func (s *ServicesTestSuite) TestWebhookUnknownJob() {
	svc := NewWebhookService(s.repo)

	err := svc.HandleNotification(s.ctx, types.RenderWebhookPayload{
		VideoJobID:  "00000000-0000-0000-0000-000000000000",
		RenderJobID: "render-nope",
		Status:      types.RenderStatusCompleted,
	})
	s.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *ServicesTestSuite) TestWebhookCorrelationMismatch() {
	job := s.handOffJob("render-6")
	svc := NewWebhookService(s.repo)

	err := svc.HandleNotification(s.ctx, types.RenderWebhookPayload{
		VideoJobID:  job.ID,
		RenderJobID: "someone-elses-render",
		Status:      types.RenderStatusCompleted,
	})
	s.Require().ErrorIs(err, ErrCorrelationMismatch)
	s.Equal(models.VideoJobStatusRunning, s.reload(job.ID).Status)
}

func (s *ServicesTestSuite) TestWebhookCompletedWithoutURLIsRejected() {
	job := s.handOffJob("render-7")
	svc := NewWebhookService(s.repo)

	err := svc.HandleNotification(s.ctx, types.RenderWebhookPayload{
		VideoJobID:  job.ID,
		RenderJobID: "render-7",
		Status:      types.RenderStatusCompleted,
	})
	s.Require().ErrorIs(err, ErrMissingVideoURL)
	s.Equal(models.VideoJobStatusRunning, s.reload(job.ID).Status)
}

func (s *ServicesTestSuite) TestWebhookUnknownStatus() {
	job := s.handOffJob("render-8")
	svc := NewWebhookService(s.repo)

	err := svc.HandleNotification(s.ctx, types.RenderWebhookPayload{
		VideoJobID:  job.ID,
		RenderJobID: "render-8",
		Status:      "paused",
	})
	s.Require().ErrorIs(err, ErrUnknownRenderStatus)
}

func (s *ServicesTestSuite) TestWebhookCompletedWithoutSnapshot() {
	// A job completed directly from PENDING hand-off state with no snapshot
	// still gets a usable result.
	job := s.createJob(types.VideoRequest{Topic: "bare", Duration: 15})
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))
	s.Require().NoError(s.repo.SetHandoff(s.ctx, job.ID, "render-9", json.RawMessage(`null`)))

	svc := NewWebhookService(s.repo)
	err := svc.HandleNotification(s.ctx, types.RenderWebhookPayload{
		VideoJobID:  job.ID,
		RenderJobID: "render-9",
		Status:      types.RenderStatusCompleted,
		VideoURL:    "https://cdn.example.com/final.mp4",
	})
	s.Require().NoError(err)

	result, err := s.reload(job.ID).ResultData()
	s.Require().NoError(err)
	s.Equal("https://cdn.example.com/final.mp4", result.URL)
	s.Equal("render-9", result.RenderJobID)
}
