package repos

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/saymi-el/looply/internal/db/models"
)

func (s *VideoJobRepositoryTestSuite) TestCreateAssignsIdentityAndPendingStatus() {
	job := s.createTestJob(1)

	s.NotEmpty(job.ID)
	s.Equal(models.VideoJobStatusPending, job.Status)
	s.Equal(0, job.Progress)

	found, err := s.repo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(job.ID, found.ID)
	s.Equal(uint(1), found.OwnerID)
}

func (s *VideoJobRepositoryTestSuite) TestGetByIDNotFound() {
	_, err := s.repo.GetByID(s.ctx, "3f6f9a1c-0000-0000-0000-000000000000")
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *VideoJobRepositoryTestSuite) TestMarkRunning() {
	job := s.createTestJob(1)

	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))

	found, err := s.repo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.VideoJobStatusRunning, found.Status)
	s.Equal(0, found.Progress)

	// Re-delivery of the queue message restarts the same job.
	s.NoError(s.repo.MarkRunning(s.ctx, job.ID))
}

func (s *VideoJobRepositoryTestSuite) TestMarkRunningRejectedOnTerminalJob() {
	job := s.createTestJob(1)
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))
	s.Require().NoError(s.repo.Fail(s.ctx, job.ID, "boom"))

	err := s.repo.MarkRunning(s.ctx, job.ID)
	s.True(errors.Is(err, ErrJobFinalized))
}

func (s *VideoJobRepositoryTestSuite) TestProgressIsMonotone() {
	job := s.createTestJob(1)
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))

	s.Require().NoError(s.repo.UpdateProgress(s.ctx, job.ID, 20))
	s.Require().NoError(s.repo.UpdateProgress(s.ctx, job.ID, 45))

	err := s.repo.UpdateProgress(s.ctx, job.ID, 20)
	s.True(errors.Is(err, ErrStaleProgress))

	found, err := s.repo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(45, found.Progress)
}

func (s *VideoJobRepositoryTestSuite) TestUpdateProgressOutOfRange() {
	job := s.createTestJob(1)
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))

	s.Error(s.repo.UpdateProgress(s.ctx, job.ID, -1))
	s.Error(s.repo.UpdateProgress(s.ctx, job.ID, 101))
}

func (s *VideoJobRepositoryTestSuite) TestSetHandoff() {
	job := s.createTestJob(1)
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))

	snapshot := json.RawMessage(`{"renderJobId":"render-1"}`)
	s.Require().NoError(s.repo.SetHandoff(s.ctx, job.ID, "render-1", snapshot))

	found, err := s.repo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.VideoJobStatusRunning, found.Status)
	s.Equal(30, found.Progress)
	s.Equal("render-1", found.RenderJobID)

	byRender, err := s.repo.GetByRenderJobID(s.ctx, "render-1")
	s.Require().NoError(err)
	s.Equal(job.ID, byRender.ID)
}

func (s *VideoJobRepositoryTestSuite) TestSetHandoffCorrelationIDIsImmutable() {
	job := s.createTestJob(1)
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))
	s.Require().NoError(s.repo.SetHandoff(s.ctx, job.ID, "render-1", nil))

	// Same id is idempotent, a different id is rejected.
	s.NoError(s.repo.SetHandoff(s.ctx, job.ID, "render-1", nil))
	err := s.repo.SetHandoff(s.ctx, job.ID, "render-2", nil)
	s.True(errors.Is(err, ErrRenderJobIDImmutable))
}

func (s *VideoJobRepositoryTestSuite) TestCompleteStoresResultAndClearsError() {
	job := s.createTestJob(1)
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))

	result := json.RawMessage(`{"url":"https://cdn.example.com/v.mp4"}`)
	metadata := json.RawMessage(`{"format":"mp4"}`)
	s.Require().NoError(s.repo.Complete(s.ctx, job.ID, result, "gcs", metadata))

	found, err := s.repo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.VideoJobStatusCompleted, found.Status)
	s.Equal(100, found.Progress)
	s.Empty(found.ErrorMessage)
	s.Equal("gcs", found.CloudProvider)
	s.JSONEq(string(result), string(found.Result))
}

func (s *VideoJobRepositoryTestSuite) TestFailStoresErrorAndClearsResult() {
	job := s.createTestJob(1)
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))

	s.Require().NoError(s.repo.Fail(s.ctx, job.ID, "speech synthesis failed"))

	found, err := s.repo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.VideoJobStatusFailed, found.Status)
	s.Equal(100, found.Progress)
	s.Equal("speech synthesis failed", found.ErrorMessage)
	s.Empty(found.Result)
}

func (s *VideoJobRepositoryTestSuite) TestTerminalStateIsFinal() {
	job := s.createTestJob(1)
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))

	result := json.RawMessage(`{"url":"https://cdn.example.com/v.mp4"}`)
	s.Require().NoError(s.repo.Complete(s.ctx, job.ID, result, "", nil))

	// A second completion, a failure and a progress write are all rejected.
	s.True(errors.Is(s.repo.Complete(s.ctx, job.ID, result, "", nil), ErrJobFinalized))
	s.True(errors.Is(s.repo.Fail(s.ctx, job.ID, "late failure"), ErrJobFinalized))
	s.Error(s.repo.UpdateProgress(s.ctx, job.ID, 100))

	found, err := s.repo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.VideoJobStatusCompleted, found.Status)
	s.JSONEq(string(result), string(found.Result))
	s.Empty(found.ErrorMessage)
}

func (s *VideoJobRepositoryTestSuite) TestListByOwnerPagination() {
	for i := 0; i < 12; i++ {
		s.createTestJob(7)
	}
	s.createTestJob(8)

	jobs, total, err := s.repo.ListByOwner(s.ctx, 7, &models.ListOptions{Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Equal(int64(12), total)
	s.Len(jobs, 10)

	jobs, total, err = s.repo.ListByOwner(s.ctx, 7, &models.ListOptions{Page: 2, PageSize: 10})
	s.Require().NoError(err)
	s.Equal(int64(12), total)
	s.Len(jobs, 2)
}

func (s *VideoJobRepositoryTestSuite) TestListStuckAwaitingCallback() {
	job := s.createTestJob(1)
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))
	s.Require().NoError(s.repo.SetHandoff(s.ctx, job.ID, "render-1", nil))

	// A local-path running job without a correlation id is never reported.
	local := s.createTestJob(1)
	s.Require().NoError(s.repo.MarkRunning(s.ctx, local.ID))

	stuck, err := s.repo.ListStuckAwaitingCallback(s.ctx, time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.Require().Len(stuck, 1)
	s.Equal(job.ID, stuck[0].ID)

	stuck, err = s.repo.ListStuckAwaitingCallback(s.ctx, time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	s.Empty(stuck)
}
