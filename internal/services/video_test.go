package services

import (
	"gorm.io/gorm"

	"github.com/saymi-el/looply/internal/db/models"
	"github.com/saymi-el/looply/internal/types"
)

func (s *ServicesTestSuite) TestSubmitCreatesPendingJobAndEnqueues() {
	svc := NewVideoService(s.repo, s.queue)

	job, err := svc.Submit(s.ctx, 1, types.VideoRequest{Topic: "glaciers", Duration: 30})
	s.Require().NoError(err)
	s.NotEmpty(job.ID)
	s.Equal(models.VideoJobStatusPending, job.Status)
	s.Equal(0, job.Progress)

	msg, err := s.queue.Claim(s.ctx)
	s.Require().NoError(err)
	s.Equal(job.ID, msg.JobID)
}

func (s *ServicesTestSuite) TestSubmitRejectsInvalidRequest() {
	svc := NewVideoService(s.repo, s.queue)

	_, err := svc.Submit(s.ctx, 1, types.VideoRequest{Topic: "too short", Duration: 2})
	s.Require().Error(err)
	s.Contains(err.Error(), "invalid video request")
}

func (s *ServicesTestSuite) TestSubmitAllowsZeroDuration() {
	svc := NewVideoService(s.repo, s.queue)

	job, err := svc.Submit(s.ctx, 1, types.VideoRequest{Topic: "defaults"})
	s.Require().NoError(err)
	s.NotEmpty(job.ID)
}

func (s *ServicesTestSuite) TestGetJobScopedToOwner() {
	svc := NewVideoService(s.repo, s.queue)
	job := s.createJob(types.VideoRequest{Topic: "mine", Duration: 15})

	got, err := svc.GetJob(s.ctx, 1, job.ID)
	s.Require().NoError(err)
	s.Equal(job.ID, got.ID)

	_, err = svc.GetJob(s.ctx, 2, job.ID)
	s.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *ServicesTestSuite) TestListJobsPaginates() {
	svc := NewVideoService(s.repo, s.queue)
	for i := 0; i < 12; i++ {
		s.createJob(types.VideoRequest{Topic: "bulk", Duration: 15})
	}

	jobs, total, err := svc.ListJobs(s.ctx, 1, &models.ListOptions{Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Equal(int64(12), total)
	s.Len(jobs, 10)

	jobs, _, err = svc.ListJobs(s.ctx, 1, &models.ListOptions{Page: 2, PageSize: 10})
	s.Require().NoError(err)
	s.Len(jobs, 2)
}
