package services

import (
	"time"

	"github.com/saymi-el/looply/internal/db/models"
	"github.com/saymi-el/looply/internal/types"
)

func (s *ServicesTestSuite) backdate(jobID string, age time.Duration) {
	err := s.db.Model(&models.VideoJob{}).
		Where("id = ?", jobID).
		UpdateColumn("updated_at", time.Now().Add(-age)).Error
	s.Require().NoError(err)
}

func (s *ServicesTestSuite) TestSweepFailsStuckHandoffs() {
	stuck := s.handOffJob("render-stuck")
	fresh := s.handOffJob("render-fresh")
	s.backdate(stuck.ID, time.Hour)

	sweeper := NewSweeper(s.repo, time.Minute, 30*time.Minute)
	s.Require().NoError(sweeper.Sweep(s.ctx))

	got := s.reload(stuck.ID)
	s.Equal(models.VideoJobStatusFailed, got.Status)
	s.Contains(got.ErrorMessage, "did not call back")

	s.Equal(models.VideoJobStatusRunning, s.reload(fresh.ID).Status)
}

func (s *ServicesTestSuite) TestSweepIgnoresLocalRunningJobs() {
	// A RUNNING job with no hand-off belongs to a live local worker and is
	// never swept, however old.
	job := s.createJob(types.VideoRequest{Topic: "local work", Duration: 15})
	s.Require().NoError(s.repo.MarkRunning(s.ctx, job.ID))
	s.backdate(job.ID, 2*time.Hour)

	sweeper := NewSweeper(s.repo, time.Minute, 30*time.Minute)
	s.Require().NoError(sweeper.Sweep(s.ctx))

	s.Equal(models.VideoJobStatusRunning, s.reload(job.ID).Status)
}
