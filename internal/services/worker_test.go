package services

import (
	"context"
	"sync"
	"time"

	"github.com/saymi-el/looply/internal/db/models"
	"github.com/saymi-el/looply/internal/types"
)

func (s *ServicesTestSuite) TestWorkerProcessesQueuedJobs() {
	videoSvc := NewVideoService(s.repo, s.queue)
	pipeline := s.newLocalPipeline()

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go LaunchWorker(ctx, &wg, s.queue, pipeline, "worker-0")

	job, err := videoSvc.Submit(s.ctx, 1, types.VideoRequest{Topic: "worker smoke", Duration: 15})
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		return s.reload(job.ID).Status == models.VideoJobStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()
}
