package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/saymi-el/looply/internal/assembly"
	"github.com/saymi-el/looply/internal/db/models"
	"github.com/saymi-el/looply/internal/db/repos"
	"github.com/saymi-el/looply/internal/queue"
	"github.com/saymi-el/looply/internal/render"
	"github.com/saymi-el/looply/internal/script"
	"github.com/saymi-el/looply/internal/speech"
	"github.com/saymi-el/looply/internal/storage"
	"github.com/saymi-el/looply/internal/types"
	"github.com/saymi-el/looply/internal/visuals"
)

// ServicesTestSuite provides a base test suite with an in-memory database
// and stub capability providers.
type ServicesTestSuite struct {
	suite.Suite
	db    *gorm.DB
	ctx   context.Context
	repo  *repos.VideoJobRepository
	queue *queue.MemoryQueue
}

func (s *ServicesTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(s.T(), err, "Failed to create in-memory database")

	err = db.AutoMigrate(&models.VideoJob{}, &models.WorkItem{})
	require.NoError(s.T(), err, "Failed to run database migrations")

	s.db = db
	s.repo = repos.NewVideoJobRepository(db)
	s.queue = queue.NewMemoryQueue(queue.MemoryQueueOptions{})
	s.ctx = context.Background()
}

func (s *ServicesTestSuite) TearDownTest() {
	s.queue.Close()
	sqlDB, err := s.db.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

// newLocalPipeline builds a pipeline with stub providers and no delegate.
func (s *ServicesTestSuite) newLocalPipeline() *Pipeline {
	return NewPipeline(
		s.repo,
		script.NewStaticGenerator(),
		speech.NewStubSynthesizer(),
		visuals.NewStubGenerator(),
		assembly.NewStubAssembler(storage.NewLocalStorage(s.T().TempDir())),
		nil,
		"",
	)
}

// newDelegatePipeline builds a pipeline that hands off to the given client.
// Local visual providers are failing spies so any local stage run is caught.
func (s *ServicesTestSuite) newDelegatePipeline(delegate *render.Client, synth speech.Synthesizer) *Pipeline {
	if synth == nil {
		synth = &failSynth{}
	}
	return NewPipeline(
		s.repo,
		script.NewStaticGenerator(),
		synth,
		visuals.NewStubGenerator(),
		assembly.NewStubAssembler(storage.NewLocalStorage(s.T().TempDir())),
		delegate,
		"https://api.example.com/api/v1/webhook/render",
	)
}

func (s *ServicesTestSuite) createJob(req types.VideoRequest) *models.VideoJob {
	job := &models.VideoJob{OwnerID: 1}
	s.Require().NoError(job.SetRequest(req))
	s.Require().NoError(s.repo.Create(s.ctx, job))
	return job
}

func (s *ServicesTestSuite) reload(id string) *models.VideoJob {
	job, err := s.repo.GetByID(s.ctx, id)
	s.Require().NoError(err)
	return job
}

// failGenerator fails the test if the script stage calls it.
type failGenerator struct{ t *testing.T }

func (g *failGenerator) Generate(context.Context, script.Input) (*types.GeneratedScript, error) {
	g.t.Fatal("script generator must not be called for literal-script requests")
	return nil, nil
}

// failSynth always errors, and records whether it ran.
type failSynth struct{ called bool }

func (f *failSynth) Synthesize(context.Context, string) ([]byte, error) {
	f.called = true
	return nil, errors.New("voice service unavailable")
}

func TestServices(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}
