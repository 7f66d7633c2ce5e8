package repos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/saymi-el/looply/internal/db/models"
	"github.com/saymi-el/looply/internal/types"
)

// VideoJobRepositoryTestSuite provides a base test suite for repository tests
type VideoJobRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	ctx  context.Context
	repo *VideoJobRepository
}

func (s *VideoJobRepositoryTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err, "Failed to create in-memory database")

	err = db.AutoMigrate(&models.VideoJob{}, &models.WorkItem{})
	require.NoError(s.T(), err, "Failed to run database migrations")

	s.db = db
	s.repo = NewVideoJobRepository(db)
	s.ctx = context.Background()
}

func (s *VideoJobRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func (s *VideoJobRepositoryTestSuite) createTestJob(ownerID uint) *models.VideoJob {
	job := &models.VideoJob{OwnerID: ownerID}
	err := job.SetRequest(types.VideoRequest{
		Topic:       "ai",
		Tone:        "educational",
		Duration:    15,
		VisualStyle: "cinematic",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Create(s.ctx, job))
	return job
}

func TestVideoJobRepository(t *testing.T) {
	suite.Run(t, new(VideoJobRepositoryTestSuite))
}
