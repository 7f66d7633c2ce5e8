// Command looply runs the video generation API server and its workers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	gormlogger "gorm.io/gorm/logger"

	"github.com/saymi-el/looply/internal/app"
	"github.com/saymi-el/looply/internal/assembly"
	"github.com/saymi-el/looply/internal/config"
	"github.com/saymi-el/looply/internal/db"
	"github.com/saymi-el/looply/internal/db/repos"
	"github.com/saymi-el/looply/internal/events"
	"github.com/saymi-el/looply/internal/logger"
	"github.com/saymi-el/looply/internal/queue"
	"github.com/saymi-el/looply/internal/render"
	"github.com/saymi-el/looply/internal/script"
	"github.com/saymi-el/looply/internal/services"
	"github.com/saymi-el/looply/internal/speech"
	"github.com/saymi-el/looply/internal/storage"
	"github.com/saymi-el/looply/internal/visuals"
)

func main() {
	if err := run(); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()
	logger.Initialize()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	database, err := db.New(db.Options{
		Host:     cfg.DB.Host,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.Name,
		Port:     cfg.DB.Port,
		SSLMode:  cfg.DB.SSLMode,
		LogLevel: gormlogger.Warn,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	jobRepo := repos.NewVideoJobRepository(database)

	var jobQueue queue.Queue
	switch cfg.QueueBackend {
	case config.QueueBackendPostgres:
		jobQueue = queue.NewGormQueue(database, queue.GormQueueOptions{})
	default:
		memQueue := queue.NewMemoryQueue(queue.MemoryQueueOptions{})
		defer memQueue.Close()
		jobQueue = memQueue
	}

	pipeline, err := buildPipeline(cfg, jobRepo)
	if err != nil {
		return err
	}

	videoService := services.NewVideoService(jobRepo, jobQueue)
	webhookService := services.NewWebhookService(jobRepo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events.Start(ctx)
	events.Subscribe(events.EventJobFailed, func(_ context.Context, e events.Event) error {
		logger.WarnWithFields("Job failed", map[string]interface{}{
			"job_id": e.JobID,
			"error":  e.Error,
		})
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go services.LaunchWorker(ctx, &wg, jobQueue, pipeline, fmt.Sprintf("worker-%d", i))
	}

	if cfg.RenderEnabled() {
		sweeper := services.NewSweeper(jobRepo, cfg.SweepInterval, cfg.StuckJobAfter)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweeper.Run(ctx)
		}()
	}

	server := app.New(app.Options{
		VideoService:   videoService,
		WebhookService: webhookService,
		JWTSecret:      cfg.JWTSecret,
		WebhookSecret:  cfg.Render.WebhookSecret,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on :%d", cfg.Port)
		errCh <- server.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}

	wg.Wait()
	logger.Info("Server stopped")
	return nil
}

// buildPipeline selects real capability providers where credentials are
// configured and stubs elsewhere, so the service degrades instead of failing
// to boot.
func buildPipeline(cfg *config.Config, jobRepo *repos.VideoJobRepository) (*services.Pipeline, error) {
	var scriptGen script.Generator
	if cfg.Providers.GroqAPIKey != "" {
		groqGen, err := script.NewGroqGenerator(cfg.Providers.GroqAPIKey, cfg.Providers.GroqModel)
		if err != nil {
			return nil, fmt.Errorf("create script generator: %w", err)
		}
		scriptGen = groqGen
	} else {
		logger.Warn("GROQ_API_KEY is not set, using the static script generator")
		scriptGen = script.NewStaticGenerator()
	}

	var synth speech.Synthesizer
	if cfg.Providers.ElevenLabsAPIKey != "" {
		synth = speech.NewElevenLabsClient(cfg.Providers.ElevenLabsAPIKey, cfg.Providers.ElevenLabsVoiceID)
	} else {
		logger.Warn("ELEVENLABS_API_KEY is not set, using the stub synthesizer")
		synth = speech.NewStubSynthesizer()
	}

	var clips visuals.Generator
	if cfg.Providers.WANEndpoint != "" {
		clips = visuals.NewWANClient(cfg.Providers.WANEndpoint, cfg.Providers.WANAPIKey)
	} else {
		logger.Warn("WAN_ENDPOINT is not set, using the stub clip generator")
		clips = visuals.NewStubGenerator()
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	var assembler assembly.Assembler
	if cfg.Providers.ShotstackAPIKey != "" {
		assembler = assembly.NewShotstackAssembler(cfg.Providers.ShotstackEndpoint, cfg.Providers.ShotstackAPIKey)
	} else {
		logger.Warn("SHOTSTACK_API_KEY is not set, using the stub assembler")
		assembler = assembly.NewStubAssembler(store)
	}

	var delegate *render.Client
	if cfg.RenderEnabled() {
		delegate = render.NewClient(cfg.Render.APIURL, cfg.Render.APIKey, cfg.Render.Timeout)
		logger.Infof("Render delegate enabled at %s", cfg.Render.APIURL)
	}

	return services.NewPipeline(
		jobRepo,
		scriptGen,
		synth,
		clips,
		assembler,
		delegate,
		cfg.WebhookCallbackURL(),
	), nil
}

func buildStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.GCSBucket != "" {
		gcs, err := storage.NewGCSStorage(context.Background(), cfg.Storage.GCSBucket, "videos")
		if err != nil {
			return nil, fmt.Errorf("create GCS storage: %w", err)
		}
		return gcs, nil
	}

	local := storage.NewLocalStorage(cfg.Storage.OutputDir)
	if err := local.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("prepare output directory: %w", err)
	}
	return local, nil
}
