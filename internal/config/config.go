// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Queue backend names accepted by QUEUE_BACKEND.
const (
	QueueBackendMemory   = "memory"
	QueueBackendPostgres = "postgres"
)

// DB holds the database connection settings.
type DB struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Render holds the remote render delegate settings. The delegate is optional:
// it is enabled if and only if APIURL is set.
type Render struct {
	APIURL        string
	APIKey        string
	WebhookSecret string
	Timeout       time.Duration
}

// Providers holds credentials and endpoints for the capability providers.
// Any empty credential selects the corresponding stub provider.
type Providers struct {
	GroqAPIKey        string
	GroqModel         string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	WANEndpoint       string
	WANAPIKey         string
	ShotstackAPIKey   string
	ShotstackEndpoint string
}

// Storage holds artifact storage settings. GCSBucket selects the GCS backend;
// otherwise artifacts are written under OutputDir.
type Storage struct {
	GCSBucket string
	OutputDir string
}

// Config is the closed set of settings the service reads. Fields not listed
// here are deliberately ignored.
type Config struct {
	Port          int
	PublicBaseURL string
	JWTSecret     string
	WorkerCount   int
	QueueBackend  string
	StuckJobAfter time.Duration
	SweepInterval time.Duration

	DB        DB
	Render    Render
	Providers Providers
	Storage   Storage
}

// Load reads the configuration from environment variables, applying defaults
// for everything except JWT_SECRET.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnvInt("PORT", 8080),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		WorkerCount:   getEnvInt("WORKER_COUNT", 1),
		QueueBackend:  getEnv("QUEUE_BACKEND", QueueBackendMemory),
		StuckJobAfter: getEnvDuration("STUCK_JOB_AFTER", 30*time.Minute),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
		DB: DB{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "looply"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Render: Render{
			APIURL:        os.Getenv("RENDER_API_URL"),
			APIKey:        os.Getenv("RENDER_API_KEY"),
			WebhookSecret: os.Getenv("RENDER_WEBHOOK_SECRET"),
			Timeout:       getEnvDuration("RENDER_TIMEOUT", 30*time.Second),
		},
		Providers: Providers{
			GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
			GroqModel:         getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
			ElevenLabsVoiceID: getEnv("ELEVENLABS_VOICE_ID", "JBFqnCBsd6RMkjVDRZzb"),
			WANEndpoint:       os.Getenv("WAN_ENDPOINT"),
			WANAPIKey:         os.Getenv("WAN_API_KEY"),
			ShotstackAPIKey:   os.Getenv("SHOTSTACK_API_KEY"),
			ShotstackEndpoint: getEnv("SHOTSTACK_ENDPOINT", "https://api.shotstack.io/v1"),
		},
		Storage: Storage{
			GCSBucket: os.Getenv("GCS_BUCKET"),
			OutputDir: getEnv("OUTPUT_DIR", "./output"),
		},
	}

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if len(c.JWTSecret) < 8 {
		return fmt.Errorf("JWT_SECRET must be at least 8 characters")
	}
	if c.Port <= 0 {
		return fmt.Errorf("PORT must be positive")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	switch c.QueueBackend {
	case QueueBackendMemory, QueueBackendPostgres:
	default:
		return fmt.Errorf("unknown queue backend: %s", c.QueueBackend)
	}
	return nil
}

// RenderEnabled reports whether the remote render delegate is configured.
func (c *Config) RenderEnabled() bool {
	return c.Render.APIURL != ""
}

// WebhookCallbackURL returns the callback address handed to the render
// delegate on job submission.
func (c *Config) WebhookCallbackURL() string {
	return c.PublicBaseURL + "/api/v1/webhook/render"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
