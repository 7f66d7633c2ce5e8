// Command migrate applies the database schema and exits.
package main

import (
	"fmt"

	"github.com/joho/godotenv"
	gormlogger "gorm.io/gorm/logger"

	"github.com/saymi-el/looply/internal/config"
	"github.com/saymi-el/looply/internal/db"
	"github.com/saymi-el/looply/internal/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Initialize()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.New(db.Options{
		Host:     cfg.DB.Host,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.Name,
		Port:     cfg.DB.Port,
		SSLMode:  cfg.DB.SSLMode,
		LogLevel: gormlogger.Info,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(database); err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}

	logger.Info(fmt.Sprintf("Schema migrated on %s:%d/%s", cfg.DB.Host, cfg.DB.Port, cfg.DB.Name))
}
