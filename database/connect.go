package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rpupo63/video-catalog-backend/config"
	"github.com/rpupo63/video-catalog-backend/models"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// Open connects to the configured postgres database, registers the optional
// read replica and migrates the schema when enabled.
func Open(cfg *config.Config, zl zerolog.Logger) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  cfg.IsDevelopment(),
		},
	)

	zl.Info().Str("dbType", cfg.DBType).Msg("Connecting to database...")
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: cfg.DBType == "supa",
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	if cfg.DatabaseReadURL != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(cfg.DatabaseReadURL)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
		zl.Info().Msg("Read replica registered")
	}

	if cfg.AutoMigrate {
		if err := models.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate schema: %w", err)
		}
	}

	return db, nil
}
