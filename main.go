package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/video-catalog-backend/api"
	"github.com/rpupo63/video-catalog-backend/config"
	"github.com/rpupo63/video-catalog-backend/database"
	"github.com/rpupo63/video-catalog-backend/models"
	"github.com/rpupo63/video-catalog-backend/services/identity"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)
	log.Info().Str("dbType", cfg.DBType).Msg("Initializing app...")

	var currentDB database.Database
	switch cfg.DBType {
	case "memory":
		log.Warn().Msg("Using the in-memory store; entries are lost on restart")
		currentDB = database.NewInMemory()
	default:
		db, err := database.Open(cfg, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}

		// If generating models, run generation and exit
		if cfg.GenerateModels {
			log.Info().Msg("Generating models and query helpers...")
			if err := models.GenerateModels(db, "./query"); err != nil {
				log.Fatal().Err(err).Msg("Error generating models")
			}
			return
		}

		// If generating column mismatch report, run report and exit
		if cfg.GenerateColumnReport {
			log.Info().Msg("Generating column mismatch report...")
			mismatches, err := models.GenerateColumnMismatchReport(db, os.Stdout)
			if err != nil {
				log.Fatal().Err(err).Msg("Error generating column report")
			}
			if mismatches > 0 {
				os.Exit(2)
			}
			return
		}

		currentDB = database.New(db)
	}

	resolverCtx, stopResolver := context.WithCancel(context.Background())
	defer stopResolver()

	resolver, closeResolver, err := identity.NewResolver(resolverCtx, cfg.Identity, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing token verification")
	}
	defer closeResolver()

	if cfg.AdminEmail == "" {
		log.Warn().Msg("ADMIN_EMAIL is not set; every write will be refused")
	}

	errChannel := make(chan error, 2)

	server, err := api.NewServer(cfg, currentDB, resolver, identity.NewOAuthExchanger(cfg.Identity))
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
