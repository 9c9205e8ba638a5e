package main

import (
	"fmt"
	"log"
	"os"

	"github.com/IstiN/dmtools-sub007/internal/api"
	"github.com/IstiN/dmtools-sub007/internal/collector"
	"github.com/IstiN/dmtools-sub007/internal/config"
	"github.com/IstiN/dmtools-sub007/internal/report"
	"github.com/IstiN/dmtools-sub007/internal/storage"
	"github.com/IstiN/dmtools-sub007/internal/storage/postgres"
	"github.com/IstiN/dmtools-sub007/internal/storage/sqlite"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize storage
	var store storage.Storage
	switch cfg.StorageType {
	case "postgres":
		store, err = postgres.NewPostgresStorage(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL storage: %v", err)
		}
	default:
		store, err = sqlite.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite storage: %v", err)
		}
	}
	defer store.Close()

	// Initialize generator
	registry := collector.NewRegistry(cfg.GitHubToken)
	generator := report.NewGenerator(registry,
		report.WithStorage(store),
		report.WithOutputDir(cfg.OutputDir),
	)

	// Initialize handler
	handler := api.NewHandler(generator, store)

	// Setup routes
	router := api.SetupRoutes(handler)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	fmt.Printf("Starting API server on %s\n", addr)
	fmt.Printf("Storage type: %s\n", cfg.StorageType)

	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
