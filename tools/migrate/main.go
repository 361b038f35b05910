package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	"github.com/orgball2608/artfeed-bot/internal/migrations"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	"github.com/pressly/goose/v3"
)

// Migrations are Go files registered by the migrations package, so goose reads them from "."
// and only touches the filesystem to create new ones.
const migrationsDir = "."

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|status|reset|version|create <name>]")
	}

	command := os.Args[1]

	// The create command needs no database connection
	if command == "create" {
		if len(os.Args) < 3 {
			log.Fatal("Usage: migrate create <name>")
		}
		createMigration(os.Args[2])
		return
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set dialect: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch command {
	case "up":
		if err := migrations.Up(ctx, db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		fmt.Println("Migrations applied successfully")
	case "down":
		if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
			log.Fatalf("Failed to rollback migration: %v", err)
		}
		fmt.Println("Migration rollback successful")
	case "status":
		if err := goose.StatusContext(ctx, db, migrationsDir); err != nil {
			log.Fatalf("Failed to get migration status: %v", err)
		}
	case "version":
		if err := goose.VersionContext(ctx, db, migrationsDir); err != nil {
			log.Fatalf("Failed to get migration version: %v", err)
		}
	case "reset":
		if err := goose.ResetContext(ctx, db, migrationsDir); err != nil {
			log.Fatalf("Failed to reset migrations: %v", err)
		}
		fmt.Println("All migrations have been rolled back")
	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func createMigration(name string) {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("Failed to get working directory: %v", err)
	}

	dir := filepath.Join(wd, "internal", "migrations")
	fmt.Printf("Creating migration in: %s\n", dir)

	if err := goose.Create(nil, dir, name, "go"); err != nil {
		log.Fatalf("Failed to create migration: %v", err)
	}
}
