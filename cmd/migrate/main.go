package main

import (
	"fmt"
	"os"

	"photo-inventory/internal/config"
	"photo-inventory/internal/database"
	"photo-inventory/internal/logger"
	"photo-inventory/migrations"

	"go.uber.org/zap"
)

const usage = "usage: migrate [up|down|status]"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Printf("error running migrate application: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		log = logger.NewWithDefaults()
		log.Warn("Falling back to default logger", zap.Error(err))
	}
	defer log.Sync()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer dbService.Close()
	db := dbService.DB()

	log.Info("Running migration command", zap.String("command", command))

	switch command {
	case "up":
		return database.RunMigrations(db, migrations.FS, ".", log)
	case "down":
		if err := database.RollbackMigration(db, migrations.FS, "."); err != nil {
			return err
		}
		log.Info("Rolled back latest migration")
		return nil
	case "status":
		return database.GetMigrationStatus(db, migrations.FS, ".")
	default:
		return fmt.Errorf("unknown command %q, %s", command, usage)
	}
}
