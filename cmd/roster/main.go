package main

import (
	"context"
	"flag"
	"os"

	"hotel-shift-bot/internal/config"
	"hotel-shift-bot/internal/logging"
	"hotel-shift-bot/internal/repository"
	"hotel-shift-bot/internal/roster"
)

func main() {
	var file string
	flag.StringVar(&file, "file", "", "path to the .xlsx roster to import")
	flag.Parse()

	cfg := config.GetConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if file == "" {
		logger.Fatal("-file is required")
	}

	f, err := os.Open(file)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open roster")
	}
	defer f.Close()

	db, err := repository.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer repository.Close(db)

	repo, err := repository.NewGormShiftScheduleRepository(db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create shift repository")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OperationTimeout)
	defer cancel()

	res, err := roster.NewImporter(repo, logger).Import(ctx, f)
	if err != nil {
		logger.WithError(err).Fatal("Import failed")
	}
	logger.WithField("file", file).Infof("Created %d shifts, skipped %d", res.Created, res.Skipped)
}
