package main

import (
	"log"
	"os"

	"discord-invite-tracker/internal/bot"
	"discord-invite-tracker/internal/config"
	"discord-invite-tracker/internal/database"
	"discord-invite-tracker/internal/invites"
	"discord-invite-tracker/internal/logger"
	"discord-invite-tracker/internal/redis"
	"discord-invite-tracker/internal/storage"

	"go.uber.org/zap"
)

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = config.DefaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	cfg.Logging.ServiceName = "invite-tracker"
	zlog, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	manager, err := config.NewManager(path, zlog.Named("config"))
	if err != nil {
		log.Fatalf("Error loading style: %v", err)
	}

	// Redis is optional: it backs the name cache and mirrors the leaderboard.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.New(cfg.Redis)
		if err != nil {
			log.Fatalf("Error initializing Redis: %v", err)
		}
	}

	var (
		db    *database.Database
		store invites.Store
	)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err = database.NewDatabase(cfg.Postgres, zlog.Named("database"))
		if err != nil {
			log.Fatalf("Error initializing Database: %v", err)
		}
		store = db
		log.Println("✓ Invite data stored in Postgres")
	case config.StorageFile:
		fs, err := storage.NewFileStore(cfg.Storage.DataDir, zlog.Named("storage"))
		if err != nil {
			log.Fatalf("Error initializing file store: %v", err)
		}
		store = fs
		log.Printf("✓ Invite data stored in %s", cfg.Storage.DataDir)
	default:
		log.Fatalf("Unknown storage driver %q", cfg.Storage.Driver)
	}

	if rdb != nil {
		store = storage.NewMirrored(store, rdb, zlog.Named("mirror"))
	}

	b, err := bot.New(manager, store, db, rdb, zlog)
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	if err := b.Start(); err != nil {
		zlog.Error("bot stopped", zap.Error(err))
		log.Fatalf("Error starting bot: %v", err)
	}
}
