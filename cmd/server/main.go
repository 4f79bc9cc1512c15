package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"investopaper/internal/ai"
	"investopaper/internal/config"
	"investopaper/internal/database"
	"investopaper/internal/journal"
	"investopaper/internal/logger"
	"investopaper/internal/market"
	"investopaper/internal/news"
	"investopaper/internal/paper"
	"investopaper/internal/plan"
	"investopaper/internal/server"
)

func main() {
	// Load .env before viper reads the environment. Missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// An empty DSN keeps everything in memory; a DSN switches every store
	// to the database.
	var (
		paperStore   paper.Store
		journalStore journal.Store
		newsStore    news.Store
	)
	if cfg.Database.DSN == "" {
		log.Info("No database DSN configured, using in-memory stores")
		paperStore = paper.NewMemoryStore()
		journalStore = journal.NewMemoryStore()
		newsStore = news.NewMemoryStore()
	} else {
		db, err := database.NewDatabase(cfg.Database.DSN)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		log.Info("Database connection successful and schema migrated.")
		paperStore = paper.NewGormStore(db)
		journalStore = journal.NewGormStore(db)
		newsStore = news.NewGormStore(db)
	}

	marketSvc := market.NewService(market.NewProvider(&cfg.Market, log), log)
	journalSvc := journal.NewService(journalStore, log)
	newsSvc := news.NewService(newsStore, log)

	svcs := server.Services{
		Paper:   paper.NewService(paperStore, log),
		Market:  marketSvc,
		Plan:    plan.NewService(marketSvc, journalSvc, log),
		Journal: journalSvc,
		News:    newsSvc,
		AI:      ai.NewClient(&cfg.AI, log),
		Config:  &cfg,
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	ingestInterval := time.Duration(cfg.News.IngestInterval) * time.Minute
	go news.NewJob(newsSvc, cfg.News.RSSURLs, ingestInterval, log).Run(ctx)

	srv := server.New(cfg.Server.Port, svcs, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("HTTP server stopped unexpectedly", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down HTTP server cleanly", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
