package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"familytree/internal/config"
	"familytree/internal/database"
	httpapi "familytree/internal/http"
	"familytree/internal/logger"
	"familytree/internal/repository"
	"familytree/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "familytree-server")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var repo repository.FamiliesRepository
	if cfg.DBEnabled {
		var db *sql.DB
		db, err = database.Connect(&cfg.Database, log)
		if err != nil {
			// bounded startup retry exhausted: fatal
			log.Fatal("Store unavailable", zap.Error(err))
		}
		defer database.Close(db)
		repo = repository.NewPostgresFamiliesRepository(db)
	} else {
		mem := repository.NewMemoryFamiliesRepository()
		mem.SeedDemo()
		repo = mem
		log.Info("DB disabled, serving seeded in-memory data")
	}

	resolver := service.NewResolver(repo, log)

	router := httpapi.NewRouter(log)
	router.RegisterFamilyRoutes(httpapi.NewFamilyHandler(resolver, log))
	router.RegisterHealthRoutes()
	router.RegisterStaticFallback(cfg.HTTP.StaticDir)

	srv := service.NewServer(cfg.HTTP.Addr, httpapi.RequestLogging(log, router), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Signal received, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Shutdown failed", zap.Error(err))
	}
}
