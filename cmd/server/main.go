package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/theLastOfCats/mangadock/internal/api"
	"github.com/theLastOfCats/mangadock/internal/catalog"
	"github.com/theLastOfCats/mangadock/internal/config"
	"github.com/theLastOfCats/mangadock/internal/db"
	"github.com/theLastOfCats/mangadock/internal/events"
	"github.com/theLastOfCats/mangadock/internal/history"
	"github.com/theLastOfCats/mangadock/internal/kv"
	"github.com/theLastOfCats/mangadock/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize Tracing
	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Initialize Storage
	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s storage: %v", cfg.Storage, err)
	}
	defer closeStore()

	// Initialize Services
	hub := events.NewHub()
	hist := history.New(store)
	hist.Key = cfg.HistoryKey
	hist.Listener = hub

	endpoints, err := catalog.EndpointsFor(cfg.CatalogDialect)
	if err != nil {
		log.Fatalf("Invalid catalog dialect: %v", err)
	}
	client := catalog.New(
		cfg.CatalogBaseURL,
		cfg.CatalogMediaURL,
		&http.Client{Timeout: cfg.CatalogTimeout},
		endpoints,
	)

	// Router
	router, err := api.NewRouter(api.RouterConfig{
		Catalog: client,
		History: hist,
		Hub:     hub,
		Site:    os.DirFS(cfg.TemplatesDir),
	})
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: telemetry.Middleware(router),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s (storage: %s, catalog: %s)...", cfg.Port, cfg.Storage, cfg.CatalogBaseURL)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown error: %v", err)
	}
	log.Println("server stopped")
}

// openStore opens the history backend selected by cfg.Storage.
func openStore(cfg config.Config) (kv.Store, func(), error) {
	switch cfg.Storage {
	case config.StoragePebble:
		ps, err := kv.NewPebbleStore(cfg.PebbleDir)
		if err != nil {
			return nil, nil, err
		}
		return ps, func() {
			if err := ps.Close(); err != nil {
				log.Printf("pebble close error: %v", err)
			}
		}, nil
	case config.StorageMemory:
		log.Println("Using in-memory history; it is lost on restart")
		return kv.NewMemoryStore(), func() {}, nil
	default:
		database, err := db.New(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return database, func() {
			if err := database.Close(); err != nil {
				log.Printf("database close error: %v", err)
			}
		}, nil
	}
}
