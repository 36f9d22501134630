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

	"github.com/mapleleafu/santaflap/santaflap-backend/anticheat"
	"github.com/mapleleafu/santaflap/santaflap-backend/config"
	"github.com/mapleleafu/santaflap/santaflap-backend/handlers"
	"github.com/mapleleafu/santaflap/santaflap-backend/middleware"
	"github.com/mapleleafu/santaflap/santaflap-backend/repository"
)

func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		store, err := repository.ConnectToPostgreSQL(cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreMemory:
		log.Println("Using in-memory store; data is lost on restart")
		return repository.NewMemStore(), nil
	default:
		store, err := repository.ConnectMongoDB(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal("Error connecting to store:", err)
	}

	service := anticheat.NewService(store, cfg.Policy, anticheat.WithStoreTimeout(cfg.StoreTimeout))
	h := handlers.NewHandler(service, []byte(cfg.JWTSecret), cfg.TokenTTL, cfg.AdminPasswordHash)
	r := handlers.NewRouter(h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           middleware.CORS(cfg.CORSAllowedOrigin)(r),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server running on http://localhost%s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h.Close()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := store.Close(ctx); err != nil {
		log.Printf("Error closing store: %v", err)
	}
}
