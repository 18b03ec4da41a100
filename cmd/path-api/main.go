package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/eliaswendt/mcfp-optimizer/internal/config"
	"github.com/eliaswendt/mcfp-optimizer/internal/handlers"
	"github.com/eliaswendt/mcfp-optimizer/internal/repository"
)

func main() {
	// Load base .env first, then .env.local (which overrides for local development)
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg := config.Load()

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer closeRepo()

	pathHandler := handlers.NewPathHandler(repo)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", pathHandler.GetHealth)
	r.Get("/api/groups/{groupId}/path", pathHandler.GetGroupPath)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Path API listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// openRepository prefers Postgres when DATABASE_URL is set, SQLite otherwise
func openRepository(cfg *config.Config) (handlers.GroupPathRepository, func(), error) {
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to Postgres path store")
		pg, err := repository.NewPostgresGroupRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}

	log.Printf("Connecting to SQLite database: %s", cfg.DatabasePath)
	sqliteDB, err := repository.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := sqliteDB.Close(); err != nil {
			log.Printf("Warning: failed to close database: %v", err)
		}
	}
	return repository.NewSQLiteGroupRepository(sqliteDB.GetDB()), closeFn, nil
}
