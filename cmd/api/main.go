// @title PetVerse dev API
// @version 1.0
// @description Backend local que emula la API REST consumida por el cliente PetVerse.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"petverse/internal/adapters/auth/google"
	"petverse/internal/adapters/auth/jwtauth"
	pg "petverse/internal/adapters/storage/postgres"
	"petverse/internal/platform/logger"
	"petverse/internal/platform/metrics"
	"petverse/internal/ports/auth"
	"petverse/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	addr := ":8000"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// solo para desarrollo local; los tokens no sobreviven a otra instancia con otro secreto
		secret = "petverse-dev-secret"
		log.Warn("JWT_SECRET not set, using development secret", nil)
	}
	tokens, err := jwtauth.New(jwtauth.Config{Secret: secret})
	if err != nil {
		log.Error("jwt setup failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	var identity auth.IdentityVerifier
	if ids := os.Getenv("GOOGLE_CLIENT_IDS"); ids != "" {
		identity = google.NewVerifier(google.NewClient(google.Config{
			ClientIDs: strings.Split(ids, ","),
		}))
	}

	// Si hay DB_DSN usamos Postgres; si falla la conexión seguimos in-memory
	var db *sql.DB
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		db = openDB(log, dsn)
	}
	if db != nil {
		defer db.Close()
	}

	mediaDir := os.Getenv("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "media"
	}

	r := router.NewRouter(router.Options{
		Tokens:   tokens,
		Identity: identity,
		DB:       db,
		MediaDir: mediaDir,
		Logger:   log,
		Metrics:  metrics.NewServerMetrics(),
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting server", map[string]any{
			"addr":    addr,
			"storage": storageName(db),
			"google":  identity != nil,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", map[string]any{"error": err.Error()})
	}
	log.Info("server stopped", nil)
}

func openDB(log logger.Logger, dsn string) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := pg.Open(ctx, dsn)
	if err != nil {
		log.Warn("postgres unavailable, using in-memory storage", map[string]any{"error": err.Error()})
		return nil
	}
	if err := pg.Migrate(ctx, db); err != nil {
		log.Warn("postgres migration failed, using in-memory storage", map[string]any{"error": err.Error()})
		_ = db.Close()
		return nil
	}
	return db
}

func storageName(db *sql.DB) string {
	if db != nil {
		return "postgres"
	}
	return "memory"
}
