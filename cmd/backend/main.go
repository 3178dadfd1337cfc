package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docdrop/internal/db"
	"docdrop/internal/server"
)

func main() {
	// Fail fast on malformed configuration.
	if errs := server.ValidateEnv(); len(errs) > 0 {
		log.Printf("service=backend msg=%q\n%s", "invalid_configuration", server.FormatValidationErrors(errs))
		os.Exit(1)
	}

	addr := getenvDefault("DD_ADDR", ":8080")
	baseURL := getenvDefault("DD_BASE_URL", "http://localhost:8080")

	build := server.BuildInfo{
		Version: getenvDefault("DD_VERSION", "dev"),
		Commit:  getenvDefault("DD_COMMIT", "unknown"),
	}

	sessionTTL := server.DefaultSessionTTL
	if raw := os.Getenv("DD_SESSION_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "bad_session_ttl", err)
			os.Exit(1)
		}
		sessionTTL = d
	}

	cfg := server.Config{
		Addr:       addr,
		BaseURL:    baseURL,
		Build:      build,
		SessionTTL: sessionTTL,
		Email:      server.NewEmailService(server.LoadEmailConfig()),
	}

	// Stores: Postgres when DATABASE_URL is set, in-memory otherwise.
	dsn := getenvDefault("DATABASE_URL", "")
	if dsn != "" {
		dbConn, err := server.OpenDB(dsn)
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "db_connect_failed", err)
			os.Exit(1)
		}
		defer func() { _ = dbConn.Close() }()

		log.Printf("service=backend msg=%q", "running_migrations")
		if err := db.RunMigrations(dbConn); err != nil {
			log.Printf("service=backend msg=%q err=%v", "migration_failed", err)
			os.Exit(1)
		}
		log.Printf("service=backend msg=%q", "migrations_complete")

		cfg.DB = dbConn
		cfg.Users = server.NewPostgresUserStore(dbConn)
		cfg.Files = server.NewPostgresFileStore(dbConn)
	} else {
		log.Printf("service=backend msg=%q", "no_database_url_using_memory_stores")
		cfg.Users = server.NewMemoryUserStore()
		cfg.Files = server.NewMemoryFileStore()
	}

	// Blob store: MinIO when configured, in-memory otherwise.
	if os.Getenv("DD_S3_ENDPOINT") != "" {
		blob, err := server.NewMinioBlobStore()
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "minio_init_failed", err)
			os.Exit(1)
		}
		cfg.Blob = blob
	} else {
		log.Printf("service=backend msg=%q", "no_s3_endpoint_using_memory_blob_store")
		cfg.Blob = server.NewMemoryBlobStore()
	}

	// Operators have no signup endpoint; one account is seeded from env.
	opsEmail := os.Getenv("DD_OPS_EMAIL")
	opsPassword := os.Getenv("DD_OPS_PASSWORD")
	if _, err := server.SeedOperator(context.Background(), cfg.Users, opsEmail, opsPassword); err != nil {
		log.Printf("service=backend msg=%q err=%v", "operator_seed_failed", err)
		os.Exit(1)
	}
	log.Printf("service=backend msg=%q email=%s", "operator_seeded", opsEmail)

	srv := server.New(cfg)

	// Start the HTTP server in a background goroutine.
	// This allows us to listen for OS signals while the server runs.
	errCh := make(chan error, 1)
	go func() {
		log.Printf("service=backend msg=%q addr=%s version=%s commit=%s",
			"starting", addr, build.Version, build.Commit)
		errCh <- srv.Start()
	}()

	// Graceful shutdown on SIGINT (Ctrl+C) or SIGTERM (container stop).
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("service=backend msg=%q signal=%s", "shutting_down", sig.String())
		// Give the server 5 seconds to finish in-flight requests.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("service=backend msg=%q err=%v", "shutdown_error", err)
			os.Exit(1)
		}
		log.Printf("service=backend msg=%q", "shutdown_complete")
	case err := <-errCh:
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "server_error", err)
			os.Exit(1)
		}
	}
}

// getenvDefault reads an environment variable and returns a default value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
