package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spcet/lostfound/internal/api"
	"github.com/spcet/lostfound/internal/assistant"
	"github.com/spcet/lostfound/internal/auth"
	"github.com/spcet/lostfound/internal/db"
	"github.com/spcet/lostfound/internal/model"
	"github.com/spcet/lostfound/internal/store"
)

// tokenSweepInterval is how often expired revoked tokens are removed.
const tokenSweepInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backend API server",
	Long: `Run the REST API. On first run the database is created together with a
super admin account whose generated password is printed once.`,
	RunE: runServe,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and the super admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfg.DB); err == nil {
			return fmt.Errorf("database file %s already exists", cfg.DB)
		}
		database, password, err := initDatabase(cfg.DB, cfg.AdminUser)
		if err != nil {
			return err
		}
		database.Close()
		printInitResult(cfg.DB, cfg.AdminUser, password)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{serveCmd, initCmd} {
		c.Flags().StringP("db", "d", "", "SQLite database path (default: lostfound.db)")
		c.Flags().StringP("user", "u", "", "super admin username on first run (default: admin)")
	}
	serveCmd.Flags().StringP("addr", "a", "", "listen address (default: :8080)")

	// Flags are bound just before the command runs so that serve and init
	// can share keys.
	serveCmd.PreRun = bindDBFlags
	initCmd.PreRun = bindDBFlags
}

func bindDBFlags(cmd *cobra.Command, args []string) {
	if f := cmd.Flags().Lookup("db"); f.Changed {
		cfg.DB = f.Value.String()
	}
	if f := cmd.Flags().Lookup("user"); f.Changed {
		cfg.AdminUser = f.Value.String()
	}
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		cfg.Addr = f.Value.String()
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.DB); os.IsNotExist(err) {
		database, password, err := initDatabase(cfg.DB, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(cfg.DB, cfg.AdminUser, password)
		fmt.Println()
	}

	// Schema creation is idempotent, so older databases gain new tables.
	database, err := db.OpenWithSchema(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	slog.Info("database ready", "path", cfg.DB)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	ai, err := assistant.New(cfg.AI.Provider, cfg.Assistant())
	if err != nil {
		return err
	}
	slog.Info("assistant ready", "provider", cfg.AI.Provider, "model", cfg.AI.Model)

	handler := api.NewRouter(api.Config{
		DB:        database,
		JWTSecret: jwtSecret,
		Assistant: ai,
		LoginRate: cfg.LoginRate,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepTokens(ctx, database)

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// sweepTokens drops revoked tokens whose expiry has passed.
func sweepTokens(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(tokenSweepInterval)
	defer ticker.Stop()

	for {
		n, err := store.PurgeExpiredTokens(ctx, database, time.Now())
		if err != nil && ctx.Err() == nil {
			slog.Error("failed to purge revoked tokens", "error", err)
		} else if n > 0 {
			slog.Info("purged revoked tokens", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// initDatabase creates a new database, ensures the schema, and creates the super admin.
func initDatabase(path, adminUsername string) (*sql.DB, string, error) {
	database, err := db.OpenWithSchema(path)
	if err != nil {
		os.Remove(path)
		return nil, "", err
	}

	fail := func(format string, err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf(format, err)
	}

	password, err := auth.RandomPassword()
	if err != nil {
		return fail("generating password: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail("hashing password: %w", err)
	}

	ctx := context.Background()
	if _, err := store.CreateAdmin(ctx, database, adminUsername, "Super Admin", hash, model.RoleSuperAdmin); err != nil {
		return fail("creating super admin: %w", err)
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Super admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password. It cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}
