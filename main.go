package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/cache"
	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/jobs"
	"dental-clinic-server/internal/logger"
	"dental-clinic-server/internal/middleware"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/repository"
	"dental-clinic-server/internal/routes"
)

const serviceName = "dental-clinic-server"

func main() {
	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Dental clinic appointment API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load environment variables
			if err := godotenv.Load(); err != nil {
				fmt.Fprintln(os.Stderr, "no .env file loaded, using process environment")
			}
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger.Init(serviceName, cfg.Environment)

			db, err := models.InitDB(dbConfig(cfg))
			if err != nil {
				return err
			}
			closeDB(db)
			log.Info().Str("driver", cfg.Database.Driver).Msg("schema migrated")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a superuser, or reset the password of an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password (or ADMIN_PASSWORD) are required")
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger.Init(serviceName, cfg.Environment)

			db, err := models.InitDB(dbConfig(cfg))
			if err != nil {
				return err
			}
			defer closeDB(db)

			return createAdmin(cmd.Context(), repository.NewGormStore(db), username, email, password)
		},
	}
	cmd.Flags().String("username", "admin", "Superuser login name")
	cmd.Flags().String("email", "", "Superuser e-mail address")
	cmd.Flags().String("password", "", "Superuser password")
	return cmd
}

func createAdmin(ctx context.Context, users repository.UserRepository, username, email, password string) error {
	user := &models.User{
		Username:    username,
		Email:       email,
		IsSuperuser: true,
		IsStaff:     true,
		IsActive:    true,
	}
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	existing, err := users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if err := users.UpdateUserPassword(ctx, existing.ID, user.Password); err != nil {
			return err
		}
		log.Info().Str("user", username).Msg("password reset for existing user")
		return nil
	case apperrors.Is(err, apperrors.ErrorTypeNotFound):
		if err := users.CreateUser(ctx, user); err != nil {
			return err
		}
		log.Info().Str("user", username).Msg("superuser created")
		return nil
	default:
		return err
	}
}

func runServer() error {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(serviceName, cfg.Environment)

	// Initialize database connection
	db, err := models.InitDB(dbConfig(cfg))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB(db)

	provider := newCacheProvider(cfg)

	scheduler, err := jobs.StartScheduler(cfg.TokenCleanupSchedule, repository.NewGormStore(db))
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, db, cfg, provider)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// newCacheProvider connects to Redis when REDIS_ADDR is set and falls back
// to process memory otherwise or when Redis is unreachable.
func newCacheProvider(cfg *config.Config) cache.Provider {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("REDIS_ADDR not set, using in-memory cache")
		return cache.NewMemory()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := cache.NewRedis(ctx, cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
		return cache.NewMemory()
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	return client
}

func dbConfig(cfg *config.Config) models.DatabaseConfig {
	return models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
