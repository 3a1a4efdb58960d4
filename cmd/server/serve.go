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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wso2/psd2-consent-mgt/internal/system/cache"
	"github.com/wso2/psd2-consent-mgt/internal/system/config"
	"github.com/wso2/psd2-consent-mgt/internal/system/database"
	"github.com/wso2/psd2-consent-mgt/internal/system/database/provider"
	"github.com/wso2/psd2-consent-mgt/internal/system/log"
	"github.com/wso2/psd2-consent-mgt/internal/system/metrics"
	"github.com/wso2/psd2-consent-mgt/internal/system/middleware"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the consent management API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}
			configPath, _ := cmd.Flags().GetString("config")
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, configPath)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env",
		"dotenv file with CONSENT_MGT_* overrides, loaded when present")
	return cmd
}

// loadEnvFile exports the variables of path so viper picks them up as overrides.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func runServer(ctx context.Context, configPath string) error {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Server"))
	logger.Info("Starting consent management server",
		log.String("version", version),
		log.String("build_date", buildDate))

	db, err := database.Initialize(&cfg.Database.Consent)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	provider.InitDBProvider(db, cfg.Database.Consent.Type)
	defer func() {
		if err := provider.GetDBProviderCloser().Close(); err != nil {
			logger.Error("Failed to close database", log.Error(err))
		}
	}()

	dbClient, err := provider.GetDBProvider().GetConsentDBClient()
	if err != nil {
		return err
	}

	cacheClient, err := cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer cacheClient.Close()

	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.CorrelationIDMiddleware(), middleware.RequestLogger())
	if cfg.Metrics.Enabled {
		router.Use(middleware.RequestMetrics())
	}
	if cfg.CORS.Enabled {
		router.Use(middleware.CORSMiddleware(cfg.CORS))
	}
	router.GET("/health", healthHandler(db))

	api := router.Group("/api/v1")
	if cfg.Security.IsBasicAuthEnabled() {
		api.Use(middleware.BasicAuthMiddleware(cfg.Security.Accounts()))
	}
	registerServices(api, dbClient, cacheClient, cfg)

	servers := []*http.Server{{
		Addr:              cfg.Server.GetServerAddress(),
		Handler:           router,
		ReadTimeout:       orDefault(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout:      orDefault(cfg.Server.WriteTimeout, 15*time.Second),
		IdleTimeout:       orDefault(cfg.Server.IdleTimeout, 60*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}}
	if cfg.Metrics.Enabled && cfg.Metrics.Port > 0 {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler(registry))
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	} else if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler(registry)))
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, server := range servers {
		group.Go(func() error {
			logger.Info("HTTP server listening", log.String("address", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s failed: %w", server.Addr, err)
			}
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("Server exited gracefully")
	return nil
}

func healthHandler(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
