package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/seo-optimizer/competitor-audit/api"
	"github.com/seo-optimizer/competitor-audit/audit"
	"github.com/seo-optimizer/competitor-audit/config"
	"github.com/seo-optimizer/competitor-audit/fetcher"
	"github.com/seo-optimizer/competitor-audit/logging"
	"github.com/seo-optimizer/competitor-audit/middleware"
	"github.com/seo-optimizer/competitor-audit/providers"
	"github.com/seo-optimizer/competitor-audit/stats"
)

// Maintenance schedules, standard five-field cron syntax
const (
	statsCleanupSchedule   = "0 3 * * *"    // daily at 03:00
	statsSaveSchedule      = "*/15 * * * *" // every 15 minutes
	rateLimitPruneSchedule = "*/10 * * * *"
)

func setupRouter(cfg config.Config, handler *api.Handler, requestStats *logging.Statistics, limiter *middleware.RateLimiter) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS(cfg.CORSAllowOrigins))
	r.Use(limiter.RateLimit())
	r.Use(middleware.Stats(requestStats, api.ComparePath))

	handler.Register(r)
	return r
}

// scheduleMaintenance registers the periodic housekeeping jobs on c
func scheduleMaintenance(c *cron.Cron, cfg config.Config, storage *stats.Storage, requestStats *logging.Statistics, limiter *middleware.RateLimiter) error {
	jobs := []struct {
		spec string
		fn   func()
	}{
		{statsCleanupSchedule, func() { storage.Cleanup(cfg.StatsRetainMonths) }},
		{statsSaveSchedule, func() {
			if err := requestStats.Save(); err != nil {
				log.Printf("Failed to save request statistics: %v", err)
			}
		}},
		{rateLimitPruneSchedule, func() {
			if n := limiter.Prune(); n > 0 {
				log.Printf("Pruned %d idle rate limit buckets", n)
			}
		}},
	}

	for _, job := range jobs {
		if _, err := c.AddFunc(job.spec, job.fn); err != nil {
			return fmt.Errorf("schedule %q: %w", job.spec, err)
		}
	}
	return nil
}

func run() error {
	config.LoadEnv()
	cfg := config.Load()

	storage, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize stats storage: %w", err)
	}
	defer func() {
		if err := storage.Shutdown(); err != nil {
			log.Printf("Failed to flush stats storage: %v", err)
		}
	}()

	requestStats := logging.New(cfg.StatsFile, cfg.DevMode)
	defer func() {
		if err := requestStats.Save(); err != nil {
			log.Printf("Failed to save request statistics: %v", err)
		}
	}()

	pages := fetcher.New(fetcher.Options{
		Timeout:      cfg.FetchTimeout,
		CacheTTL:     cfg.PageCacheTTL,
		MaxCacheSize: cfg.PageCacheSize,
		Stats:        storage,
	})
	defer pages.Close()

	simulated := providers.Simulated{}
	service := audit.NewService(pages, simulated, simulated, audit.Options{
		CollaboratorTimeout: cfg.CollaboratorTimeout,
		AuditTimeout:        cfg.AuditTimeout,
		Stats:               storage,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := setupRouter(cfg, api.NewHandler(service, requestStats), requestStats, limiter)

	scheduler := cron.New()
	if err := scheduleMaintenance(scheduler, cfg, storage, requestStats, limiter); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.AuditTimeout + 10*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on http://localhost:%s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
