package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/skudeck/internal/api"
	"github.com/wonny/skudeck/internal/api/handlers"
	"github.com/wonny/skudeck/internal/audit"
	"github.com/wonny/skudeck/internal/importer"
	"github.com/wonny/skudeck/internal/portfolio"
	"github.com/wonny/skudeck/internal/realtime"
	"github.com/wonny/skudeck/internal/scheduler"
	"github.com/wonny/skudeck/internal/scheduler/jobs"
	"github.com/wonny/skudeck/internal/store"
	"github.com/wonny/skudeck/pkg/config"
	"github.com/wonny/skudeck/pkg/database"
	"github.com/wonny/skudeck/pkg/logger"
	"github.com/wonny/skudeck/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "BFF API 서버 시작",
	Long: `대시보드용 BFF API 서버를 시작합니다.

이 명령어는:
- 원격 SKU 스토어 프록시 및 집계 엔드포인트 제공
- 임포트 위저드 세션 제공
- WebSocket으로 지표 푸시

Endpoints:
  GET  /health                    - Health check
  GET  /api/dashboard/metrics     - 집계 지표 번들
  GET  /api/portfolio             - 필터링된 카탈로그
  POST /api/import/sessions       - 임포트 세션 시작
  GET  /api/ws                    - 지표 푸시 (WebSocket)

Example:
  go run ./cmd/skudeck api
  go run ./cmd/skudeck api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: config)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== SkuDeck API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port":  cfg.Port,
		"env":   cfg.Env,
		"store": cfg.Store.BaseURL,
	}).Info("Initializing API server")

	// 3. Redis snapshot cache (optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	var cache *redis.Cache
	if redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "skudeck")
		log.Info("Redis snapshot cache enabled")
	}

	// 4. Store client
	storeClient := store.New(cfg, log, cache)

	// 5. Audit repository (optional, requires DATABASE_URL)
	var auditRepo *audit.Repository
	var snapshots handlers.SnapshotSource
	var importAuditor handlers.ImportAuditor
	if cfg.AuditEnabled() {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		auditRepo = audit.NewRepository(db.Pool)
		snapshots = auditRepo
		importAuditor = auditRepo
		log.Info("Audit trail enabled")
	}

	// 6. Realtime hub
	hub := realtime.NewHub(log)
	defer hub.Close()

	// 7. Import sessions and selection
	sessions := importer.NewSessions(storeClient, log, 30*time.Minute)
	selection := portfolio.NewSelection()

	// 8. Scheduler (optional)
	refreshJob := jobs.NewRefreshJob(storeClient, hub, auditRepo, log, cfg.Scheduler.RefreshSpec)
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(log)
		if err := sched.AddJob(refreshJob); err != nil {
			return fmt.Errorf("schedule refresh job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 9. Handlers: a successful import triggers an immediate refresh
	onImported := func(stats importer.ImportStats) {
		go func() {
			if err := refreshJob.Run(context.Background()); err != nil {
				log.WithError(err).Warn("Post-import refresh failed")
			}
		}()
	}

	router := api.NewRouter(api.Handlers{
		Dashboard: handlers.NewDashboardHandler(storeClient, snapshots, log),
		Portfolio: handlers.NewPortfolioHandler(storeClient, selection, log),
		Sku:       handlers.NewSkuHandler(storeClient, selection, log),
		Config:    handlers.NewConfigHandler(storeClient, log),
		Import:    handlers.NewImportHandler(sessions, importAuditor, log, onImported),
		Hub:       hub,
	}, log)

	// 10. Create server
	server := api.New(cfg, log, router)

	// 11. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/dashboard/metrics")
	fmt.Println("  GET  /api/portfolio")
	fmt.Println("  POST /api/import/sessions")
	fmt.Println("  GET  /api/ws")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
