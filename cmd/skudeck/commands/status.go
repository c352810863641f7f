package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/skudeck/internal/store"
	"github.com/wonny/skudeck/pkg/config"
	"github.com/wonny/skudeck/pkg/database"
	"github.com/wonny/skudeck/pkg/logger"
	"github.com/wonny/skudeck/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "의존 서비스 상태 확인",
	Long: `SKU 스토어, Postgres(감사 로그), Redis(캐시) 연결 상태를 확인합니다.

Example:
  go run ./cmd/skudeck status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	fmt.Println("=== SkuDeck Status ===")
	PrintSeparator()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// SKU store: a catalog fetch exercises the whole proxy path
	storeClient := store.New(cfg, log, nil)
	if skus, err := storeClient.ListSkus(ctx); err != nil {
		PrintError(fmt.Sprintf("SKU store   %s (%v)", cfg.Store.BaseURL, err))
	} else {
		PrintSuccess(fmt.Sprintf("SKU store   %s (%d SKUs)", cfg.Store.BaseURL, len(skus)))
	}

	// Postgres audit trail (optional)
	if cfg.AuditEnabled() {
		if db, err := database.New(cfg); err != nil {
			PrintError(fmt.Sprintf("Postgres    %v", err))
		} else {
			defer db.Close()
			if err := db.Ping(ctx); err != nil {
				PrintError(fmt.Sprintf("Postgres    ping failed: %v", err))
			} else {
				PrintSuccess("Postgres    audit trail reachable")
			}
		}
	} else {
		PrintWarning("Postgres    audit trail disabled (DATABASE_URL not set)")
	}

	// Redis snapshot cache (optional)
	if cfg.Redis.Enabled {
		if rc, err := redis.New(cfg); err != nil {
			PrintError(fmt.Sprintf("Redis       %v", err))
		} else {
			defer rc.Close()
			PrintSuccess("Redis       snapshot cache reachable")
		}
	} else {
		PrintWarning("Redis       snapshot cache disabled")
	}

	PrintSeparator()
	return nil
}
