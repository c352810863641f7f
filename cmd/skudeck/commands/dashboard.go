package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/skudeck/internal/analytics"
	"github.com/wonny/skudeck/internal/store"
	"github.com/wonny/skudeck/pkg/config"
	"github.com/wonny/skudeck/pkg/logger"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "대시보드 지표 출력",
	Long: `SKU 스토어에서 카탈로그를 가져와 경영 지표를 터미널에 출력합니다.

표시 정보:
- KPI (SKU 수, Launch Now, 월 매출, 평균 GM%)
- 추천 등급 분포
- 시장 x 채널 피벗

Example:
  go run ./cmd/skudeck dashboard`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)
	storeClient := store.New(cfg, log, nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout)
	defer cancel()

	skus, err := storeClient.ListSkus(ctx)
	if err != nil {
		return fmt.Errorf("fetch skus: %w", err)
	}

	bundle, err := analytics.Compute(skus)
	if errors.Is(err, analytics.ErrNoData) {
		PrintWarning("카탈로그가 비어 있습니다. 먼저 스프레드시트를 임포트하세요.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}

	PrintDoubleSeparator()
	fmt.Println("  SkuDeck Dashboard")
	fmt.Printf("  %s\n", time.Now().Format("2006-01-02 15:04:05"))
	PrintSeparator()

	PrintKeyValue("Total SKUs", FormatCount(bundle.TotalSkus), 22)
	PrintKeyValue("Launch Now", FormatCount(bundle.LaunchNow), 22)
	PrintKeyValue("Phase Later", FormatCount(bundle.PhaseLater), 22)
	PrintKeyValue("Do Not Launch", FormatCount(bundle.DoNotLaunch), 22)
	PrintKeyValue("Unknown", FormatCount(bundle.Unknown), 22)
	PrintKeyValue("Monthly Revenue (act)", FormatMoney(bundle.TotalMonthlyRevenue), 22)
	PrintKeyValue("GM Dollars (act)", FormatMoney(bundle.TotalGmDollars), 22)
	PrintKeyValue("Avg GM % (act)", FormatPct(bundle.AvgGmPct), 22)
	PrintSeparator()

	// Recommendation split
	fmt.Println("\nRecommendation Split")
	for _, entry := range bundle.RecommendationSplit {
		PrintKeyValue(entry.Name, FormatCount(entry.Value), 16)
	}

	// Market x channel pivot
	if len(bundle.MarketChannel) > 0 {
		fmt.Println("\nActive SKUs by Market and Channel")

		columns := []string{"Market"}
		widths := []int{16}
		for _, channel := range bundle.Channels {
			columns = append(columns, channel)
			widths = append(widths, maxInt(len(channel), 6))
		}

		PrintTableHeader(columns, widths)
		for _, row := range bundle.MarketChannel {
			values := []string{row.Market}
			for _, channel := range bundle.Channels {
				values = append(values, FormatCount(row.Channels[channel]))
			}
			PrintTableRow(values, widths)
		}
	}

	PrintDoubleSeparator()
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
