package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/skudeck/internal/catalog"
	"github.com/wonny/skudeck/internal/portfolio"
	"github.com/wonny/skudeck/internal/store"
	"github.com/wonny/skudeck/pkg/config"
	"github.com/wonny/skudeck/pkg/logger"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "SKU xlsx 내보내기",
	Long: `선택한 SKU를 xlsx 파일로 내보냅니다.

--id 를 주면 해당 SKU만, 없으면 필터에 걸린 전체를 내보냅니다.

Example:
  go run ./cmd/skudeck export
  go run ./cmd/skudeck export --id S1 --id S2 -o picks.xlsx
  go run ./cmd/skudeck export --brand Haio --market Vietnam`,
	RunE: runExport,
}

var (
	exportIDs     []string
	exportOut     string
	exportBrand   string
	exportMarket  string
	exportChannel string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	// Flags
	exportCmd.Flags().StringArrayVar(&exportIDs, "id", nil, "내보낼 SKU ID (반복 가능)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "출력 파일 (기본: sku_export_<ts>.xlsx)")
	exportCmd.Flags().StringVar(&exportBrand, "brand", "", "브랜드 필터")
	exportCmd.Flags().StringVar(&exportMarket, "market", "", "시장 필터")
	exportCmd.Flags().StringVar(&exportChannel, "channel", "", "채널 필터")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)
	storeClient := store.New(cfg, log, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Store.Timeout)
	defer cancel()

	ids := exportIDs
	if len(ids) == 0 {
		skus, err := storeClient.ListSkus(ctx)
		if err != nil {
			return fmt.Errorf("fetch skus: %w", err)
		}

		filtered := portfolio.Filter(skus, portfolio.Options{
			Brand:   exportBrand,
			Market:  exportMarket,
			Channel: exportChannel,
		})
		ids = skuIDs(filtered)
	}

	if len(ids) == 0 {
		PrintWarning("No SKUs matched, nothing to export")
		return nil
	}

	contents, err := storeClient.ExportSkus(ctx, ids)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	out := exportOut
	if out == "" {
		out = fmt.Sprintf("sku_export_%s.xlsx", time.Now().Format("20060102_150405"))
	}
	if err := os.WriteFile(out, contents, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	PrintSuccess(fmt.Sprintf("Exported %d SKUs to %s", len(ids), out))
	return nil
}

func skuIDs(skus []catalog.Sku) []string {
	ids := make([]string, 0, len(skus))
	for _, sku := range skus {
		ids = append(ids, sku.SkuID)
	}
	return ids
}
