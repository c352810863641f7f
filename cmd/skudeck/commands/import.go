package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/skudeck/internal/importer"
	"github.com/wonny/skudeck/internal/store"
	"github.com/wonny/skudeck/pkg/config"
	"github.com/wonny/skudeck/pkg/logger"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "스프레드시트 임포트",
	Long: `스프레드시트를 SKU 스토어로 임포트합니다.

동작:
1. 파일 업로드 후 헤더 추출
2. 표준 스키마 자동 매핑 (--map 으로 수동 교정)
3. 필수 컬럼 검증 후 최종 임포트

Example:
  go run ./cmd/skudeck import skus.xlsx
  go run ./cmd/skudeck import skus.xlsx --market Vietnam
  go run ./cmd/skudeck import skus.xlsx --map "SKU ID=Item Code"`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importMarket   string
	importMappings []string
	importDryRun   bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	// Flags
	importCmd.Flags().StringVar(&importMarket, "market", "", "모든 행에 적용할 타깃 시장 오버라이드")
	importCmd.Flags().StringArrayVar(&importMappings, "map", nil, `수동 매핑 "컬럼 키=파일 헤더" (반복 가능)`)
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "매핑 결과만 출력하고 임포트하지 않음")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)
	storeClient := store.New(cfg, log, nil)

	ctx := context.Background()
	wizard := importer.NewWizard(storeClient, log)

	// 1. Upload and extract headers
	fmt.Printf("Uploading %s...\n", filepath.Base(path))
	if err := wizard.SelectFile(ctx, filepath.Base(path), contents); err != nil {
		return fmt.Errorf("extract headers: %w", err)
	}
	PrintSuccess(fmt.Sprintf("%d headers extracted", len(wizard.Headers())))

	// 2. Manual mapping corrections
	for _, entry := range importMappings {
		key, header, found := strings.Cut(entry, "=")
		if !found {
			return fmt.Errorf("invalid --map entry %q (expected \"key=header\")", entry)
		}
		if err := wizard.SetColumn(strings.TrimSpace(key), strings.TrimSpace(header)); err != nil {
			return fmt.Errorf("map %q: %w", key, err)
		}
	}
	if importMarket != "" {
		wizard.SetDefaultMarket(importMarket)
	}

	// 3. Show the resolved mapping
	fmt.Println("\nResolved mapping:")
	mapping := wizard.Mapping()
	for _, col := range wizard.Schema() {
		header, ok := mapping[col.Key]
		marker := " "
		if col.Required {
			marker = "*"
		}
		if !ok {
			header = "(unmapped)"
		}
		PrintKeyValue(marker+" "+col.Label, header, 28)
	}

	if missing := importer.Validate(mapping, wizard.Schema()); len(missing) > 0 {
		PrintError("Missing required fields: " + strings.Join(missing, ", "))
		return fmt.Errorf("required fields unmapped")
	}

	if importDryRun {
		PrintSuccess("Dry run: mapping is valid, nothing imported")
		return wizard.Cancel()
	}

	// 4. Submit
	stats, err := wizard.Submit(ctx)
	if err != nil {
		var validationErr *importer.ValidationError
		if errors.As(err, &validationErr) {
			PrintError(validationErr.Error())
		}
		return fmt.Errorf("import: %w", err)
	}

	PrintSuccess(fmt.Sprintf("Imported %d SKUs", stats.Skus))
	return nil
}
