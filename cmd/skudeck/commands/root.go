package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "skudeck",
	Short: "SkuDeck - SKU 포트폴리오 대시보드 BFF",
	Long: `SkuDeck Unified CLI

SKU 후보 카탈로그의 집계/임포트/포트폴리오 BFF.
원격 SKU 스토어를 단일 소스로 사용합니다.

Usage:
  go run ./cmd/skudeck [command]

Examples:
  go run ./cmd/skudeck api
  go run ./cmd/skudeck dashboard
  go run ./cmd/skudeck import skus.xlsx --market Vietnam
  go run ./cmd/skudeck status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
