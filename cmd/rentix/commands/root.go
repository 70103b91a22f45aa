package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	policyFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rentix",
	Short: "Rentix - 임대료 물가연동 / 계약 기한 엔진",
	Long: `Rentix Unified CLI

물가지수 기준 변경(rebasing)을 보정한 임대료 연동 계산과
계약 종료 통지 기한 계산을 제공합니다.

Usage:
  go run ./cmd/rentix [command]

Examples:
  go run ./cmd/rentix api
  go run ./cmd/rentix calc ratio --series cpi --base 2023-12 --current 2024-02
  go run ./cmd/rentix deadline --end 2025-12-31
  go run ./cmd/rentix fetch-index cpi usd
  go run ./cmd/rentix test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "engine policy YAML (default: ENGINE_POLICY_FILE or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
