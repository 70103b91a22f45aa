package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "지수 수동 입력 / 기준 변경 등록",
	Long: `지수 값을 수동으로 추가하거나 기준 변경(rebasing)을 등록합니다.

지수 값은 추가만 가능합니다 (수정 = 새 값 추가, 최신 공식 값이 우선).

Subcommands:
  add   - 지수 값 추가
  base  - 기준 변경 등록 (chain factor)

Example:
  go run ./cmd/rentix index add --series cpi --period 2024-01 --value 102.3
  go run ./cmd/rentix index add --series cpi --period 2024-01 --value 102.4 --official
  go run ./cmd/rentix index base --series cpi --start 2025-01 --factor 1.0543`,
}

var (
	indexAddCmd = &cobra.Command{
		Use:   "add",
		Short: "지수 값 추가",
		RunE:  runIndexAdd,
	}

	indexBaseCmd = &cobra.Command{
		Use:   "base",
		Short: "기준 변경 등록",
		RunE:  runIndexBase,
	}
)

var (
	indexSeries      string
	indexPeriod      string
	indexValue       string
	indexOfficial    bool
	indexBaseStart   string
	indexBaseValue   string
	indexChainFactor string
	indexDescription string
)

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexBaseCmd)

	indexCmd.PersistentFlags().StringVar(&indexSeries, "series", "cpi", "지수 (cpi|housing|construction|usd|eur)")

	indexAddCmd.Flags().StringVar(&indexPeriod, "period", "", "월 (YYYY-MM)")
	indexAddCmd.Flags().StringVar(&indexValue, "value", "", "지수 값")
	indexAddCmd.Flags().BoolVar(&indexOfficial, "official", false, "공식 발표 값")
	indexAddCmd.MarkFlagRequired("period")
	indexAddCmd.MarkFlagRequired("value")

	indexBaseCmd.Flags().StringVar(&indexBaseStart, "start", "", "새 기준 시작 월 (YYYY-MM)")
	indexBaseCmd.Flags().StringVar(&indexBaseValue, "base-value", "100", "새 기준 값")
	indexBaseCmd.Flags().StringVar(&indexChainFactor, "factor", "", "이전 기준으로의 환산 계수")
	indexBaseCmd.Flags().StringVar(&indexDescription, "description", "", "설명")
	indexBaseCmd.MarkFlagRequired("start")
	indexBaseCmd.MarkFlagRequired("factor")
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	series, err := contracts.ParseSeriesType(indexSeries)
	if err != nil {
		return err
	}
	period, err := contracts.ParsePeriod(indexPeriod)
	if err != nil {
		return err
	}
	value, err := decimal.NewFromString(indexValue)
	if err != nil {
		return contracts.Invalid("value", "not a number: %q", indexValue)
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	point := contracts.IndexPoint{
		Series:     series,
		Period:     period,
		Value:      value,
		Source:     contracts.SourceManual,
		Official:   indexOfficial,
		RecordedAt: time.Now().UTC(),
	}
	if err := a.index.AppendIndexPoint(cmd.Context(), point); err != nil {
		return err
	}
	if err := a.cache.Invalidate(cmd.Context(), series); err != nil {
		a.log.WithError(err).Warn("Cache invalidation failed")
	}

	PrintSuccess(fmt.Sprintf("%s %s = %s appended (official=%v)", series, period, value, indexOfficial))
	return nil
}

func runIndexBase(cmd *cobra.Command, args []string) error {
	series, err := contracts.ParseSeriesType(indexSeries)
	if err != nil {
		return err
	}
	start, err := contracts.ParsePeriod(indexBaseStart)
	if err != nil {
		return err
	}
	baseValue, err := decimal.NewFromString(indexBaseValue)
	if err != nil {
		return contracts.Invalid("base-value", "not a number: %q", indexBaseValue)
	}
	factor, err := decimal.NewFromString(indexChainFactor)
	if err != nil {
		return contracts.Invalid("factor", "not a number: %q", indexChainFactor)
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	base := contracts.IndexBase{
		Series:          series,
		BasePeriodStart: start,
		BaseValue:       baseValue,
		ChainFactor:     factor,
		Description:     indexDescription,
	}
	if err := a.index.UpsertBase(cmd.Context(), base); err != nil {
		return err
	}
	if err := a.cache.Invalidate(cmd.Context(), series); err != nil {
		a.log.WithError(err).Warn("Cache invalidation failed")
	}

	PrintSuccess(fmt.Sprintf("%s base from %s registered (factor %s)", series, start, factor))
	return nil
}
