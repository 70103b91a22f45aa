package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// calcCmd represents the calc command
var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "지수 비율 / 연동 임대료 계산",
	Long: `저장된 지수로 비율과 연동 임대료를 계산합니다.

DATABASE_URL 이 없으면 SQLITE_PATH (오프라인) 를 사용합니다.

Subcommands:
  ratio  - 두 달 사이의 지수 비율 (기준 변경 보정)
  rent   - 연동 임대료 (부분 연동, 하한, 연간 상한 포함)

Example:
  go run ./cmd/rentix calc ratio --series cpi --base 2023-12 --current 2024-02
  go run ./cmd/rentix calc rent --series cpi --base 2023-12 --current 2024-02 --rent 5000
  go run ./cmd/rentix calc rent --series cpi --base 2023-12 --due 2024-03-10 --mode known --rent 5000 --floor`,
}

var (
	calcRatioCmd = &cobra.Command{
		Use:   "ratio",
		Short: "지수 비율 계산",
		RunE:  runCalcRatio,
	}

	calcRentCmd = &cobra.Command{
		Use:   "rent",
		Short: "연동 임대료 계산",
		RunE:  runCalcRent,
	}
)

var (
	calcSeries     string
	calcBase       string
	calcCurrent    string
	calcDue        string
	calcMode       string
	calcRent       string
	calcPartial    string
	calcCeiling    string
	calcFloor      bool
	calcContractID string
)

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.AddCommand(calcRatioCmd)
	calcCmd.AddCommand(calcRentCmd)

	for _, c := range []*cobra.Command{calcRatioCmd, calcRentCmd} {
		c.Flags().StringVar(&calcSeries, "series", "cpi", "지수 (cpi|housing|construction|usd|eur)")
		c.Flags().StringVar(&calcBase, "base", "", "기준 월 (YYYY-MM)")
		c.Flags().StringVar(&calcCurrent, "current", "", "현재 월 (YYYY-MM)")
		c.MarkFlagRequired("base")
	}

	calcRentCmd.Flags().StringVar(&calcDue, "due", "", "납부일 (YYYY-MM-DD), --current 대신 사용")
	calcRentCmd.Flags().StringVar(&calcMode, "mode", "respect_of", "지수 월 선택 (respect_of|known)")
	calcRentCmd.Flags().StringVar(&calcRent, "rent", "", "기준 임대료")
	calcRentCmd.Flags().StringVar(&calcPartial, "partial", "", "부분 연동 % (0-100)")
	calcRentCmd.Flags().StringVar(&calcCeiling, "ceiling", "", "연간 상한 %")
	calcRentCmd.Flags().BoolVar(&calcFloor, "floor", false, "기준 임대료 하한")
	calcRentCmd.Flags().StringVar(&calcContractID, "contract", "", "감사 기록에 남길 계약 ID")
	calcRentCmd.MarkFlagRequired("rent")
}

func runCalcRatio(cmd *cobra.Command, args []string) error {
	series, base, err := parseSeriesAndBase()
	if err != nil {
		return err
	}
	current, err := contracts.ParsePeriod(calcCurrent)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.resolver.Resolve(cmd.Context(), series, base, current)
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("Index ratio %s: %s → %s", series, base, current))
	PrintField("Base value", res.BaseValue)
	PrintField("Current value", res.CurrentValue)
	PrintField("Chain factor", res.ChainFactor)
	PrintField("Ratio", res.Ratio)
	PrintField("Fraction", fmt.Sprintf("%s / %s", res.Ratio.Numerator, res.Ratio.Denominator))
	PrintSeparator()
	return nil
}

func runCalcRent(cmd *cobra.Command, args []string) error {
	series, base, err := parseSeriesAndBase()
	if err != nil {
		return err
	}
	mode, err := contracts.ParseIndexMode(calcMode)
	if err != nil {
		return err
	}
	rent, err := decimal.NewFromString(calcRent)
	if err != nil {
		return contracts.Invalid("rent", "not a number: %q", calcRent)
	}
	terms, err := parseTerms()
	if err != nil {
		return err
	}

	spec := contracts.LinkageSpec{
		Series:         series,
		BaseDate:       base,
		BaseRentAmount: rent,
		Terms:          terms,
		Mode:           mode,
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	var calc *contracts.Calculation
	switch {
	case calcCurrent != "":
		current, err := contracts.ParsePeriod(calcCurrent)
		if err != nil {
			return err
		}
		calc, err = a.calc.Calculate(cmd.Context(), spec, current)
		if err != nil {
			return err
		}
	case calcDue != "":
		due, err := time.Parse("2006-01-02", calcDue)
		if err != nil {
			return contracts.Invalid("due", "expected YYYY-MM-DD, got %q", calcDue)
		}
		calc, err = a.calc.CalculateForDue(cmd.Context(), spec, due)
		if err != nil {
			return err
		}
	default:
		return contracts.Invalid("current", "--current or --due is required")
	}

	if calcContractID != "" {
		calc.ContractID = calcContractID
		if err := a.audit.SaveCalculation(cmd.Context(), calc); err != nil {
			return fmt.Errorf("save calculation: %w", err)
		}
	}

	PrintHeader(fmt.Sprintf("Indexed rent %s: %s → %s", series, calc.BasePeriod, calc.CurrentPeriod))
	PrintField("Base rent", calc.BaseRent)
	PrintField("Raw ratio", calc.RawRatio.StringFixed(6))
	PrintField("Effective ratio", calc.EffectiveRatio.StringFixed(6))
	PrintField("Adjusted rent", calc.AdjustedRent)
	PrintField("Calculation ID", calc.ID)
	PrintSeparator()
	fmt.Printf("  %s\n", calc.Formula)
	return nil
}

func parseSeriesAndBase() (contracts.SeriesType, contracts.Period, error) {
	series, err := contracts.ParseSeriesType(calcSeries)
	if err != nil {
		return "", contracts.Period{}, err
	}
	base, err := contracts.ParsePeriod(calcBase)
	if err != nil {
		return "", contracts.Period{}, err
	}
	return series, base, nil
}

func parseTerms() (contracts.LinkageTerms, error) {
	terms := contracts.LinkageTerms{BaseIsFloor: calcFloor}
	if calcPartial != "" {
		d, err := decimal.NewFromString(calcPartial)
		if err != nil {
			return terms, contracts.Invalid("partial", "not a number: %q", calcPartial)
		}
		terms.PartialPct = decimal.NewNullDecimal(d)
	}
	if calcCeiling != "" {
		d, err := decimal.NewFromString(calcCeiling)
		if err != nil {
			return terms, contracts.Invalid("ceiling", "not a number: %q", calcCeiling)
		}
		terms.AnnualCeilingPct = decimal.NewNullDecimal(d)
	}
	return terms, terms.Validate()
}
