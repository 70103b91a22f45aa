package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rentix/backend/internal/recompute"
)

// recomputeCmd represents the recompute command
var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "연동 계약 임대료 일괄 재계산",
	Long: `모든 활성 연동 계약의 현재 임대료를 다시 계산합니다.

지수가 아직 발표되지 않은 계약은 건너뛰고 (no-data) 보고합니다.
모든 계산은 감사 기록으로 저장됩니다.

Example:
  go run ./cmd/rentix recompute
  go run ./cmd/rentix recompute --as-of 2024-03-01`,
	RunE: runRecompute,
}

var recomputeAsOf string

func init() {
	rootCmd.AddCommand(recomputeCmd)

	recomputeCmd.Flags().StringVar(&recomputeAsOf, "as-of", "", "기준일 (YYYY-MM-DD, default: 오늘)")
}

func runRecompute(cmd *cobra.Command, args []string) error {
	asOf := time.Now()
	if recomputeAsOf != "" {
		t, err := time.Parse("2006-01-02", recomputeAsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of %q: %w", recomputeAsOf, err)
		}
		asOf = t
	}

	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	summary, err := a.recomputer().Run(cmd.Context(), asOf)
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("Recompute as of %s", asOf.Format("2006-01-02")))
	outcomes := make([]string, 0, len(summary.Counts))
	for o := range summary.Counts {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	for _, o := range outcomes {
		PrintField(o, summary.Counts[o])
	}
	PrintField("Duration", summary.Duration.Round(time.Millisecond))
	PrintSeparator()

	for _, r := range summary.Failures() {
		if r.Outcome == recompute.OutcomeNoData {
			continue
		}
		PrintWarning(fmt.Sprintf("%s: %v", r.ContractID, r.Error))
	}
	return nil
}
