package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/deadline"
)

// deadlineCmd represents the deadline command
var deadlineCmd = &cobra.Command{
	Use:   "deadline",
	Short: "계약 통지 기한 계산",
	Long: `계약 종료일과 통지 기간으로 결정 기한과 옵션 통지 기한을 계산합니다.

통지 기간이 없거나 0 이면 정책의 기본값을 사용합니다.
기한 = 종료일 - (통지 기간 + 안전 버퍼) 일

Example:
  go run ./cmd/rentix deadline --end 2025-12-31
  go run ./cmd/rentix deadline --end 2025-12-31 --notice 90 --option --option-notice 45
  go run ./cmd/rentix deadline --end 2025-12-31 --today 2025-09-01`,
	RunE: runDeadline,
}

var (
	deadlineEnd          string
	deadlineToday        string
	deadlineNotice       int
	deadlineOptionNotice int
	deadlineHasOption    bool
)

func init() {
	rootCmd.AddCommand(deadlineCmd)

	deadlineCmd.Flags().StringVar(&deadlineEnd, "end", "", "계약 종료일 (YYYY-MM-DD)")
	deadlineCmd.Flags().StringVar(&deadlineToday, "today", "", "기준일 (default: 오늘)")
	deadlineCmd.Flags().IntVar(&deadlineNotice, "notice", 0, "계약 통지 기간 (일, 0 = 기본값)")
	deadlineCmd.Flags().IntVar(&deadlineOptionNotice, "option-notice", 0, "옵션 통지 기간 (일, 0 = 기본값)")
	deadlineCmd.Flags().BoolVar(&deadlineHasOption, "option", false, "연장 옵션 있음")
	deadlineCmd.MarkFlagRequired("end")
}

func runDeadline(cmd *cobra.Command, args []string) error {
	end, err := time.Parse("2006-01-02", deadlineEnd)
	if err != nil {
		return contracts.Invalid("end", "expected YYYY-MM-DD, got %q", deadlineEnd)
	}
	today := time.Now()
	if deadlineToday != "" {
		if today, err = time.Parse("2006-01-02", deadlineToday); err != nil {
			return contracts.Invalid("today", "expected YYYY-MM-DD, got %q", deadlineToday)
		}
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	// 0 stays "unset" and falls back to the policy default
	plan, err := a.planner.Plan(contracts.NoticePolicy{
		ContractNoticeDays: contracts.Days(deadlineNotice),
		OptionNoticeDays:   contracts.Days(deadlineOptionNotice),
		EndDate:            end,
		HasOption:          deadlineHasOption,
	}, today)
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("Deadlines for contract ending %s", plan.EndDate.Format("2006-01-02")))
	PrintField("Today", plan.Today.Format("2006-01-02"))
	for _, d := range plan.Deadlines() {
		PrintSeparator()
		printDeadline(d)
	}
	PrintSeparator()
	return nil
}

func printDeadline(d deadline.Deadline) {
	icon := "🟢"
	switch d.Window {
	case deadline.WindowInside:
		icon = "🟡"
	case deadline.WindowOverdue:
		icon = "🔴"
	}
	PrintField("Kind", d.Kind)
	PrintField("Deadline", fmt.Sprintf("%s %s", d.Date.Format("2006-01-02"), icon))
	PrintField("Notice", fmt.Sprintf("%d days (%s) + %d buffer", d.NoticeDays, d.Source, d.BufferDays))
	PrintField("Window", d.Window)
	PrintField("Days left", d.DaysLeft)
}
