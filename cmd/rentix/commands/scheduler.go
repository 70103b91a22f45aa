package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/rentix/backend/internal/scheduler"
	"github.com/wonny/rentix/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (완료까지 대기)

Example:
  go run ./cmd/rentix scheduler start
  go run ./cmd/rentix scheduler list
  go run ./cmd/rentix scheduler run index_fetch`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 정책 파일의 모든 작업을 스케줄합니다.

등록되는 작업 (정책 timezone 기준):
- index_fetch: 매월 15-17일 19시 (CBS 지수 발표 직후, 재시도 포함)
- rent_recompute: 매일 02:30 (연동 계약 임대료 재계산)
- deadline_scan: 매일 07:00 (통지 기한 알림)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Rentix Scheduler ===")

	a, sched, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, sched, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunJobSync(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	PrintSeparator()
	fmt.Printf("  Job      : %s\n", result.JobName)
	fmt.Printf("  Duration : %v\n", result.Duration)
	if !result.Success {
		fmt.Printf("  Error    : %v\n", result.Error)
		return fmt.Errorf("job %s failed", jobName)
	}
	fmt.Println("  Status   : ✅ success")
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()
	names := sched.GetAllJobs()
	sort.Strings(names)

	fmt.Println("\nRegistered jobs:")
	for _, name := range names {
		schedule := stats[name].Schedule
		if schedule == "" {
			schedule = "manual"
		}
		fmt.Printf("  - %-16s %s\n", name, schedule)
	}
}

func initScheduler(cmd *cobra.Command) (*app, *scheduler.Scheduler, error) {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.NewInLocation(a.log, a.location())
	sc := a.policy.Schedules

	for _, job := range []scheduler.Job{
		jobs.NewIndexFetchJob(a.ingester(), a.policy.FetchSeries(), sc.IndexFetch, a.log),
		jobs.NewRecomputeJob(a.recomputer(), sc.Recompute, a.log),
		jobs.NewDeadlineScanJob(a.contracts, a.audit, a.planner, sc.DeadlineScan, a.log),
	} {
		if err := sched.AddJob(job); err != nil {
			a.close()
			return nil, nil, err
		}
	}
	return a, sched, nil
}
