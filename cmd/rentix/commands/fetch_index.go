package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// fetchIndexCmd represents the fetch-index command
var fetchIndexCmd = &cobra.Command{
	Use:   "fetch-index [series...]",
	Short: "물가지수 / 환율 수집",
	Long: `CBS 물가지수와 BOI 환율을 수집해 지수 저장소에 추가합니다.

인자가 없으면 정책 파일에서 fetch: true 인 모든 지수를 수집합니다.
이미 같은 공식 값이 있는 달은 건너뜁니다 (재실행 안전).

Example:
  go run ./cmd/rentix fetch-index
  go run ./cmd/rentix fetch-index cpi housing
  go run ./cmd/rentix fetch-index usd eur`,
	RunE: runFetchIndex,
}

func init() {
	rootCmd.AddCommand(fetchIndexCmd)
}

func runFetchIndex(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Rentix Index Fetcher ===")

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	series := a.policy.FetchSeries()
	if len(args) > 0 {
		series = make([]contracts.SeriesType, 0, len(args))
		for _, arg := range args {
			s, err := contracts.ParseSeriesType(arg)
			if err != nil {
				return err
			}
			series = append(series, s)
		}
	}

	start := time.Now()
	results, errs := a.ingester().IngestAll(cmd.Context(), series)

	PrintHeader("Index ingestion")
	for _, r := range results {
		latest := "-"
		if r.Latest != nil {
			latest = r.Latest.String()
		}
		fmt.Printf("  %-13s %-13s fetched=%-3d appended=%-3d skipped=%-3d latest=%s\n",
			r.Series, r.Source, r.Fetched, r.Appended, r.Skipped, latest)
	}
	PrintSeparator()

	if len(errs) > 0 {
		failed := make([]string, 0, len(errs))
		for s := range errs {
			failed = append(failed, string(s))
		}
		sort.Strings(failed)
		for _, s := range failed {
			PrintWarning(fmt.Sprintf("%s: %v", s, errs[contracts.SeriesType(s)]))
		}
		return fmt.Errorf("%d of %d series failed", len(errs), len(series))
	}

	PrintSuccess(fmt.Sprintf("%d series ingested in %.2fs", len(results), time.Since(start).Seconds()))
	return nil
}
