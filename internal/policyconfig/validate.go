package policyconfig

import (
	"fmt"
	"time"
	_ "time/tzdata" // meta.timezone 검증용

	"github.com/robfig/cron/v3"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.PolicyID == "" {
		return ValidationError{"meta.policy_id", "required"}
	}
	if cfg.Meta.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
			return ValidationError{"meta.timezone", err.Error()}
		}
	}

	// === Deadlines ===
	if err := cfg.GlobalDefaults().Validate(); err != nil {
		return ValidationError{"deadlines", err.Error()}
	}

	// === Series ===
	seen := make(map[contracts.SeriesType]bool)
	for i, s := range cfg.Series {
		field := fmt.Sprintf("series[%d]", i)
		if !s.Series.Valid() {
			return ValidationError{field + ".series", fmt.Sprintf("unknown series %q", s.Series)}
		}
		if seen[s.Series] {
			return ValidationError{field + ".series", fmt.Sprintf("duplicate series %q", s.Series)}
		}
		seen[s.Series] = true

		switch s.Source {
		case contracts.SourceCBS:
			if s.Series.IsCurrency() {
				return ValidationError{field + ".source", "exchange rates come from exchange-api"}
			}
		case contracts.SourceBOI:
			if !s.Series.IsCurrency() {
				return ValidationError{field + ".source", "price indices come from cbs"}
			}
		case contracts.SourceManual:
			if s.Fetch {
				return ValidationError{field + ".fetch", "manual series cannot be fetched"}
			}
		default:
			return ValidationError{field + ".source", fmt.Sprintf("unknown source %q", s.Source)}
		}
		if s.Source != contracts.SourceManual && s.Code == "" {
			return ValidationError{field + ".code", "required"}
		}
	}

	// === Recompute ===
	if cfg.Recompute.Workers < 1 || cfg.Recompute.Workers > 64 {
		return ValidationError{"recompute.workers", "must be in [1, 64]"}
	}

	// === Schedules ===
	for field, spec := range map[string]string{
		"schedules.index_fetch":   cfg.Schedules.IndexFetch,
		"schedules.recompute":     cfg.Schedules.Recompute,
		"schedules.deadline_scan": cfg.Schedules.DeadlineScan,
	} {
		if spec == "" {
			continue // job disabled
		}
		if _, err := cronParser.Parse(spec); err != nil {
			return ValidationError{field, err.Error()}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 버퍼가 통지기간보다 길면 사실상 기한이 두 배로 당겨짐
	if cfg.Deadlines.SafetyBufferDays > cfg.Deadlines.DefaultNoticeDays {
		warnings = append(warnings, Warning{
			Code:    "BUFFER_EXCEEDS_NOTICE",
			Message: "safety_buffer_days > default_notice_days",
		})
	}

	if cfg.Deadlines.AlertLeadDays > 90 {
		warnings = append(warnings, Warning{
			Code:    "LONG_ALERT_LEAD",
			Message: "alert_lead_days > 90: contracts stay inside the window for a quarter",
		})
	}

	if len(cfg.FetchSeries()) == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_FETCH_SERIES",
			Message: "no series marked fetch: index data must be loaded manually",
		})
	}

	return warnings
}
