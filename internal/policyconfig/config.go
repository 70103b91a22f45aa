package policyconfig

import (
	"github.com/wonny/rentix/backend/internal/contracts"
)

// Config는 임대료 연동/기한 엔진의 정책 설정
type Config struct {
	Meta      Meta        `yaml:"meta" json:"meta"`
	Deadlines Deadlines   `yaml:"deadlines" json:"deadlines"`
	Series    []SeriesDef `yaml:"series" json:"series"`
	Recompute Recompute   `yaml:"recompute" json:"recompute"`
	Schedules Schedules   `yaml:"schedules" json:"schedules"`
}

// Meta 메타 정보
type Meta struct {
	PolicyID string `yaml:"policy_id" json:"policy_id"`
	Version  string `yaml:"version" json:"version"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

// Deadlines are the global defaults every deadline computation receives
type Deadlines struct {
	DefaultNoticeDays       int `yaml:"default_notice_days" json:"default_notice_days"`
	DefaultOptionNoticeDays int `yaml:"default_option_notice_days" json:"default_option_notice_days"`
	SafetyBufferDays        int `yaml:"safety_buffer_days" json:"safety_buffer_days"`
	AlertLeadDays           int `yaml:"alert_lead_days" json:"alert_lead_days"`
}

// SeriesDef 지수 카탈로그 항목
type SeriesDef struct {
	Series      contracts.SeriesType `yaml:"series" json:"series"`
	Source      string               `yaml:"source" json:"source"` // cbs | exchange-api
	Code        string               `yaml:"code" json:"code"`     // CBS series id / BOI currency code
	Description string               `yaml:"description" json:"description"`
	Fetch       bool                 `yaml:"fetch" json:"fetch"`
}

// Recompute 배치 재계산 설정
type Recompute struct {
	Workers int `yaml:"workers" json:"workers"`
}

// Schedules are cron expressions with seconds (robfig/cron WithSeconds)
type Schedules struct {
	IndexFetch   string `yaml:"index_fetch" json:"index_fetch"`
	Recompute    string `yaml:"recompute" json:"recompute"`
	DeadlineScan string `yaml:"deadline_scan" json:"deadline_scan"`
}

// GlobalDefaults maps the deadline section to the engine input
func (c *Config) GlobalDefaults() contracts.GlobalDefaults {
	return contracts.GlobalDefaults{
		DefaultNoticeDays:       c.Deadlines.DefaultNoticeDays,
		DefaultOptionNoticeDays: c.Deadlines.DefaultOptionNoticeDays,
		SafetyBufferDays:        c.Deadlines.SafetyBufferDays,
		AlertLeadDays:           c.Deadlines.AlertLeadDays,
	}
}

// SourceCodes returns series → code for one source
func (c *Config) SourceCodes(source string) map[contracts.SeriesType]string {
	out := make(map[contracts.SeriesType]string)
	for _, s := range c.Series {
		if s.Source == source {
			out[s.Series] = s.Code
		}
	}
	return out
}

// FetchSeries lists the series the index-fetch job pulls
func (c *Config) FetchSeries() []contracts.SeriesType {
	var out []contracts.SeriesType
	for _, s := range c.Series {
		if s.Fetch {
			out = append(out, s.Series)
		}
	}
	return out
}

// Default returns the built-in policy (CBS/BOI catalogue, 100/60/10/30 days)
func Default() *Config {
	return &Config{
		Meta: Meta{
			PolicyID: "il_residential_v1",
			Version:  "1",
			Timezone: "Asia/Jerusalem",
		},
		Deadlines: Deadlines{
			DefaultNoticeDays:       100,
			DefaultOptionNoticeDays: 60,
			SafetyBufferDays:        10,
			AlertLeadDays:           30,
		},
		Series: []SeriesDef{
			{Series: contracts.SeriesCPI, Source: contracts.SourceCBS, Code: "120010", Description: "Consumer price index (general)", Fetch: true},
			{Series: contracts.SeriesHousing, Source: contracts.SourceCBS, Code: "40010", Description: "Housing price index", Fetch: true},
			{Series: contracts.SeriesConstruction, Source: contracts.SourceCBS, Code: "200010", Description: "Residential construction input index", Fetch: true},
			{Series: contracts.SeriesUSD, Source: contracts.SourceBOI, Code: "US", Description: "USD/ILS representative rate", Fetch: true},
			{Series: contracts.SeriesEUR, Source: contracts.SourceBOI, Code: "EU", Description: "EUR/ILS representative rate", Fetch: true},
		},
		Recompute: Recompute{Workers: 8},
		Schedules: Schedules{
			IndexFetch:   "0 0 19 15,16,17 * *", // 매월 15일 발표 후 3일간
			Recompute:    "0 30 2 * * *",
			DeadlineScan: "0 0 7 * * *",
		},
	}
}
