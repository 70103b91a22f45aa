package contracts

import (
	"fmt"
	"strings"
)

// SeriesType identifies a published index family
// ⭐ SSOT: 지수 종류는 여기서만 정의
type SeriesType string

const (
	SeriesCPI          SeriesType = "cpi"          // 소비자물가지수 (Madad)
	SeriesHousing      SeriesType = "housing"      // 주거비 지수
	SeriesConstruction SeriesType = "construction" // 건축자재 지수
	SeriesUSD          SeriesType = "usd"          // USD/ILS 환율
	SeriesEUR          SeriesType = "eur"          // EUR/ILS 환율
)

// AllSeries lists every supported series in display order
var AllSeries = []SeriesType{SeriesCPI, SeriesHousing, SeriesConstruction, SeriesUSD, SeriesEUR}

// ParseSeriesType parses a series name (case-insensitive)
func ParseSeriesType(s string) (SeriesType, error) {
	st := SeriesType(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", &InvalidInputError{Field: "series", Message: fmt.Sprintf("unknown series %q", s)}
	}
	return st, nil
}

// Valid reports whether the series is supported
func (s SeriesType) Valid() bool {
	for _, known := range AllSeries {
		if s == known {
			return true
		}
	}
	return false
}

// IsCurrency reports whether the series is an exchange rate rather than a price index
func (s SeriesType) IsCurrency() bool {
	return s == SeriesUSD || s == SeriesEUR
}
