package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/pkg/httputil"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// sdmxResponse is the slice of SDMX-JSON the rates endpoint needs
type sdmxResponse struct {
	DataSets []struct {
		Series map[string]struct {
			Observations map[string][]json.RawMessage `json:"observations"`
		} `json:"series"`
	} `json:"dataSets"`
	Structure struct {
		Dimensions struct {
			Observation []struct {
				ID     string `json:"id"`
				Values []struct {
					ID string `json:"id"`
				} `json:"values"`
			} `json:"observation"`
		} `json:"dimensions"`
	} `json:"structure"`
}

// BOIFetcher reads representative exchange rates against ILS (SDMX-JSON)
type BOIFetcher struct {
	client       *httputil.Client
	baseURL      string
	currencies   map[contracts.SeriesType]string
	observations int
	logger       *logger.Logger
}

// NewBOIFetcher creates a fetcher; nil currencies means DefaultBOICurrencies
func NewBOIFetcher(client *httputil.Client, baseURL string, currencies map[contracts.SeriesType]string, observations int, log *logger.Logger) *BOIFetcher {
	if currencies == nil {
		currencies = DefaultBOICurrencies
	}
	if observations < 1 {
		observations = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BOIFetcher{
		client:       client,
		baseURL:      strings.TrimRight(baseURL, "/"),
		currencies:   currencies,
		observations: observations,
		logger:       log.WithComponent("feed-boi"),
	}
}

// Name implements Source
func (f *BOIFetcher) Name() string { return contracts.SourceBOI }

// Supports implements Source
func (f *BOIFetcher) Supports(series contracts.SeriesType) bool {
	_, ok := f.currencies[series]
	return ok
}

// Fetch implements Source. Each daily rate becomes a point of its month with
// RecordedAt set to the observation date, so the month's latest rate is canonical.
func (f *BOIFetcher) Fetch(ctx context.Context, series contracts.SeriesType) ([]contracts.IndexPoint, error) {
	code, ok := f.currencies[series]
	if !ok {
		return nil, fmt.Errorf("boi: series %q not configured", series)
	}

	endpoint := fmt.Sprintf(
		"%s/FusionEdgeServer/sdmx/v2/data/dataflow/BOI.STATISTICS/EXR/1.0/R/%s/ILS?c%%5BDATA_TYPE%%5D=OF00&lastNObservations=%d&format=sdmx-json",
		f.baseURL, code, f.observations,
	)

	var resp sdmxResponse
	if err := f.client.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("boi %s: %w", series, err)
	}

	points, err := parseSDMX(series, &resp)
	if err != nil {
		return nil, fmt.Errorf("boi %s: %w", series, err)
	}

	f.logger.WithFields(map[string]interface{}{
		"series": series,
		"count":  len(points),
	}).Info("fetched BOI exchange rate")
	return points, nil
}

func parseSDMX(series contracts.SeriesType, resp *sdmxResponse) ([]contracts.IndexPoint, error) {
	if len(resp.DataSets) == 0 || len(resp.DataSets[0].Series) == 0 {
		return nil, fmt.Errorf("no series data found")
	}

	var dates []string
	for _, dim := range resp.Structure.Dimensions.Observation {
		if dim.ID == "TIME_PERIOD" {
			for _, v := range dim.Values {
				dates = append(dates, v.ID)
			}
		}
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("no TIME_PERIOD dimension")
	}

	// one currency per request, so one series key
	var observations map[string][]json.RawMessage
	for _, s := range resp.DataSets[0].Series {
		observations = s.Observations
		break
	}

	keys := make([]int, 0, len(observations))
	for k := range observations {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(dates) {
			return nil, fmt.Errorf("observation key %q out of range", k)
		}
		keys = append(keys, i)
	}
	sort.Ints(keys)

	points := make([]contracts.IndexPoint, 0, len(keys))
	for _, i := range keys {
		obs := observations[strconv.Itoa(i)]
		if len(obs) == 0 {
			continue
		}
		value, err := decimal.NewFromString(strings.Trim(string(obs[0]), `"`))
		if err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
		observed, err := time.Parse("2006-01-02", dates[i])
		if err != nil {
			return nil, fmt.Errorf("observation %d date %q: %w", i, dates[i], err)
		}
		points = append(points, contracts.IndexPoint{
			Series:     series,
			Period:     contracts.PeriodOf(observed),
			Value:      value,
			Source:     contracts.SourceBOI,
			Official:   true,
			RecordedAt: observed,
		})
	}
	return points, nil
}
