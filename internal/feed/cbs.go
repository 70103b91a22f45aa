package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/pkg/httputil"
	"github.com/wonny/rentix/backend/pkg/logger"
)

// cbsPoint is one published value; value arrives as a number or a string
type cbsPoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// cbsResponse covers the shapes the price API answers with
type cbsResponse struct {
	Month []cbsPoint `json:"month"`
	Day   []cbsPoint `json:"day"`
	Data  []cbsPoint `json:"data"`
}

func (r cbsResponse) points() ([]cbsPoint, bool) {
	switch {
	case r.Month != nil:
		return r.Month, true
	case r.Day != nil:
		return r.Day, true
	case r.Data != nil:
		return r.Data, true
	}
	return nil, false
}

// CBSFetcher reads monthly price indices from the CBS JSON API
type CBSFetcher struct {
	client     *httputil.Client
	baseURL    string
	seriesIDs  map[contracts.SeriesType]string
	lastMonths int
	logger     *logger.Logger
	now        func() time.Time
}

// NewCBSFetcher creates a fetcher; nil seriesIDs means DefaultCBSSeries
func NewCBSFetcher(client *httputil.Client, baseURL string, seriesIDs map[contracts.SeriesType]string, lastMonths int, log *logger.Logger) *CBSFetcher {
	if seriesIDs == nil {
		seriesIDs = DefaultCBSSeries
	}
	if lastMonths < 1 {
		lastMonths = 3
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CBSFetcher{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		seriesIDs:  seriesIDs,
		lastMonths: lastMonths,
		logger:     log.WithComponent("feed-cbs"),
		now:        time.Now,
	}
}

// Name implements Source
func (f *CBSFetcher) Name() string { return contracts.SourceCBS }

// Supports implements Source
func (f *CBSFetcher) Supports(series contracts.SeriesType) bool {
	_, ok := f.seriesIDs[series]
	return ok
}

// Fetch implements Source. Published CBS values are official.
func (f *CBSFetcher) Fetch(ctx context.Context, series contracts.SeriesType) ([]contracts.IndexPoint, error) {
	id, ok := f.seriesIDs[series]
	if !ok {
		return nil, fmt.Errorf("cbs: series %q not configured", series)
	}

	q := url.Values{}
	q.Set("series", id)
	q.Set("format", "json")
	q.Set("download", "false")
	q.Set("last", fmt.Sprint(f.lastMonths))
	endpoint := f.baseURL + "/index/data/price?" + q.Encode()

	var resp cbsResponse
	if err := f.client.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("cbs %s: %w", series, err)
	}

	raw, ok := resp.points()
	if !ok {
		return nil, fmt.Errorf("cbs %s: unknown response structure", series)
	}

	recordedAt := f.now().UTC()
	points := make([]contracts.IndexPoint, 0, len(raw))
	for _, r := range raw {
		period, err := periodFromDate(r.Date)
		if err != nil || !r.Value.IsPositive() {
			f.logger.WithFields(map[string]interface{}{
				"series": series,
				"date":   r.Date,
				"value":  r.Value.String(),
			}).Warn("skipping unparsable CBS point")
			continue
		}
		points = append(points, contracts.IndexPoint{
			Series:     series,
			Period:     period,
			Value:      r.Value,
			Source:     contracts.SourceCBS,
			Official:   true,
			RecordedAt: recordedAt,
		})
	}

	f.logger.WithFields(map[string]interface{}{
		"series": series,
		"count":  len(points),
	}).Info("fetched CBS index")
	return points, nil
}
