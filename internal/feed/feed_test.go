package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/pkg/config"
	"github.com/wonny/rentix/backend/pkg/httputil"
)

const cbsMonthly = `{
  "month": [
    {"date": "2024-01-15T00:00:00", "value": 102.3},
    {"date": "2024-02-15", "value": "102.9"},
    {"date": "bad", "value": 1},
    {"date": "2024-03-15", "value": 0}
  ]
}`

const boiRates = `{
  "dataSets": [{"series": {"0:0:0:0": {"observations": {"0": [3.712], "1": ["3.698"]}}}}],
  "structure": {"dimensions": {"observation": [
    {"id": "TIME_PERIOD", "values": [{"id": "2024-03-28"}, {"id": "2024-04-02"}]}
  ]}}
}`

func newServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.String())
		switch {
		case r.URL.Path == "/index/data/price" && r.URL.Query().Get("series") == "120010":
			w.Write([]byte(cbsMonthly))
		case r.URL.Path == "/index/data/price":
			w.Write([]byte(`{"publicationSeries": []}`))
		case r.URL.Path == "/FusionEdgeServer/sdmx/v2/data/dataflow/BOI.STATISTICS/EXR/1.0/R/US/ILS":
			w.Write([]byte(boiRates))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func testClient() *httputil.Client {
	return httputil.New(&config.Config{Env: "development", LogLevel: "error"}, nil).DisableRetry()
}

func TestCBSFetcher(t *testing.T) {
	srv, requests := newServer(t)
	f := NewCBSFetcher(testClient(), srv.URL+"/", nil, 6, nil)
	f.now = func() time.Time { return time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC) }

	assert.Equal(t, contracts.SourceCBS, f.Name())
	assert.True(t, f.Supports(contracts.SeriesCPI))
	assert.False(t, f.Supports(contracts.SeriesUSD))

	points, err := f.Fetch(context.Background(), contracts.SeriesCPI)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01", points[0].Period.String())
	assert.Equal(t, "102.3", points[0].Value.String())
	assert.Equal(t, "2024-02", points[1].Period.String())
	assert.Equal(t, "102.9", points[1].Value.String())
	assert.True(t, points[1].Official)
	assert.Equal(t, 2024, points[1].RecordedAt.Year())

	require.Len(t, *requests, 1)
	assert.Contains(t, (*requests)[0], "last=6")
	assert.Contains(t, (*requests)[0], "series=120010")
}

func TestCBSFetcher_UnknownShape(t *testing.T) {
	srv, _ := newServer(t)
	f := NewCBSFetcher(testClient(), srv.URL, nil, 0, nil)

	_, err := f.Fetch(context.Background(), contracts.SeriesHousing)
	assert.ErrorContains(t, err, "unknown response structure")

	_, err = f.Fetch(context.Background(), contracts.SeriesEUR)
	assert.ErrorContains(t, err, "not configured")
}

func TestBOIFetcher(t *testing.T) {
	srv, _ := newServer(t)
	f := NewBOIFetcher(testClient(), srv.URL, nil, 2, nil)

	points, err := f.Fetch(context.Background(), contracts.SeriesUSD)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2024-03", points[0].Period.String())
	assert.Equal(t, "3.712", points[0].Value.String())
	assert.Equal(t, "2024-04", points[1].Period.String())
	assert.Equal(t, "3.698", points[1].Value.String())
	assert.Equal(t, contracts.SourceBOI, points[1].Source)
	assert.Equal(t, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), points[1].RecordedAt)
}

func TestBOIFetcher_HTTPError(t *testing.T) {
	srv, _ := newServer(t)
	f := NewBOIFetcher(testClient(), srv.URL, map[contracts.SeriesType]string{contracts.SeriesEUR: "EU"}, 1, nil)

	_, err := f.Fetch(context.Background(), contracts.SeriesEUR)
	var statusErr *httputil.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestParseSDMX_Errors(t *testing.T) {
	_, err := parseSDMX(contracts.SeriesUSD, &sdmxResponse{})
	assert.ErrorContains(t, err, "no series data")
}

func TestRouter(t *testing.T) {
	cbs := NewCBSFetcher(testClient(), "http://cbs", nil, 3, nil)
	boi := NewBOIFetcher(testClient(), "http://boi", nil, 1, nil)
	r := NewRouter(cbs, boi)

	src, err := r.For(contracts.SeriesEUR)
	require.NoError(t, err)
	assert.Equal(t, contracts.SourceBOI, src.Name())

	src, err = r.For(contracts.SeriesConstruction)
	require.NoError(t, err)
	assert.Equal(t, contracts.SourceCBS, src.Name())

	_, err = NewRouter(cbs).For(contracts.SeriesUSD)
	assert.Error(t, err)
}
