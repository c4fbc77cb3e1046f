package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartPayload(timestamps []int64, opens, highs, lows, closes []float64, volumes []int64) string {
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"timestamp": %s,
				"indicators": {"quote": [{
					"open": %s, "high": %s, "low": %s, "close": %s, "volume": %s
				}]}
			}],
			"error": null
		}
	}`, jsonInts(timestamps), jsonFloats(opens), jsonFloats(highs), jsonFloats(lows), jsonFloats(closes), jsonInts(volumes))
}

func jsonInts(vals []int64) string {
	out := "["
	for i, v := range vals {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", v)
	}
	return out + "]"
}

func jsonFloats(vals []float64) string {
	out := "["
	for i, v := range vals {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%g", v)
	}
	return out + "]"
}

func unixDay(d int) int64 {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d).Unix()
}

func TestFetchDailyHistory(t *testing.T) {
	var gotPath, gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		fmt.Fprint(w, chartPayload(
			[]int64{unixDay(0), unixDay(1), unixDay(2)},
			[]float64{100, 102, 104},
			[]float64{103, 105, 107},
			[]float64{99, 101, 103},
			[]float64{102, 104, 106},
			[]int64{1000, 1100, 1200},
		))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL+"/", zerolog.Nop())

	points, err := client.FetchDailyHistory(context.Background(), "ETH", 14)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "/ETH", gotPath)
	assert.Equal(t, "1mo", gotRange)

	assert.Equal(t, 102.0, points[0].Close)
	assert.Equal(t, 1200.0, points[2].Volume)
	assert.True(t, points[0].Date.Before(points[1].Date), "points must be oldest first")
}

func TestFetchDailyHistorySkipsNullRowsAndDuplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Middle row is a null row (all zeros); last two timestamps share a day
		fmt.Fprint(w, chartPayload(
			[]int64{unixDay(0), unixDay(1), unixDay(2), unixDay(2) + 3600},
			[]float64{100, 0, 104, 105},
			[]float64{103, 0, 107, 108},
			[]float64{99, 0, 103, 104},
			[]float64{102, 0, 106, 107},
			[]int64{1000, 0, 1200, 1300},
		))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL+"/", zerolog.Nop())

	points, err := client.FetchDailyHistory(context.Background(), "ETH", 14)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 102.0, points[0].Close)
	assert.Equal(t, 106.0, points[1].Close)
}

func TestFetchDailyHistoryRangeSelection(t *testing.T) {
	tests := []struct {
		lookbackDays int
		want         string
	}{
		{3, "5d"},
		{14, "1mo"},
		{30, "3mo"},
		{90, "6mo"},
		{365, "1y"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rangeForLookback(tt.lookbackDays), "lookback %d", tt.lookbackDays)
	}
}

func TestFetchDailyHistoryServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL+"/", zerolog.Nop())

	_, err := client.FetchDailyHistory(context.Background(), "ETH", 14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestFetchDailyHistoryChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": [], "error": {"code": "Not Found", "description": "No data found"}}}`)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL+"/", zerolog.Nop())

	_, err := client.FetchDailyHistory(context.Background(), "NOPE", 14)
	require.Error(t, err)
}

func TestFetchDailyHistoryContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL+"/", zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchDailyHistory(ctx, "ETH", 14)
	require.Error(t, err)
}
