package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskwatch/internal/domain"
)

// Client fetches daily price history from the Yahoo Finance chart API
type Client struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://query1.finance.yahoo.com/v8/finance/chart/",
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint, used in tests
func NewClientWithBaseURL(baseURL string, log zerolog.Logger) *Client {
	c := NewClient(log)
	c.baseURL = baseURL
	return c
}

// rangeForLookback converts a lookback in days to a Yahoo chart range token
func rangeForLookback(lookbackDays int) string {
	switch {
	case lookbackDays <= 5:
		return "5d"
	case lookbackDays <= 28:
		return "1mo"
	case lookbackDays <= 88:
		return "3mo"
	case lookbackDays <= 178:
		return "6mo"
	default:
		return "1y"
	}
}

// FetchDailyHistory fetches daily OHLCV history covering at least
// lookbackDays observations, oldest first, with null rows dropped and
// duplicate dates collapsed.
func (c *Client) FetchDailyHistory(ctx context.Context, asset string, lookbackDays int) ([]domain.PricePoint, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", rangeForLookback(lookbackDays))

	reqURL := c.baseURL + url.QueryEscape(asset) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Yahoo rejects requests without a browser-like user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yahoo chart API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart API error: %v", result.Chart.Error)
	}
	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data returned for %s", asset)
	}

	chartData := result.Chart.Result[0]
	if len(chartData.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data returned for %s", asset)
	}
	quote := chartData.Indicators.Quote[0]

	seen := make(map[string]bool)
	var points []domain.PricePoint
	for i, ts := range chartData.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			continue
		}
		// Yahoo sometimes returns null rows decoded as all zeros
		if quote.Open[i] == 0 && quote.High[i] == 0 && quote.Low[i] == 0 && quote.Close[i] == 0 {
			continue
		}

		date := time.Unix(ts, 0).UTC()
		day := date.Format("2006-01-02")
		if seen[day] {
			continue
		}
		seen[day] = true

		volume := 0.0
		if i < len(quote.Volume) {
			volume = float64(quote.Volume[i])
		}

		points = append(points, domain.PricePoint{
			Date:   date,
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: volume,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	c.log.Debug().
		Str("asset", asset).
		Int("lookback_days", lookbackDays).
		Int("count", len(points)).
		Msg("Fetched daily history")

	return points, nil
}
