package prices

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"BoostPull/internal/domain/models"
	drepo "BoostPull/internal/domain/repository"
	pkghttp "BoostPull/pkg/http"
	"BoostPull/pkg/util"
)

// Client fetches the asset universe and spot prices from the market data API.
// Requests are rate limited client-side and wrapped in a circuit breaker so a
// degraded upstream fails fast instead of stalling cycle completion.
type Client struct {
	http    *pkghttp.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// Option configures Client.
type Option func(*Client)

// WithRateLimit sets the request rate and burst.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithAPIKey sets the API key sent with each request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// New creates a market data client.
func New(httpClient *pkghttp.Client, baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(0.5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "market-data",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return c
}

type marketRow struct {
	ID        string   `json:"id"`
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Price     float64  `json:"current_price"`
	MarketCap float64  `json:"market_cap"`
	Volume24h float64  `json:"total_volume"`
	Change24h float64  `json:"price_change_percentage_24h"`
	Change7d  *float64 `json:"price_change_percentage_7d_in_currency"`
	ATH       float64  `json:"ath"`
	ATL       float64  `json:"atl"`
	ATHDate   *string  `json:"ath_date"`
	ATLDate   *string  `json:"atl_date"`
}

// TopAssets returns the top assets by market cap, implements MarketData.
func (c *Client) TopAssets(ctx context.Context, limit int) ([]models.AssetMetrics, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []marketRow
	err := c.call(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/coins/markets",
		QueryParams: map[string][]string{
			"vs_currency":             {"usd"},
			"order":                   {"market_cap_desc"},
			"per_page":                {strconv.Itoa(limit)},
			"page":                    {"1"},
			"price_change_percentage": {"7d"},
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch top assets: %w", err)
	}

	now := time.Now().UTC()
	assets := make([]models.AssetMetrics, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" || r.Price <= 0 {
			continue
		}
		m := models.AssetMetrics{
			ID:         r.ID,
			Symbol:     strings.ToUpper(r.Symbol),
			Name:       r.Name,
			Price:      r.Price,
			MarketCap:  r.MarketCap,
			Volume24h:  r.Volume24h,
			Change24h:  r.Change24h,
			ATH:        r.ATH,
			ATL:        r.ATL,
			CapturedAt: now,
		}
		if r.Change7d != nil {
			m.Change7d = *r.Change7d
		}
		m.ATHDate = parseAPITime(r.ATHDate)
		m.ATLDate = parseAPITime(r.ATLDate)
		assets = append(assets, m)
	}
	return assets, nil
}

// CurrentPrices returns spot prices keyed by asset id, implements
// PriceLookup. Assets the upstream does not know are absent from the result.
func (c *Client) CurrentPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}

	var raw map[string]struct {
		USD float64 `json:"usd"`
	}
	err := c.call(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/simple/price",
		QueryParams: map[string][]string{
			"ids":           {strings.Join(ids, ",")},
			"vs_currencies": {"usd"},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	prices := make(map[string]float64, len(raw))
	for id, p := range raw {
		if p.USD > 0 {
			prices[id] = p.USD
		}
	}
	return prices, nil
}

func (c *Client) call(ctx context.Context, opts *pkghttp.RequestOptions, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if c.apiKey != "" {
		if opts.Headers == nil {
			opts.Headers = map[string]string{}
		}
		opts.Headers["x-api-key"] = c.apiKey
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.http.SendAndParse(ctx, opts, dest)
	})
	return err
}

func parseAPITime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := util.ParseTime(*s)
	if !ok {
		return nil
	}
	return &t
}

var (
	_ drepo.MarketData  = (*Client)(nil)
	_ drepo.PriceLookup = (*Client)(nil)
)
