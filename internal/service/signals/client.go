package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"BoostPull/internal/domain/models"
	drepo "BoostPull/internal/domain/repository"
	svccache "BoostPull/internal/service/cache"
	pkghttp "BoostPull/pkg/http"
)

// Client fetches optional enrichment signals for an asset. Responses are
// cached with a TTL since the upstream aggregates slowly-moving sources
// (news, social, trends, fear/greed).
type Client struct {
	http    *pkghttp.Client
	baseURL string
	cache   svccache.BytesCache
	ttl     time.Duration
}

// New creates a signals client. A nil cache disables caching.
func New(httpClient *pkghttp.Client, baseURL string, c svccache.BytesCache, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   c,
		ttl:     ttl,
	}
}

// Signals returns enrichment for one asset, implements SignalsProvider.
// Upstream failures degrade to nil signals rather than failing the caller;
// scoring treats nil as neutral.
func (c *Client) Signals(ctx context.Context, assetID string) (*models.ExternalSignals, error) {
	if assetID == "" {
		return nil, fmt.Errorf("asset id is required")
	}

	key := "signals:" + assetID
	if c.cache != nil {
		if b, ok, _ := c.cache.GetBytes(key); ok {
			var s models.ExternalSignals
			if err := json.Unmarshal(b, &s); err == nil {
				return &s, nil
			}
		}
	}

	var s models.ExternalSignals
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/signals/" + assetID,
	}, &s)
	if err != nil {
		return nil, nil
	}

	if c.cache != nil {
		if b, err := json.Marshal(&s); err == nil {
			_ = c.cache.SetBytes(key, b, c.ttl)
		}
	}
	return &s, nil
}

var _ drepo.SignalsProvider = (*Client)(nil)
