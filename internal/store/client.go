package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/skudeck/internal/catalog"
	"github.com/wonny/skudeck/internal/importer"
	"github.com/wonny/skudeck/pkg/config"
	"github.com/wonny/skudeck/pkg/httputil"
	"github.com/wonny/skudeck/pkg/logger"
	"github.com/wonny/skudeck/pkg/redis"
)

// Client talks to the remote SKU store.
// ⭐ SSOT: SKU 스토어 API 호출은 이 클라이언트에서만
// The store owns all record persistence and the scoring engine; this client
// reads its output and round-trips edits through it.
type Client struct {
	baseURL  string
	http     *httputil.Client
	cache    *redis.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// New creates a store client. The cache may be nil or disabled; it only
// fronts ListSkus with a short TTL and is invalidated on every mutation.
func New(cfg *config.Config, log *logger.Logger, cache *redis.Cache) *Client {
	httpClient := httputil.New(cfg, log).WithRateLimit(cfg.Store.RateLimit)

	cacheTTL := cfg.Store.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = redis.TTLShort
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.Store.BaseURL, "/"),
		http:     httpClient,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// ListSkus fetches the full record collection, including nested score caches
func (c *Client) ListSkus(ctx context.Context) ([]catalog.Sku, error) {
	var skus []catalog.Sku

	if c.cache != nil {
		found, err := c.cache.Get(ctx, redis.SkuCollectionKey(), &skus)
		if err == nil && found {
			return skus, nil
		}
	}

	if err := c.getJSON(ctx, "/skus/", &skus); err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, redis.SkuCollectionKey(), skus, c.cacheTTL)
	}

	return skus, nil
}

// UpdateSku replaces a record and returns the store's updated copy,
// including the freshly recomputed score cache.
func (c *Client) UpdateSku(ctx context.Context, skuID string, sku catalog.Sku) (*catalog.Sku, error) {
	resp, err := c.http.PutJSON(ctx, c.baseURL+"/skus/"+url.PathEscape(skuID), sku)
	if err != nil {
		return nil, fmt.Errorf("update sku %s: %w", skuID, err)
	}

	var updated catalog.Sku
	if err := c.decodeJSON(resp, &updated); err != nil {
		return nil, fmt.Errorf("update sku %s: %w", skuID, err)
	}

	c.invalidate(ctx)
	return &updated, nil
}

// ExportSkus requests a spreadsheet of the given records and returns the
// binary payload as-is.
func (c *Client) ExportSkus(ctx context.Context, skuIDs []string) ([]byte, error) {
	resp, err := c.http.PostJSON(ctx, c.baseURL+"/skus/export", skuIDs)
	if err != nil {
		return nil, fmt.Errorf("export skus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("export skus: %w", c.apiError(resp))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("export skus: read payload: %w", err)
	}
	return payload, nil
}

// ListMarkets fetches the configured target markets. Market setup rarely
// changes, so the list is cached for a medium TTL.
func (c *Client) ListMarkets(ctx context.Context) ([]Market, error) {
	var markets []Market

	if c.cache == nil {
		if err := c.getJSON(ctx, "/markets/", &markets); err != nil {
			return nil, fmt.Errorf("list markets: %w", err)
		}
		return markets, nil
	}

	err := c.cache.GetOrSet(ctx, redis.MarketListKey(), &markets, redis.TTLMedium, func() (interface{}, error) {
		var fresh []Market
		if err := c.getJSON(ctx, "/markets/", &fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	return markets, nil
}

// ListChannels fetches the channel baseline configurations, cached like
// the market list and invalidated on UpdateChannel.
func (c *Client) ListChannels(ctx context.Context) ([]ChannelConfig, error) {
	var channels []ChannelConfig

	if c.cache == nil {
		if err := c.getJSON(ctx, "/channels/", &channels); err != nil {
			return nil, fmt.Errorf("list channels: %w", err)
		}
		return channels, nil
	}

	err := c.cache.GetOrSet(ctx, redis.ChannelListKey(), &channels, redis.TTLMedium, func() (interface{}, error) {
		var fresh []ChannelConfig
		if err := c.getJSON(ctx, "/channels/", &fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return channels, nil
}

// UpdateChannel updates one channel's baseline configuration
func (c *Client) UpdateChannel(ctx context.Context, name string, cfg ChannelConfig) error {
	resp, err := c.http.PutJSON(ctx, c.baseURL+"/channels/"+url.PathEscape(name), cfg)
	if err != nil {
		return fmt.Errorf("update channel %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update channel %s: %w", name, c.apiError(resp))
	}

	// Channel edits feed the store's rescoring, so both caches go stale
	c.invalidate(ctx, redis.ChannelListKey())
	return nil
}

// CTSMatrix fetches the cost-to-serve percentage matrix
func (c *Client) CTSMatrix(ctx context.Context) ([]CTSCell, error) {
	var cells []CTSCell
	if err := c.getJSON(ctx, "/channels/cts/", &cells); err != nil {
		return nil, fmt.Errorf("cts matrix: %w", err)
	}
	return cells, nil
}

// UpdateCTS updates one cost-to-serve matrix cell
func (c *Client) UpdateCTS(ctx context.Context, market, channel string, totalPct float64) error {
	path := fmt.Sprintf("%s/channels/cts/%s/%s", c.baseURL, url.PathEscape(market), url.PathEscape(channel))
	resp, err := c.http.PutJSON(ctx, path, map[string]float64{"total_cts_pct": totalPct})
	if err != nil {
		return fmt.Errorf("update cts %s/%s: %w", market, channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update cts %s/%s: %w", market, channel, c.apiError(resp))
	}

	c.invalidate(ctx)
	return nil
}

// GetSettings fetches the global weight/adjustment settings
func (c *Client) GetSettings(ctx context.Context) (Settings, error) {
	var settings Settings
	if err := c.getJSON(ctx, "/settings/", &settings); err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings bulk-updates global settings
func (c *Client) UpdateSettings(ctx context.Context, settings Settings) error {
	resp, err := c.http.PutJSON(ctx, c.baseURL+"/settings/", settings)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update settings: %w", c.apiError(resp))
	}

	c.invalidate(ctx)
	return nil
}

// ExtractHeaders submits a spreadsheet and returns its raw column headers
func (c *Client) ExtractHeaders(ctx context.Context, filename string, contents []byte) ([]string, error) {
	body, contentType, err := multipartBody(filename, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("extract headers: %w", err)
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/upload/headers", contentType, body)
	if err != nil {
		return nil, fmt.Errorf("extract headers: %w", err)
	}

	var payload headersResponse
	if err := c.decodeJSON(resp, &payload); err != nil {
		return nil, fmt.Errorf("extract headers: %w", err)
	}
	return payload.Headers, nil
}

// Import submits the spreadsheet with its confirmed column mapping.
// A non-empty defaultMarket is applied to every imported row, superseding
// any mapped per-row target market.
func (c *Client) Import(ctx context.Context, filename string, contents []byte, mapping map[string]string, defaultMarket string) (importer.ImportStats, error) {
	fields := map[string]string{}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return importer.ImportStats{}, fmt.Errorf("import: marshal mapping: %w", err)
	}
	fields["mapping"] = string(mappingJSON)

	if defaultMarket != "" {
		fields["default_market"] = defaultMarket
	}

	body, contentType, err := multipartBody(filename, contents, fields)
	if err != nil {
		return importer.ImportStats{}, fmt.Errorf("import: %w", err)
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/upload/", contentType, body)
	if err != nil {
		return importer.ImportStats{}, fmt.Errorf("import: %w", err)
	}

	var payload importResponse
	if err := c.decodeJSON(resp, &payload); err != nil {
		return importer.ImportStats{}, fmt.Errorf("import: %w", err)
	}

	c.invalidate(ctx)
	return importer.ImportStats{Skus: payload.Stats.Skus}, nil
}

// getJSON performs a GET and decodes the JSON response into dest
func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	resp, err := c.http.Get(ctx, c.baseURL+path)
	if err != nil {
		return err
	}
	return c.decodeJSON(resp, dest)
}

// decodeJSON consumes the response body. Non-2xx statuses become an
// *APIError; a non-JSON body on a JSON endpoint becomes ErrInvalidResponse
// rather than a confusing unmarshal failure.
func (c *Client) decodeJSON(resp *http.Response, dest interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiErrorFromBody(resp, body)
	}

	if !isJSONResponse(resp, body) {
		detail := htmlErrorDetail(body)
		c.logger.WithFields(map[string]interface{}{
			"url":          resp.Request.URL.String(),
			"content_type": resp.Header.Get("Content-Type"),
			"detail":       detail,
		}).Error("Non-JSON response from SKU store")
		if detail != "" {
			return fmt.Errorf("%w: %s", ErrInvalidResponse, detail)
		}
		return ErrInvalidResponse
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// apiError builds an *APIError from an open response, consuming the body
func (c *Client) apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return c.apiErrorFromBody(resp, body)
}

func (c *Client) apiErrorFromBody(resp *http.Response, body []byte) error {
	detail := ""

	// FastAPI-style error payloads carry {"detail": "..."}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	} else if d := htmlErrorDetail(body); d != "" {
		detail = d
	}

	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}

// invalidate drops the cached SKU snapshot after any mutation, plus any
// extra keys the mutation made stale
func (c *Client) invalidate(ctx context.Context, extra ...string) {
	if c.cache == nil {
		return
	}
	for _, key := range append([]string{redis.SkuCollectionKey()}, extra...) {
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.WithFields(map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			}).Warn("Failed to invalidate cache")
		}
	}
}

func isJSONResponse(resp *http.Response, body []byte) bool {
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		return true
	}

	// Some backends omit the header; sniff the payload
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// multipartBody builds a multipart form with one file part plus extra fields
func multipartBody(filename string, contents []byte, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(contents); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}
