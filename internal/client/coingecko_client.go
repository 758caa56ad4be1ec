package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"wallet_engine/internal/app/port"
	cgtypes "wallet_engine/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// coinGeckoClientImpl is a port.RateFeed backed by the CoinGecko simple price API.
type coinGeckoClientImpl struct {
	client           *fasthttp.Client
	baseURL          string
	apiKey           string
	timeout          time.Duration
	logger           *zap.Logger
	limiter          *rate.Limiter
	maxIDsPerRequest int
}

// NewCoinGeckoClient creates a new CoinGecko rate feed. requestsPerMinute
// throttles outgoing calls; maxIDsPerRequest bounds a single batch.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, requestsPerMinute, maxIDsPerRequest int, logger *zap.Logger) port.RateFeed {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &coinGeckoClientImpl{
		client:           &fasthttp.Client{Name: "wallet-engine"},
		baseURL:          strings.TrimRight(baseURL, "/"),
		apiKey:           apiKey,
		timeout:          timeout,
		logger:           logger.Named("CoinGeckoClient"),
		limiter:          rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		maxIDsPerRequest: maxIDsPerRequest,
	}
}

func (c *coinGeckoClientImpl) Name() string { return "coingecko" }

// FetchRates implements port.RateFeed.
func (c *coinGeckoClientImpl) FetchRates(ctx context.Context, feedIDs []string, fiat string) (map[string]decimal.Decimal, error) {
	if len(feedIDs) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	if c.maxIDsPerRequest > 0 && len(feedIDs) > c.maxIDsPerRequest {
		c.logger.Warn("Number of feed ids exceeds maxIDsPerRequest",
			zap.Int("requestedCount", len(feedIDs)),
			zap.Int("maxAllowed", c.maxIDsPerRequest))
		return nil, fmt.Errorf("number of feed ids (%d) exceeds max ids per request (%d)", len(feedIDs), c.maxIDsPerRequest)
	}
	fiat = strings.ToLower(fiat)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	query := url.Values{}
	query.Set("ids", strings.Join(feedIDs, ","))
	query.Set("vs_currencies", fiat)
	requestURL := c.baseURL + "/simple/price?" + query.Encode()

	c.logger.Debug("Requesting simple prices from CoinGecko", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to CoinGecko", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to CoinGecko (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()

	if resp.StatusCode() != fasthttp.StatusOK {
		var apiErr cgtypes.APIError
		_ = json.Unmarshal(rawBody, &apiErr)
		c.logger.Error("CoinGecko API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.String("message", apiErr.Message()),
		)
		return nil, fmt.Errorf("CoinGecko API request failed with status %d: %s", resp.StatusCode(), apiErr.Message())
	}

	var body cgtypes.SimplePriceResponse
	if err := json.Unmarshal(rawBody, &body); err != nil {
		c.logger.Error("Failed to unmarshal CoinGecko response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to unmarshal CoinGecko response: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(body))
	for id, byFiat := range body {
		price, ok := byFiat[fiat]
		if !ok {
			continue
		}
		rates[id] = price
	}

	if len(rates) < len(feedIDs) {
		c.logger.Warn("CoinGecko returned fewer prices than requested",
			zap.Int("requested", len(feedIDs)),
			zap.Int("returned", len(rates)),
			zap.String("fiat", fiat))
	}

	c.logger.Debug("Successfully fetched CoinGecko prices", zap.Int("count", len(rates)), zap.String("fiat", fiat))
	return rates, nil
}
