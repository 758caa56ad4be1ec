package walletcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// ErrRejected wraps errors reported by the wallet core for a request it understood.
var ErrRejected = errors.New("wallet core rejected request")

// httpClient is a port.WalletCore talking JSON to a wallet-core daemon.
type httpClient struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewHTTPClient creates a new wallet-core HTTP client.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) port.WalletCore {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &httpClient{
		client:  &fasthttp.Client{Name: "wallet-engine"},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("WalletCoreClient"),
	}
}

func (c *httpClient) GetBalances(ctx context.Context) ([]entity.BalanceRecord, error) {
	var out balancesResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/balances", nil, &out); err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}
	return out.Balances, nil
}

func (c *httpClient) GetTransactionHistory(ctx context.Context) ([]entity.TransactionRecord, error) {
	var out transactionsResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/transactions", nil, &out); err != nil {
		return nil, fmt.Errorf("get transaction history: %w", err)
	}
	return out.Transactions, nil
}

func (c *httpClient) GetAddresses(ctx context.Context) (map[string]string, error) {
	var out addressesResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/addresses", nil, &out); err != nil {
		return nil, fmt.Errorf("get addresses: %w", err)
	}
	if out.Addresses == nil {
		out.Addresses = map[string]string{}
	}
	return out.Addresses, nil
}

func (c *httpClient) SendTransfer(ctx context.Context, intent entity.TransferIntent) (entity.SubmissionResult, error) {
	body := transferRequest{
		IntentID:         intent.ID,
		Network:          intent.NetworkID,
		AccountIndex:     intent.AccountIndex,
		Amount:           intent.Amount.String(),
		RecipientAddress: intent.RecipientAddress,
		Denomination:     intent.Denomination,
	}
	var out transferResponse
	if err := c.do(ctx, fasthttp.MethodPost, "/transfers", body, &out); err != nil {
		return entity.SubmissionResult{}, fmt.Errorf("send transfer: %w", err)
	}
	if out.TransactionHash == "" {
		return entity.SubmissionResult{}, errors.New("send transfer: wallet core returned no transaction hash")
	}
	return entity.SubmissionResult{
		IntentID:        intent.ID,
		TransactionHash: out.TransactionHash,
		SubmittedAt:     out.SubmittedAt,
	}, nil
}

func (c *httpClient) QuoteTransfer(ctx context.Context, req entity.FeeRequest) (entity.Fee, error) {
	body := quoteRequest{Network: req.NetworkID, Denomination: req.Denomination}
	if req.Amount != nil {
		body.Amount = req.Amount.String()
	}
	var out quoteResponse
	if err := c.do(ctx, fasthttp.MethodPost, "/transfers/quote", body, &out); err != nil {
		return entity.Fee{}, fmt.Errorf("quote transfer: %w", err)
	}
	return entity.Fee{Amount: out.Fee, Denomination: strings.ToLower(out.FeeDenomination)}, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, in, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	requestURL := c.baseURL + path

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	c.logger.Debug("Calling wallet core", zap.String("method", method), zap.String("url", requestURL))

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute request to wallet core", zap.String("url", requestURL), zap.Error(err))
		return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		var apiErr errorResponse
		_ = json.Unmarshal(rawBody, &apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = strings.TrimSpace(string(rawBody))
		}
		c.logger.Warn("Wallet core request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.String("message", msg))
		return fmt.Errorf("%w: status %d: %s", ErrRejected, status, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rawBody, out); err != nil {
		c.logger.Error("Failed to unmarshal wallet core response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return fmt.Errorf("failed to unmarshal response from %s: %w", requestURL, err)
	}
	return nil
}
