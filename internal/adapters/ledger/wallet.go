package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// Stay under the wallet service's documented 100 req/s per client.
	walletRatePerSec = 60

	maxRetries    = 3
	baseRetryWait = 250 * time.Millisecond
)

// WalletClient talks to an external wallet service over HTTP. Withdraw
// and deposit carry an idempotency key, so a retried request that
// already landed moves funds once; the wallet dedupes on the key.
type WalletClient struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewWalletClient creates a rate-limited client for the given base URL.
func NewWalletClient(base string) *WalletClient {
	return &WalletClient{
		http:    &http.Client{Timeout: 5 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(walletRatePerSec, 10),
	}
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

type movementRequest struct {
	Participant    string  `json:"participant"`
	Amount         float64 `json:"amount"`
	IdempotencyKey string  `json:"idempotency_key"`
}

type movementResponse struct {
	OK bool `json:"ok"`
}

func (c *WalletClient) Balance(ctx context.Context, participant uuid.UUID) (float64, error) {
	var out balanceResponse
	url := fmt.Sprintf("%s/wallet/%s/balance", c.base, participant)
	if err := c.get(ctx, url, &out); err != nil {
		return 0, fmt.Errorf("wallet balance: %w", err)
	}
	return out.Balance, nil
}

func (c *WalletClient) HasBalance(ctx context.Context, participant uuid.UUID, amount float64) (bool, error) {
	balance, err := c.Balance(ctx, participant)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

func (c *WalletClient) Withdraw(ctx context.Context, participant uuid.UUID, amount float64) error {
	return c.move(ctx, "/wallet/withdraw", participant, amount)
}

func (c *WalletClient) Deposit(ctx context.Context, participant uuid.UUID, amount float64) error {
	return c.move(ctx, "/wallet/deposit", participant, amount)
}

func (c *WalletClient) move(ctx context.Context, path string, participant uuid.UUID, amount float64) error {
	req := movementRequest{
		Participant:    participant.String(),
		Amount:         amount,
		IdempotencyKey: uuid.NewString(),
	}
	var out movementResponse
	if err := c.post(ctx, c.base+path, req, &out); err != nil {
		return fmt.Errorf("wallet %s: %w", path, err)
	}
	if !out.OK {
		return fmt.Errorf("wallet %s: rejected", path)
	}
	return nil
}

func (c *WalletClient) get(ctx context.Context, url string, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

func (c *WalletClient) post(ctx context.Context, url string, body, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// doWithRetry runs the request with exponential backoff. Only 429 and
// 5xx are retried; 4xx means the wallet said no and retrying will not
// change its mind.
func (c *WalletClient) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("status %d after %d retries", resp.StatusCode, maxRetries)
			}
			slog.Warn("wallet request retrying", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("wallet error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

func (c *WalletClient) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}
