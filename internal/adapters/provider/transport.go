package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vietcart/logistics/internal/domain/shared"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxAttempts = 3
	defaultBackoffBase = time.Second
)

// carrierTransport is the HTTP caller shared by the external carrier
// adapters. Transient failures (network errors, 429, 5xx) are retried with
// exponential backoff (1s, 2s, 4s at the defaults); 4xx responses are
// carrier rejections and returned immediately.
type carrierTransport struct {
	httpClient  *http.Client
	baseURL     string
	maxAttempts int
	backoffBase time.Duration
	clock       shared.Clock
	headers     map[string]string
}

func newCarrierTransport(baseURL string, maxAttempts int, backoffBase time.Duration, clock shared.Clock, headers map[string]string) *carrierTransport {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if backoffBase <= 0 {
		backoffBase = defaultBackoffBase
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &carrierTransport{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     baseURL,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		clock:       clock,
		headers:     headers,
	}
}

// request performs one logical carrier call, retries included. The result,
// when non-nil, receives the decoded JSON response body.
func (t *carrierTransport) request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := t.baseURL + path

	var reqBytes []byte
	if body != nil {
		var err error
		reqBytes, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < t.maxAttempts; attempt++ {
		if attempt > 0 {
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			// 1s, 2s, 4s at the default base
			t.clock.Sleep(t.backoffBase * time.Duration(1<<(attempt-1)))
		}

		var reqBody io.Reader
		if reqBytes != nil {
			reqBody = bytes.NewReader(reqBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range t.headers {
			req.Header.Set(k, v)
		}

		resp, err := t.httpClient.Do(req)
		if err != nil {
			lastErr = shared.WrapError(shared.KindProviderError, err, "carrier unreachable")
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = shared.WrapError(shared.KindProviderError, readErr, "failed to read carrier response")
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = shared.NewError(shared.KindProviderError, "carrier error (status %d)", resp.StatusCode)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return shared.NewError(shared.KindProviderError, "carrier rejected request (status %d): %s", resp.StatusCode, string(respBody))
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return shared.WrapError(shared.KindProviderError, err, "failed to decode carrier response")
			}
		}
		return nil
	}

	return fmt.Errorf("carrier call failed after %d attempts: %w", t.maxAttempts, lastErr)
}
