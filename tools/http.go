package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	httpMaxAttempts = 3
	httpRetryDelay  = 500 * time.Millisecond
)

// doJSON issues an HTTP request with a JSON body (may be nil), retrying
// transient failures with backoff, and decodes the JSON response into out.
// Non-2xx statuses are failures; 4xx statuses are not retried since
// repeating a rejected request cannot help.
func doJSON(ctx context.Context, logger *slog.Logger, client *http.Client, method, url string, headers map[string]string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	var raw []byte
	attempt := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			failure := fmt.Errorf("%w: %s %s: status %d", ErrRequestFailed, method, url, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return &permanentError{err: failure}
			}
			return failure
		}

		raw = data
		return nil
	}

	if err := retryRequest(ctx, logger, attempt, httpMaxAttempts, httpRetryDelay); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
