package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

const maxResponseBytes = 4 << 20

// statusError 非 200 响应
type statusError struct {
	StatusCode int
	Body       []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// doJSON 发送请求并解码 JSON 响应，网络错误、429 与 5xx 会重试
func doJSON(ctx context.Context, client *http.Client, newRequest func(ctx context.Context) (*http.Request, error), out any) error {
	return retry.Do(
		func() error {
			req, err := newRequest(ctx)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				se := &statusError{StatusCode: resp.StatusCode, Body: body}
				if retryableStatus(resp.StatusCode) {
					return se
				}
				return retry.Unrecoverable(se)
			}
			if err := json.Unmarshal(body, out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
