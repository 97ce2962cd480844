package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// jsonEndpoint posts JSON payloads to one embedding endpoint.
type jsonEndpoint struct {
	client  *http.Client
	url     string
	headers map[string]string
}

func newJSONEndpoint(url string, timeout time.Duration, headers map[string]string) jsonEndpoint {
	return jsonEndpoint{
		client:  &http.Client{Timeout: timeout},
		url:     url,
		headers: headers,
	}
}

// post sends payload and returns the status code with the raw response body.
func (e jsonEndpoint) post(ctx context.Context, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}

func statusError(provider string, status int, raw []byte) error {
	return fmt.Errorf("%s embed request failed (%d): %s", provider, status, strings.TrimSpace(string(raw)))
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func waitOrCancel(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// batches splits texts into consecutive slices of at most size elements.
func batches(texts []string, size int) [][]string {
	var out [][]string
	for i := 0; i < len(texts); i += size {
		end := i + size
		if end > len(texts) {
			end = len(texts)
		}
		out = append(out, texts[i:end])
	}
	return out
}

// dimension is a configured vector size, or the size observed on the first
// response when none was configured.
type dimension struct {
	configured int
	observed   atomic.Int64
}

func (d *dimension) get() int {
	if d.configured > 0 {
		return d.configured
	}
	return int(d.observed.Load())
}

func (d *dimension) observe(vecs [][]float32) {
	if d.configured <= 0 && len(vecs) > 0 {
		d.observed.CompareAndSwap(0, int64(len(vecs[0])))
	}
}
