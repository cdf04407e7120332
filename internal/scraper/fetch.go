package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxResponseBytes = 5 << 20

// RetryPolicy controls transient-failure handling for portal requests.
// Delay grows by Multiplier per attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, Multiplier: 2.0}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	if d <= 0 {
		d = 300 * time.Millisecond
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * mult)
	}
	return d
}

// Fetcher is a shared HTTP client for the JSON portal adapters. It enforces a
// minimum delay between requests against the same source.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	policy  RetryPolicy
}

func NewFetcher(minDelay time.Duration, policy RetryPolicy) *Fetcher {
	if minDelay <= 0 {
		minDelay = time.Second
	}
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: 25 * time.Second},
		limiter: rate.NewLimiter(rate.Every(minDelay), 1),
		policy:  policy,
	}
}

func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("nil fetcher")
	}
	var lastErr error
	for attempt := 0; attempt < f.policy.MaxAttempts; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		body, err := f.doOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if attempt+1 < f.policy.MaxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.policy.delay(attempt)):
			}
		}
	}
	return nil, lastErr
}

func (f *Fetcher) doOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range httpHeaders() {
		req.Header.Set(k, v)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return readAllLimit(resp.Body, maxResponseBytes)
}

func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, out any) error {
	body, err := f.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func httpHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "AssignmentScanner/0.1",
		"Accept-Language": "sv-SE,sv;q=0.9,en;q=0.8",
	}
}

func readAllLimit(r io.Reader, max int64) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: max}
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if lr.N <= 0 {
		return nil, fmt.Errorf("response too large")
	}
	return b, nil
}

func hostFromBaseURL(base, fallback string) string {
	base = strings.TrimSpace(base)
	u, err := url.Parse(base)
	if err != nil {
		return fallback
	}
	host := u.Host
	if host == "" {
		return fallback
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func pickNonEmpty(a, b string) string {
	a = strings.TrimSpace(a)
	if a != "" {
		return a
	}
	return strings.TrimSpace(b)
}
