// Package clients implements the three external data callers (C3): the
// borrow-rate source, the volatility source, and the event-risk source.
// Each wraps the teacher's httpclient.ClientPool for retry/backoff, a
// sony/gobreaker breaker per endpoint, and a per-host rate limiter. A network
// error, an exhausted 5xx retry, or an open breaker is returned to the caller
// as a Go error; the clients do not substitute a fallback value themselves,
// and results carry SourceLive only. The resolver applies the fallback.
package clients

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sawpanic/locatepricer/infra/breakers"
	"github.com/sawpanic/locatepricer/internal/infrastructure/httpclient"
	"github.com/sawpanic/locatepricer/internal/net/ratelimit"
)

// Source tags where a result's value ultimately came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceRetry    Source = "retry"
	SourceFallback Source = "fallback"
)

// Config holds the shared dial/retry/breaker parameters for one endpoint.
// BreakerFailureThreshold and BreakerCooldown are not applied: every
// endpoint's breaker uses the fixed settings of breakers.New (trip after 3
// consecutive failures, or a failure rate above 5% over at least 20
// requests; stay open 60s).
type Config struct {
	BaseURL                 string
	APIKey                  string // sent as a Bearer token; empty means unauthenticated
	RequestTimeout          time.Duration
	MaxRetries              int
	BackoffBase             time.Duration
	BackoffMax              time.Duration
	BreakerFailureThreshold int
	BreakerCooldown         time.Duration
	RateLimitRPS            float64
	RateLimitBurst          int
}

// endpoint bundles the pooled HTTP client, breaker, and rate limiter shared
// by the three concrete source clients.
type endpoint struct {
	pool    *httpclient.ClientPool
	breaker *breakers.Breaker
	limiter *ratelimit.Limiter
	baseURL string
	apiKey  string
}

func newEndpoint(name string, cfg Config) *endpoint {
	pool := httpclient.NewClientPool(httpclient.ClientConfig{
		MaxConcurrency: 50,
		RequestTimeout: cfg.RequestTimeout,
		JitterRange:    [2]int{0, 20},
		MaxRetries:     cfg.MaxRetries,
		BackoffBase:    cfg.BackoffBase,
		BackoffMax:     cfg.BackoffMax,
		UserAgent:      "locatepricer/1.0 (" + name + ")",
	})
	return &endpoint{
		pool:    pool,
		breaker: breakers.New(name),
		limiter: ratelimit.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// rawResponse carries a completed HTTP exchange through the breaker
// boundary. A 4xx is folded into this successful result (not a breaker
// error) since it reflects a caller-side condition like "ticker not found",
// not upstream instability.
type rawResponse struct {
	status int
	body   []byte
}

// fetch executes req through the endpoint's rate limiter, circuit breaker,
// and retrying pool. Only network errors and 5xx count against the
// breaker's failure budget; 2xx and 4xx both return cleanly with their
// status so the caller can branch on "not found" versus "unreachable".
func (e *endpoint) fetch(req *http.Request) (*rawResponse, error) {
	ctx := req.Context()
	if err := e.limiter.Wait(ctx, req.URL.Host); err != nil {
		return nil, err
	}
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	result, err := e.breaker.Execute(func() (interface{}, error) {
		resp, err := e.pool.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
		}
		return &rawResponse{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*rawResponse), nil
}

// getJSON performs a GET against path and decodes a 2xx body into out. It
// returns (found=false, err=nil) on a 404, and a non-nil err for anything
// else unexpected (4xx other than 404, decode failure). Network/5xx/breaker
// failures come back as a non-nil err from fetch itself.
func (e *endpoint) getJSON(req *http.Request, out interface{}) (found bool, err error) {
	resp, err := e.fetch(req)
	if err != nil {
		return false, err
	}
	if resp.status == http.StatusNotFound {
		return false, nil
	}
	if resp.status >= 400 {
		return false, fmt.Errorf("upstream status %d", resp.status)
	}
	if len(resp.body) == 0 {
		return false, fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}

func (e *endpoint) url(path string) string {
	return e.baseURL + path
}
