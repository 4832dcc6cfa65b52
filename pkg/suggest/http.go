package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ritzau/mindmap-layout/pkg/logging"
	"github.com/sony/gobreaker"
)

// Config describes how to reach the collaborator.
type Config struct {
	Endpoint  string        `koanf:"endpoint" validate:"omitempty,url"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	Mock      bool          `koanf:"mock"`
	MockDelay time.Duration `koanf:"mock_delay" validate:"gte=0"`

	// Breaker settings; see gobreaker.Settings.
	MaxRequests      uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval         time.Duration `koanf:"interval" validate:"gte=0"`
	OpenTimeout      time.Duration `koanf:"open_timeout" validate:"gt=0"`
	MinRequests      uint32        `koanf:"min_requests" validate:"gte=1"`
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gt=0,lte=1"`
}

// DefaultConfig uses the mock collaborator with a one second delay.
func DefaultConfig() Config {
	return Config{
		Timeout:          15 * time.Second,
		Mock:             true,
		MockDelay:        time.Second,
		MaxRequests:      1,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

// NewClient builds the client described by cfg: the mock when requested
// or when no endpoint is set, the HTTP client otherwise.
func NewClient(cfg Config) Client {
	if cfg.Mock || cfg.Endpoint == "" {
		return Mock{Delay: cfg.MockDelay}
	}
	return NewHTTPClient(cfg, nil)
}

type completionRequest struct {
	Prompt     string `json:"prompt"`
	Structured bool   `json:"structured"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// HTTPClient posts prompts to an HTTP endpoint behind a circuit breaker.
// Failed requests are not retried.
type HTTPClient struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
}

// NewHTTPClient creates a client for cfg.Endpoint. hc may be nil.
func NewHTTPClient(cfg Config, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{}
	}
	return &HTTPClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		http:     hc,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "suggest",
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.MinRequests {
					return false
				}
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return ratio >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
			IsSuccessful: func(err error) bool {
				// Cancellation says nothing about the collaborator's health.
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// State returns the breaker state.
func (c *HTTPClient) State() gobreaker.State {
	return c.breaker.State()
}

func (c *HTTPClient) Complete(ctx context.Context, prompt string, structured bool) (string, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.post(ctx, prompt, structured)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	case err != nil:
		return "", err
	}
	return out.(string), nil
}

func (c *HTTPClient) post(ctx context.Context, prompt string, structured bool) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(completionRequest{Prompt: prompt, Structured: structured})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if id := logging.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var r completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return r.Text, nil
}
