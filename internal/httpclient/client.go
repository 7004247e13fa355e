package httpclient

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config holds timeout and client-side throttling configuration.
type Config struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second; <= 0 disables throttling
	Burst     int
	UserAgent string
}

// DefaultConfig returns sensible defaults.
// TMDb allows roughly 50 requests per second per IP.
func DefaultConfig() Config {
	return Config{
		Timeout:   10 * time.Second,
		RateLimit: 40,
		Burst:     10,
		UserAgent: "moviehub",
	}
}

// Client wraps http.Client with a token-bucket limiter.
// Every request is attempted exactly once: failures surface to the caller.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	config  Config
	logger  *slog.Logger
}

// New creates a new Client with a default http.Client.
func New(cfg Config, logger *slog.Logger) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a Client with a custom http.Client (e.g. for tests).
func NewWithHTTPClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &Client{
		http:    httpClient,
		limiter: limiter,
		config:  cfg,
		logger:  logger,
	}
}

// Do waits for a limiter token and executes the request once.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		start := time.Now()
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		if waited := time.Since(start); waited > 100*time.Millisecond {
			c.logger.Debug("request throttled",
				slog.String("delay", waited.String()),
				slog.String("path", req.URL.Path),
			)
		}
	}

	if c.config.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}
		return nil, err
	}
	return resp, nil
}
