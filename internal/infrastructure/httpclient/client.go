package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/viewsync/internal/infrastructure/resilience"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("host unavailable: circuit breaker open")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Config configures the client.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
	// RateLimit is requests per second; <= 0 means unlimited.
	RateLimit float64
	UserAgent string
}

// DefaultConfig suits fetching boot pages from a local host.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		MinWait:    200 * time.Millisecond,
		MaxWait:    2 * time.Second,
		RateLimit:  0,
		UserAgent:  "viewsync-renderer/1.0",
	}
}

// Client wraps resty with retries, rate limiting and a circuit breaker.
type Client struct {
	resty   *resty.Client
	breaker *resilience.Breaker
	logger  *zap.Logger

	mu      sync.RWMutex
	limiter *rate.Limiter
}

// New creates a client. Retries are done by retryablehttp underneath resty.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.MinWait
	retryClient.RetryWaitMax = cfg.MaxWait
	retryClient.Logger = leveledLogger{logger.Sugar()}

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	breaker := resilience.New("http-host", resilience.LoggedSettings(logger, 5, 10*time.Second))

	c := &Client{resty: restyClient, breaker: breaker, logger: logger}
	c.SetRateLimit(cfg.RateLimit)
	return c
}

// SetRateLimit configures requests per second. rps <= 0 removes the limit.
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// SetHeader adds a default header.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resty.SetHeader(key, value)
}

// GetText fetches url and returns the body. Server errors count against
// the breaker; 4xx responses do not.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	var clientErr error
	body, err := resilience.Do(c.breaker, func() (string, error) {
		resp, err := c.resty.R().SetContext(ctx).Get(url)
		if err != nil {
			return "", err
		}
		code := resp.StatusCode()
		switch {
		case code >= http.StatusInternalServerError:
			return "", &StatusError{URL: url, Code: code}
		case code >= http.StatusBadRequest:
			clientErr = &StatusError{URL: url, Code: code}
			return "", nil
		}
		return resp.String(), nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return "", ErrUnavailable
	}
	if err != nil {
		return "", err
	}
	if clientErr != nil {
		return "", clientErr
	}
	return body, nil
}

// BreakerState returns the breaker state.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
