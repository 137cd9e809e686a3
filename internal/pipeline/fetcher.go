package pipeline

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/thermoparam/internal/cache"
	"github.com/ppiankov/thermoparam/internal/util"
)

// fetchSleepFunc is replaced in tests
var fetchSleepFunc = time.Sleep

const defaultFetchAttempts = 3

// RateLimiter throttles requests per host
type RateLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Fetcher downloads remote parameter libraries
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	attempts   int
	limiter    RateLimiter
	cache      cache.Cache
	cacheTTL   time.Duration
	log        *zap.Logger
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, insecureTLS bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(httpProxy, httpsProxy, noProxy)
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
		attempts:  defaultFetchAttempts,
		log:       zap.NewNop(),
	}
}

// WithRetries sets the number of attempts made for transient failures
func (f *Fetcher) WithRetries(attempts int) *Fetcher {
	if attempts > 0 {
		f.attempts = attempts
	}
	return f
}

// WithLimiter throttles every attempt through l
func (f *Fetcher) WithLimiter(l RateLimiter) *Fetcher {
	f.limiter = l
	return f
}

// WithCache keeps downloaded libraries in c for ttl
func (f *Fetcher) WithCache(c cache.Cache, ttl time.Duration) *Fetcher {
	f.cache = c
	f.cacheTTL = ttl
	return f
}

// WithLogger sets the logger
func (f *Fetcher) WithLogger(log *zap.Logger) *Fetcher {
	f.log = log.Named("fetch")
	return f
}

// FetchResult contains the downloaded library and the URL it was served from
// after redirects
type FetchResult struct {
	Body     []byte
	FinalURL string
}

// Fetch returns the library at rawURL, from the cache when possible
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.CacheKey(rawURL)
	if f.cache != nil {
		if body, ok := f.cache.Get(key); ok {
			f.log.Debug("Library served from cache", zap.String("url", rawURL))
			return body, nil
		}
	}

	result, err := f.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if result.FinalURL != rawURL {
		f.log.Info("Library redirected", zap.String("url", rawURL), zap.String("final_url", result.FinalURL))
	}

	if f.cache != nil {
		if err := f.cache.Set(key, result.Body, f.cacheTTL); err != nil {
			f.log.Warn("Unable to cache library", zap.String("url", rawURL), zap.Error(err))
		}
	}
	return result.Body, nil
}

// FetchWithRetry downloads rawURL, retrying server errors, 429 responses and
// connection failures with exponential backoff.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < f.attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(500<<(attempt-1)) * time.Millisecond
			f.log.Debug("Retrying download",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))
			fetchSleepFunc(backoff)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		result, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	// one byte past the limit tells a complete body from a truncated one
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("read body: library exceeds %d bytes", f.maxBytes)
	}

	f.log.Debug("Downloaded library", zap.String("url", rawURL), zap.Int("bytes", len(body)))
	return &FetchResult{
		Body:     body,
		FinalURL: resp.Request.URL.String(),
	}, nil
}

func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "unexpected status: 5"), strings.HasPrefix(msg, "unexpected status: 429"):
		return true
	case strings.HasPrefix(msg, "fetch:"):
		return true
	default:
		return false
	}
}
