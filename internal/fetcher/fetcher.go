package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockwatch-jp/supplier-watcher/internal/config"
)

// MobileMergeMarker separates the desktop rendering from the appended mobile
// rendering in a merged page. The normalizer treats the merge as one stream;
// the marker only aids debugging.
const MobileMergeMarker = "<!-- MOBILE MERGE -->"

// mobileMergeHosts lists hosts whose mobile rendering exposes stock or price
// text the desktop page hides behind scripts.
var mobileMergeHosts = regexp.MustCompile(`mercari|paypayfleamarket|fril\.jp|rakuma`)

var suspectRe = regexp.MustCompile(`(?i)captcha|access denied|cloudflare|just a moment|are you a robot|レートリミット|アクセスが集中`)

// Fetcher retrieves listing pages over plain HTTP with optional short-lived
// redis memoization so a crawl tick and an API probe of the same URL share
// one upstream request.
type Fetcher struct {
	client *http.Client
	redis  *redis.Client
	cfg    config.FetcherConfig
	logger *slog.Logger
}

func New(cfg config.FetcherConfig, redisClient *redis.Client, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		redis:  redisClient,
		cfg:    cfg,
		logger: logger.With("component", "fetcher"),
	}
}

// Fetch returns the page markup for url, merging a mobile rendering for
// hosts that need it. Cached bodies are returned without hitting upstream.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if body, ok := f.cacheGet(ctx, url); ok {
		f.logger.Debug("cache hit", "url", url)
		return body, nil
	}

	body, err := f.fetchWithRetry(ctx, url, f.cfg.DesktopAgent)
	if err != nil {
		return "", err
	}

	if f.cfg.MergeMobile && mobileMergeHosts.MatchString(url) {
		if mobile, merr := f.fetchWithRetry(ctx, url, f.cfg.MobileAgent); merr == nil {
			body = body + "\n" + MobileMergeMarker + "\n" + mobile
		} else {
			f.logger.Debug("mobile fetch failed", "url", url, "error", merr)
		}
	}

	f.cacheSet(ctx, url, body)
	return body, nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, url, userAgent string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		body, err := f.fetchOnce(ctx, url, userAgent)
		if err == nil {
			return body, nil
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed",
			"url", url,
			"attempt", attempt,
			"error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.cfg.RetryDelay * time.Duration(attempt)):
		}
	}
	return "", fmt.Errorf("fetch failed after %d attempts: %w", f.cfg.MaxRetries, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "ja-JP,ja;q=0.9,en;q=0.8")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(raw), nil
}

// Suspect reports whether the body looks like an interstitial or block page
// rather than the listing itself. Suspect pages should not update state.
func Suspect(body string) bool {
	if strings.TrimSpace(body) == "" {
		return true
	}
	head := body
	if len(head) > 4000 {
		head = head[:4000]
	}
	return suspectRe.MatchString(head)
}

func cacheKey(url string) string {
	return "fetch:" + url
}

func (f *Fetcher) cacheGet(ctx context.Context, url string) (string, bool) {
	if f.redis == nil || f.cfg.CacheTTL <= 0 {
		return "", false
	}
	body, err := f.redis.Get(ctx, cacheKey(url)).Result()
	if err != nil {
		return "", false
	}
	return body, true
}

func (f *Fetcher) cacheSet(ctx context.Context, url, body string) {
	if f.redis == nil || f.cfg.CacheTTL <= 0 {
		return
	}
	if err := f.redis.Set(ctx, cacheKey(url), body, f.cfg.CacheTTL).Err(); err != nil {
		f.logger.Debug("cache write failed", "url", url, "error", err)
	}
}
