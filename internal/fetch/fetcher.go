package fetch

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultCacheTTL is how long fetched page text stays cached.
const DefaultCacheTTL = 7 * 24 * time.Hour

const cacheKeyPrefix = "fetch:text:"

// Fetcher retrieves page text for the crawl pipelines, with an optional
// redis-backed cache and optional headless-browser fallback for SPA pages.
type Fetcher struct {
	rdb        *redis.Client
	options    *Options
	cacheTTL   time.Duration
	useBrowser bool
	logger     *zap.Logger
}

// FetcherConfig configures a Fetcher. A nil Redis client disables caching.
type FetcherConfig struct {
	Redis      *redis.Client
	Options    *Options
	CacheTTL   time.Duration
	UseBrowser bool
	Logger     *zap.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Options == nil {
		cfg.Options = DefaultOptions()
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Fetcher{
		rdb:        cfg.Redis,
		options:    cfg.Options,
		cacheTTL:   cfg.CacheTTL,
		useBrowser: cfg.UseBrowser,
		logger:     cfg.Logger,
	}
}

// Content retrieves a URL and returns its extracted main text, consulting
// the cache first. contentSelectors picks the extraction strategy (job
// posting vs. company page).
func (f *Fetcher) Content(ctx context.Context, urlStr string, contentSelectors []string) (string, error) {
	if f.rdb != nil {
		cached, err := f.rdb.Get(ctx, cacheKeyPrefix+urlStr).Result()
		if err == nil {
			f.logger.Debug("fetch cache hit", zap.String("url", urlStr))
			return cached, nil
		}
		if err != redis.Nil {
			// Cache trouble never fails a fetch.
			f.logger.Warn("fetch cache read failed", zap.String("url", urlStr), zap.Error(err))
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return "", err
	}

	text, err := ExtractMainText(result.HTML, contentSelectors)
	if err != nil {
		return "", err
	}

	if f.useBrowser && ShouldUseBrowser(text) {
		f.logger.Debug("content too short, trying browser rendering",
			zap.String("url", urlStr), zap.Int("chars", len(text)))
		if html, berr := BrowserSimple(ctx, urlStr); berr == nil {
			if rendered, rerr := ExtractMainText(html, contentSelectors); rerr == nil && len(rendered) > len(text) {
				text = rendered
			}
		} else {
			f.logger.Warn("browser rendering failed, keeping HTTP content",
				zap.String("url", urlStr), zap.Error(berr))
		}
	}

	if f.rdb != nil && text != "" {
		if err := f.rdb.Set(ctx, cacheKeyPrefix+urlStr, text, f.cacheTTL).Err(); err != nil {
			f.logger.Warn("fetch cache write failed", zap.String("url", urlStr), zap.Error(err))
		}
	}

	return text, nil
}
