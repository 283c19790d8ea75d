package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stockwatch-jp/supplier-watcher/internal/config"
	"github.com/stockwatch-jp/supplier-watcher/internal/database"
	"github.com/stockwatch-jp/supplier-watcher/internal/extract"
	"github.com/stockwatch-jp/supplier-watcher/internal/fetcher"
	"github.com/stockwatch-jp/supplier-watcher/internal/models"
	"github.com/stockwatch-jp/supplier-watcher/internal/notify"
	"github.com/stockwatch-jp/supplier-watcher/internal/ratelimit"
)

// Crawler walks the watch list on an interval, re-extracts each listing and
// reports stock/price changes to the event stream and the notifier.
type Crawler struct {
	store     *database.WatchStore
	fetch     *fetcher.Fetcher
	engine    *extract.Engine
	publisher *database.EventPublisher
	notifier  notify.Notifier
	limiter   ratelimit.RateLimiter
	cfg       config.Config
	logger    *slog.Logger
}

func New(
	store *database.WatchStore,
	fetch *fetcher.Fetcher,
	engine *extract.Engine,
	publisher *database.EventPublisher,
	notifier notify.Notifier,
	cfg config.Config,
	logger *slog.Logger,
) *Crawler {
	return &Crawler{
		store:     store,
		fetch:     fetch,
		engine:    engine,
		publisher: publisher,
		notifier:  notifier,
		limiter:   ratelimit.NewAdaptiveRateLimiter(cfg.Crawler.RateLimitMin, cfg.Crawler.RateLimitMax),
		cfg:       cfg,
		logger:    logger.With("component", "crawler"),
	}
}

// Run blocks until ctx is cancelled, crawling the full watch list once per
// configured interval. The first pass starts immediately.
func (c *Crawler) Run(ctx context.Context) error {
	c.logger.Info("crawler starting", "interval", c.cfg.Crawler.Interval)

	ticker := time.NewTicker(c.cfg.Crawler.Interval)
	defer ticker.Stop()

	if err := c.crawlOnce(ctx); err != nil {
		c.logger.Error("crawl pass failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("crawler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := c.crawlOnce(ctx); err != nil {
				c.logger.Error("crawl pass failed", "error", err)
			}
		}
	}
}

func (c *Crawler) crawlOnce(ctx context.Context) error {
	items, err := c.store.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to list watch items: %w", err)
	}

	c.logger.Info("crawl pass", "items", len(items))

	for _, item := range items {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := c.CheckItem(ctx, item); err != nil {
			c.logger.Warn("item check failed",
				"sku", item.SKU,
				"url", item.SourceURL,
				"error", err)
		}
	}
	return nil
}

// CheckItem fetches, extracts and persists one watch item, emitting change
// events against the previous observation.
func (c *Crawler) CheckItem(ctx context.Context, item *models.WatchItem) error {
	body, err := c.fetch.Fetch(ctx, item.SourceURL)
	if err != nil {
		if a, ok := c.limiter.(*ratelimit.AdaptiveRateLimiter); ok {
			a.RecordError()
		}
		return fmt.Errorf("fetch failed: %w", err)
	}
	if a, ok := c.limiter.(*ratelimit.AdaptiveRateLimiter); ok {
		a.RecordSuccess()
	}

	if fetcher.Suspect(body) {
		c.logger.Warn("suspect page, keeping previous state", "sku", item.SKU)
		return nil
	}

	res := c.engine.Extract(item.SourceURL, body, false)

	prev, err := c.store.GetObservation(ctx, item.SKU)
	firstTime := false
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("failed to load observation: %w", err)
		}
		firstTime = true
		prev = nil
	}

	obs := &models.Observation{
		SKU:        item.SKU,
		Stock:      res.Stock,
		StockLabel: StockLabel(item.SourceURL, res.Stock),
		Qty:        res.Qty,
		Price:      res.Price,
		CheckedAt:  time.Now().UTC(),
	}
	if prev != nil {
		obs.LastPrice = prev.Price
	}

	if err := c.store.SaveObservation(ctx, obs); err != nil {
		return fmt.Errorf("failed to save observation: %w", err)
	}

	if firstTime && c.cfg.Notify.SkipFirstTime {
		c.logger.Debug("first observation, notification skipped", "sku", item.SKU)
		return nil
	}

	c.reportChanges(ctx, item, prev, obs)
	return nil
}

func (c *Crawler) reportChanges(ctx context.Context, item *models.WatchItem, prev, cur *models.Observation) {
	if prev == nil {
		return
	}

	if prev.Stock != cur.Stock {
		event := &models.ChangeEvent{
			SKU:      item.SKU,
			URL:      item.SourceURL,
			Kind:     models.ChangeStock,
			OldStock: prev.Stock,
			NewStock: cur.Stock,
		}
		c.publish(ctx, event)
		if c.stockNotifiable(cur.Stock) {
			c.sendNotice(ctx, fmt.Sprintf("*%s* 在庫変化: %s → %s\n%s",
				item.SKU, prev.StockLabel, cur.StockLabel, item.SourceURL))
		}
	}

	if priceChanged(prev.Price, cur.Price, c.cfg.Notify.MinPriceDiff) {
		event := &models.ChangeEvent{
			SKU:      item.SKU,
			URL:      item.SourceURL,
			Kind:     models.ChangePrice,
			OldPrice: prev.Price,
			NewPrice: cur.Price,
		}
		c.publish(ctx, event)
		c.sendNotice(ctx, fmt.Sprintf("*%s* 価格変化: %s → %s\n%s",
			item.SKU, formatPrice(prev.Price), formatPrice(cur.Price), item.SourceURL))
	}
}

// priceChanged ignores movements below the configured threshold so penny
// noise from point campaigns does not spam the channel. Appearing or
// disappearing entirely always counts.
func priceChanged(old, new *int, minDiff int) bool {
	switch {
	case old == nil && new == nil:
		return false
	case old == nil || new == nil:
		return true
	}
	diff := *new - *old
	if diff < 0 {
		diff = -diff
	}
	return diff >= minDiff
}

func (c *Crawler) stockNotifiable(stock models.StockState) bool {
	for _, s := range c.cfg.Notify.NotifyOnStock {
		if strings.EqualFold(s, string(stock)) {
			return true
		}
	}
	return false
}

func (c *Crawler) publish(ctx context.Context, event *models.ChangeEvent) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Error("failed to publish change event", "sku", event.SKU, "error", err)
	}
}

func (c *Crawler) sendNotice(ctx context.Context, text string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, text); err != nil {
		c.logger.Error("failed to send notification", "error", err)
	}
}

func formatPrice(p *int) string {
	if p == nil {
		return "不明"
	}
	return fmt.Sprintf("¥%d", *p)
}
