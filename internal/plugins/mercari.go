package plugins

import (
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/stockwatch-jp/supplier-watcher/internal/browser"
	"github.com/stockwatch-jp/supplier-watcher/internal/extract"
	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// Mercari's desktop page renders its price client-side, so the static
// extractors often come up empty there. This plugin re-fetches through a
// real browser and scrapes the rendered DOM. It never overrides a price the
// static pass already found, and every failure mode collapses to "no
// result" so the pipeline works without a browser runtime installed.

const (
	mercariPluginName     = "mercari-browser"
	mercariPluginPriority = 20
	mercariAttempts       = 2
)

var (
	mercariHostRe = regexp.MustCompile(`(?:jp\.)?mercari\.com`)

	renderedPriceRe = regexp.MustCompile(`[¥￥]\s*(\d{1,3}(?:[,，]\d{3})+|\d{3,7})`)
	renderedBuyRe   = regexp.MustCompile(`購入手続きへ|購入に進む`)
	ldPriceRe       = regexp.MustCompile(`(?i)"price"\s*:\s*"?(\d{2,8})"?`)
	metaAmountRe    = regexp.MustCompile(`(?i)property=["']product:price:amount["'][^>]*content=["']?(\d{2,8})`)
	digitsRe        = regexp.MustCompile(`[^0-9]`)
)

// NewMercariPlugin builds the browser-backed price plugin. The browser may
// be nil; the plugin then registers but always reports no result.
func NewMercariPlugin(b *browser.Browser, timeout time.Duration, logger *slog.Logger) *extract.Plugin {
	log := logger.With("component", "mercari-plugin")
	return &extract.Plugin{
		Name:     mercariPluginName,
		Hosts:    []*regexp.Regexp{mercariHostRe},
		Priority: mercariPluginPriority,
		Override: false,
		Price: func(url, rawHTML, text string) (int, bool) {
			if b == nil {
				return 0, false
			}
			for attempt := 1; attempt <= mercariAttempts; attempt++ {
				if v, ok := renderedPrice(b, url, timeout, log); ok {
					return v, true
				}
				log.Debug("rendered price attempt failed", "url", url, "attempt", attempt)
			}
			return 0, false
		},
	}
}

func renderedPrice(b *browser.Browser, url string, timeout time.Duration, log *slog.Logger) (int, bool) {
	page, err := b.NewPage()
	if err != nil {
		log.Debug("page open failed", "error", err)
		return 0, false
	}
	defer page.Close()

	page.SetDefaultTimeout(float64(timeout.Milliseconds()))

	if err := b.NavigateWithRetry(page, url, 1); err != nil {
		log.Debug("navigation failed", "url", url, "error", err)
		return 0, false
	}

	// Price next to the rendered buy button.
	if v, ok := priceNearBuyButton(page); ok {
		return v, true
	}

	content, err := page.Content()
	if err != nil {
		return 0, false
	}

	// Embedded structured data, then any rendered glyph-prefixed amount.
	for _, re := range []*regexp.Regexp{ldPriceRe, metaAmountRe, renderedPriceRe} {
		if m := re.FindStringSubmatch(content); m != nil {
			if v, ok := parseAmount(m[1]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func priceNearBuyButton(page playwright.Page) (int, bool) {
	body, err := page.Locator("body").InnerText()
	if err != nil {
		return 0, false
	}
	loc := renderedBuyRe.FindStringIndex(body)
	if loc == nil {
		return 0, false
	}
	lo := loc[0] - 1500
	if lo < 0 {
		lo = 0
	}
	hi := loc[1] + 1500
	if hi > len(body) {
		hi = len(body)
	}
	if m := renderedPriceRe.FindStringSubmatch(body[lo:hi]); m != nil {
		return parseAmount(m[1])
	}
	return 0, false
}

func parseAmount(tok string) (int, bool) {
	v, err := strconv.Atoi(digitsRe.ReplaceAllString(tok, ""))
	if err != nil || !models.PriceInRange(v) {
		return 0, false
	}
	return v, true
}
