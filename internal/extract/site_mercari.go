package extract

import (
	"regexp"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// mercariExtractor handles Mercari listings conservatively: the site serves
// interstitial bot pages, so when neither a purchase UI nor a sold-out
// marker is visible the page is treated as undecided rather than guessed.
type mercariExtractor struct {
	stop     *regexp.Regexp
	buy      *regexp.Regexp
	yenTail  *regexp.Regexp
	yenHead  *regexp.Regexp
	soldText *regexp.Regexp
}

func newMercariExtractor() *mercariExtractor {
	return &mercariExtractor{
		stop:     regexp.MustCompile(`(?i)ポイント|還元|%|％|OFF|円OFF|割引|最大|上限|相当|円相当|クーポン|キャンペーン|実質`),
		buy:      regexp.MustCompile(`購入手続きへ|購入に進む|カートに入れる|今すぐ購入`),
		yenTail:  regexp.MustCompile(`(?:[¥￥]\s*)?(\d{1,3}(?:[,，]\d{3})+|\d{3,7})\s*円`),
		yenHead:  regexp.MustCompile(`[¥￥]\s*(\d{1,3}(?:[,，]\d{3})+|\d{3,7})`),
		soldText: regexp.MustCompile(`(?i)SOLD\s*OUT|売り切れ|売り切れました`),
	}
}

func (e *mercariExtractor) Name() string { return "mercari" }

func (e *mercariExtractor) Match(host string) bool {
	return hostContainsAny(host, "mercari")
}

func (e *mercariExtractor) Price(rawHTML, text string) (int, bool) {
	head := headRunes(text, 8000)

	// Amounts near the purchase button win.
	for _, loc := range e.buy.FindAllStringIndex(head, -1) {
		ctx := window(head, loc[0], loc[1], 1500)
		for _, n := range e.yenTail.FindAllStringSubmatchIndex(ctx, -1) {
			if e.stop.MatchString(window(ctx, n[0], n[1], 80)) {
				continue
			}
			if v, ok := ToYen(ctx[n[2]:n[3]]); ok {
				return v, true
			}
		}
	}

	// Glyph-prefixed amounts near the top.
	top := headRunes(head, 3000)
	for _, n := range e.yenHead.FindAllStringSubmatchIndex(top, -1) {
		if e.stop.MatchString(window(top, n[0], n[1], 80)) {
			continue
		}
		if v, ok := ToYen(top[n[2]:n[3]]); ok {
			return v, true
		}
	}

	return structuredPrice(rawHTML, jsonPriceRe)
}

func (e *mercariExtractor) Stock(rawHTML, text string) (models.StockState, bool) {
	// Purchase UI first: a visible buy button beats any stray SOLD badge
	// from related-item tiles.
	if e.buy.MatchString(text) {
		if n, ok := remainingQty(text); ok && n == 1 {
			return models.StockLastOne, true
		}
		return models.StockInStock, true
	}

	if e.soldText.MatchString(text) || soldOutClassRe.MatchString(rawHTML) {
		return models.StockOutOfStock, true
	}

	if lastOneRe.MatchString(text) {
		return models.StockLastOne, true
	}

	// Likely a bot interstitial; leave undecided.
	return models.StockUnknown, false
}
