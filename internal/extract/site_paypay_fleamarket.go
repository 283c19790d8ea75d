package extract

import (
	"regexp"
	"strings"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// payPayFleamarketExtractor handles PayPay Flea Market listings: a bare
// "N円" heading line first, then buy-button proximity, then a head-of-page
// safety net.
type payPayFleamarketExtractor struct {
	stop      *regexp.Regexp
	linePrice *regexp.Regexp
	anyPrice  *regexp.Regexp
	buy       *regexp.Regexp
	soldText  *regexp.Regexp
}

func newPayPayFleamarketExtractor() *payPayFleamarketExtractor {
	return &payPayFleamarketExtractor{
		stop:      regexp.MustCompile(`(?i)クーポン|適用|実質|相当|円相当|ポイント|pt|PayPay|%|％|OFF|円OFF|割引|最大|上限|ボーナス|還元`),
		linePrice: regexp.MustCompile(`^(?:[¥￥]?\s*)?(\d{1,3}(?:[,，]\d{3})+|\d{3,7})\s*円$`),
		anyPrice:  regexp.MustCompile(`(?:[¥￥]\s*)?(\d{1,3}(?:[,，]\d{3})+|\d{3,7})\s*円`),
		buy:       regexp.MustCompile(`購入手続きへ|購入に進む`),
		soldText:  regexp.MustCompile(`(?i)売り切れました|SOLD\s*OUT|在庫なし|販売終了`),
	}
}

func (e *payPayFleamarketExtractor) Name() string { return "paypay-fleamarket" }

func (e *payPayFleamarketExtractor) Match(host string) bool {
	return hostContainsAny(host, "paypayfleamarket.yahoo.co.jp")
}

func (e *payPayFleamarketExtractor) Price(rawHTML, text string) (int, bool) {
	// Bare price lines near the top.
	lines := strings.Split(text, "\n")
	if len(lines) > 120 {
		lines = lines[:120]
	}
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" || e.stop.MatchString(ln) {
			continue
		}
		if m := e.linePrice.FindStringSubmatch(ln); m != nil {
			if v, ok := ToYen(m[1]); ok {
				return v, true
			}
		}
	}

	// Around the purchase button.
	if loc := e.buy.FindStringIndex(text); loc != nil {
		ctx := window(text, loc[0], loc[1], 1200)
		for _, n := range e.anyPrice.FindAllStringSubmatchIndex(ctx, -1) {
			if e.stop.MatchString(window(ctx, n[0], n[1], 80)) {
				continue
			}
			if v, ok := ToYen(ctx[n[2]:n[3]]); ok {
				return v, true
			}
		}
	}

	// Head of the page, stop-word windows excluded.
	head := headRunes(text, 5000)
	for _, n := range e.anyPrice.FindAllStringSubmatchIndex(head, -1) {
		if e.stop.MatchString(window(head, n[0], n[1], 60)) {
			continue
		}
		if v, ok := ToYen(head[n[2]:n[3]]); ok {
			return v, true
		}
	}

	return structuredPrice(rawHTML, jsonPriceRe)
}

func (e *payPayFleamarketExtractor) Stock(rawHTML, text string) (models.StockState, bool) {
	if e.soldText.MatchString(text) {
		return models.StockOutOfStock, true
	}
	if e.buy.MatchString(text) {
		return models.StockInStock, true
	}
	if lastOneRe.MatchString(text) {
		return models.StockLastOne, true
	}
	return models.StockUnknown, false
}
