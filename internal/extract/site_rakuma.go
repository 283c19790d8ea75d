package extract

import (
	"regexp"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// rakumaExtractor handles Rakuma/Fril listings. The real price sits in the
// page heading, so only the leading slice of the text is scanned and the
// "price immediately next to shipping/tax wording" shape wins outright.
type rakumaExtractor struct {
	stop        *regexp.Regexp
	priceThenLb *regexp.Regexp
	labelThenPr *regexp.Regexp
	yenPrefixed *regexp.Regexp
	soldJSON    *regexp.Regexp
	soldText    *regexp.Regexp
	buyText     *regexp.Regexp
}

func newRakumaExtractor() *rakumaExtractor {
	return &rakumaExtractor{
		stop: regexp.MustCompile(`(?i)最大|OFF|円OFF|割引|クーポン|ポイント|pt|還元|相当|円相当|` +
			`上限|参考|キャンペーン|セール|特典|抽選|進呈|付与|` +
			`以上|以下|未満|超|から|〜|~|まで|条件|対象|合計|総額|合算|月|分割|ローン`),
		priceThenLb: regexp.MustCompile(`[¥￥]\s*(\d{1,3}(?:[,，]\d{3})+|\d{3,7})\s*(?:円)?\s*(?:送料込|送料込み|税込)`),
		labelThenPr: regexp.MustCompile(`(?:送料込|送料込み|税込)[^\d]{0,12}[¥￥]?\s*(\d{1,3}(?:[,，]\d{3})+|\d{3,7})`),
		yenPrefixed: regexp.MustCompile(`[¥￥]\s*(\d{1,3}(?:[,，]\d{3})+|\d{3,7})`),
		soldJSON:    regexp.MustCompile(`(?i)"(?:status|itemState|availability)"\s*:\s*"?(?:sold[_\- ]?out|sold)"?`),
		soldText:    regexp.MustCompile(`(?i)SOLD\s*OUT|売り切れ|在庫なし|販売終了|売り切れました`),
		buyText:     regexp.MustCompile(`購入手続き|購入に進む|カートに入れる|今すぐ購入`),
	}
}

func (e *rakumaExtractor) Name() string { return "rakuma" }

func (e *rakumaExtractor) Match(host string) bool {
	return hostContainsAny(host, "fril", "rakuma", "fril.jp", "rakuma.rakuten.co.jp")
}

func (e *rakumaExtractor) Price(rawHTML, text string) (int, bool) {
	head := headRunes(text, 3000)

	// Price followed by shipping/tax wording, heading area only.
	area := headRunes(head, 1800)
	for _, loc := range e.priceThenLb.FindAllStringSubmatchIndex(area, -1) {
		if e.stop.MatchString(window(area, loc[0], loc[1], 80)) {
			continue
		}
		if v, ok := ToYen(area[loc[2]:loc[3]]); ok {
			return v, true
		}
	}

	// Shipping/tax wording followed by price.
	for _, loc := range e.labelThenPr.FindAllStringSubmatchIndex(area, -1) {
		if e.stop.MatchString(window(area, loc[0], loc[1], 80)) {
			continue
		}
		if v, ok := ToYen(area[loc[2]:loc[3]]); ok {
			return v, true
		}
	}

	// Fallback: first glyph-prefixed price near the top.
	top := headRunes(head, 1200)
	for _, loc := range e.yenPrefixed.FindAllStringSubmatchIndex(top, -1) {
		if e.stop.MatchString(window(top, loc[0], loc[1], 80)) {
			continue
		}
		if v, ok := ToYen(top[loc[2]:loc[3]]); ok {
			return v, true
		}
	}

	return 0, false
}

func (e *rakumaExtractor) Stock(rawHTML, text string) (models.StockState, bool) {
	if e.soldJSON.MatchString(rawHTML) || availOutStockRe.MatchString(rawHTML) {
		return models.StockOutOfStock, true
	}
	if e.soldText.MatchString(text) {
		return models.StockOutOfStock, true
	}
	if e.buyText.MatchString(text) {
		return models.StockInStock, true
	}
	if lastOneRe.MatchString(text) {
		return models.StockLastOne, true
	}
	if soldOutClassRe.MatchString(rawHTML) {
		return models.StockOutOfStock, true
	}
	return models.StockUnknown, false
}
