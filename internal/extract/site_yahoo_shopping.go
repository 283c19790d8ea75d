package extract

import (
	"regexp"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// yahooShoppingExtractor handles Yahoo! Shopping and PayPay Mall. The pages
// are dense with PayPay point campaigns, so purchase-button proximity gets a
// strongly elevated base score over label matches elsewhere on the page.
type yahooShoppingExtractor struct {
	stop      *regexp.Regexp
	label     *regexp.Regexp
	buy       *regexp.Regexp
	yen       *regexp.Regexp
	labelYen  *regexp.Regexp
	dataPrice *regexp.Regexp
	currency  *regexp.Regexp

	posText *regexp.Regexp
	negText *regexp.Regexp
}

func newYahooShoppingExtractor() *yahooShoppingExtractor {
	return &yahooShoppingExtractor{
		stop:      regexp.MustCompile(`(?i)ポイント|pt|獲得|進呈|付与|相当|円相当|PayPay|%|％|クーポン|OFF|円OFF|割引|最大|上限|還元|キャンペーン|条件|対象`),
		label:     regexp.MustCompile(`価格|販売価格|本体価格|セール価格|税込|税抜|お支払い金額|支払金額`),
		buy:       regexp.MustCompile(`カートに入れる|今すぐ購入|注文手続き|注文に進む|購入手続き`),
		yen:       regexp.MustCompile(yenToken),
		labelYen:  regexp.MustCompile(`(価格|販売価格|本体価格|セール価格|税込|税抜|お支払い金額|支払金額)[^\d¥￥]{0,12}(` + yenToken + `)`),
		dataPrice: regexp.MustCompile(`(?i)data-(?:price|amount|y-price|item-price|paypay-price|price-value)\s*=\s*["']?(\d{2,8})`),
		currency:  regexp.MustCompile(`[¥￥]|円`),

		posText: regexp.MustCompile(`在庫あり|カートに入れる|今すぐ購入|注文手続き|購入手続き|注文に進む`),
		negText: regexp.MustCompile(`在庫なし|在庫切れ|完売|販売終了|お取り扱いできません|取り扱いできません`),
	}
}

func (e *yahooShoppingExtractor) Name() string { return "yahoo-shopping" }

func (e *yahooShoppingExtractor) Match(host string) bool {
	return hostContainsAny(host, "shopping.yahoo.co.jp", "store.shopping.yahoo.co.jp", "paypaymall.yahoo.co.jp")
}

func (e *yahooShoppingExtractor) Price(rawHTML, text string) (int, bool) {
	if v, ok := structuredPrice(rawHTML, jsonPriceRe, jsonLowPriceRe, itempropPriceRe, metaPriceRe, e.dataPrice); ok {
		return v, true
	}

	var cands []Candidate

	// Purchase-button proximity: widen around each buy affordance and
	// rescan with the label/stop logic inside that window.
	area := headRunes(text, 20000)
	for _, loc := range e.buy.FindAllStringIndex(area, -1) {
		ctx := window(area, loc[0], loc[1], 1000)
		for _, n := range e.yen.FindAllStringIndex(ctx, -1) {
			tok := ctx[n[0]:n[1]]
			v, ok := ToYen(tok)
			if !ok {
				continue
			}
			win := window(ctx, n[0], n[1], 120)
			if e.stop.MatchString(win) {
				continue
			}
			score := 10
			if e.label.MatchString(win) {
				score += 3
			}
			if e.currency.MatchString(tok) {
				score++
			}
			cands = append(cands, Candidate{Score: score, Value: v})
		}
	}

	// Label proximity over the whole body.
	body := headRunes(text, 25000)
	for _, loc := range e.labelYen.FindAllStringSubmatchIndex(body, -1) {
		v, ok := ToYen(body[loc[4]:loc[5]])
		if !ok {
			continue
		}
		if e.stop.MatchString(window(body, loc[0], loc[1], 120)) {
			continue
		}
		cands = append(cands, Candidate{Score: 7, Value: v})
	}

	if v, ok := Resolve(cands, PreferMin); ok {
		return v, true
	}

	return structuredPrice(rawHTML, jsonLowPriceRe)
}

func (e *yahooShoppingExtractor) Stock(rawHTML, text string) (models.StockState, bool) {
	if avail, ok := AvailabilityFromMarkup(rawHTML); ok {
		return avail, true
	}
	if e.posText.MatchString(text) {
		return models.StockInStock, true
	}
	if e.negText.MatchString(text) {
		return models.StockOutOfStock, true
	}
	if n, ok := remainingQty(text); ok {
		if n == 1 {
			return models.StockLastOne, true
		}
		return models.StockInStock, true
	}
	return models.StockUnknown, false
}
