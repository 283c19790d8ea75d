package extract

import (
	"regexp"
	"strconv"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// surugayaExtractor handles Suruga-ya listings: structured data first, then
// sale-price label proximity, then a trailing-円 safety net. Stock decisions
// trust the cart UI over sold-out wording because the site footer carries a
// standing "in case of sell-out" disclaimer on every page.
type surugayaExtractor struct {
	stop       *regexp.Regexp
	labelPrice *regexp.Regexp
	tailYen    *regexp.Regexp

	negWord    *regexp.Regexp
	buyUI      *regexp.Regexp
	qtyWord    *regexp.Regexp
	cartMarkup *regexp.Regexp
	cartAttr   *regexp.Regexp
	mailStockN *regexp.Regexp
	mailStockX *regexp.Regexp
	mailStockO *regexp.Regexp
	mailStockD *regexp.Regexp
	anyStockX  *regexp.Regexp
	anyStockO  *regexp.Regexp
	anyStockD  *regexp.Regexp
}

func newSurugayaExtractor() *surugayaExtractor {
	return &surugayaExtractor{
		stop:       regexp.MustCompile(`(?i)ポイント|pt|還元|%|％|クーポン|OFF|円OFF|割引|値引|送料|手数料|相当|円相当|定価|参考価格|買取価格`),
		labelPrice: regexp.MustCompile(`(販売価格|税込価格|税込|税抜|通販価格|ネット価格|価格)[^\d¥￥]{0,12}(` + yenToken + `)`),
		tailYen:    regexp.MustCompile(`([¥￥]?\s*\d{1,3}(?:[,，]\d{3})+|[¥￥]?\s*\d{3,7})\s*円`),

		negWord:    regexp.MustCompile(`売り切れ|在庫切れ|在庫なし|品切れ|販売終了|取扱い終了`),
		buyUI:      regexp.MustCompile(`カートに入れる|今すぐ購入|購入手続き|ご注文|注文手続き|お買い物かご`),
		qtyWord:    regexp.MustCompile(`数量`),
		cartMarkup: regexp.MustCompile(`(?i)<(?:form|button|input)[^>]*(?:add[-_\s]?to[-_\s]?cart|cart|buy|購入)[^>]*>`),
		cartAttr:   regexp.MustCompile(`(?i)(?:id|name|class)=["'][^"']*(?:add[-_\s]?to[-_\s]?cart|cartButton|cart-submit|buyNow|purchase)["']`),
		mailStockN: regexp.MustCompile(`(?:通販在庫|ネット在庫)\s*(?:数|：|:)?\s*([0-9]+)`),
		mailStockX: regexp.MustCompile(`(?:通販在庫|ネット在庫)\s*[:：]?\s*[×✕ｘX]`),
		mailStockO: regexp.MustCompile(`(?:通販在庫|ネット在庫)\s*[:：]?\s*[○〇◯]`),
		mailStockD: regexp.MustCompile(`(?:通販在庫|ネット在庫)\s*[:：]?\s*[△▲]`),
		anyStockX:  regexp.MustCompile(`(?:在庫|在庫状況|在庫数)\s*[:：]?\s*[×✕ｘX]`),
		anyStockO:  regexp.MustCompile(`(?:在庫|在庫状況|在庫数)\s*[:：]?\s*[○〇◯]`),
		anyStockD:  regexp.MustCompile(`(?:在庫|在庫状況|在庫数)\s*[:：]?\s*[△▲]`),
	}
}

func (e *surugayaExtractor) Name() string { return "surugaya" }

func (e *surugayaExtractor) Match(host string) bool {
	return hostContainsAny(host, "suruga-ya", "surugaya")
}

func (e *surugayaExtractor) Price(rawHTML, text string) (int, bool) {
	if v, ok := structuredPrice(rawHTML, jsonPriceRe, jsonLowPriceRe, itempropPriceRe, metaPriceRe); ok {
		return v, true
	}

	area := headRunes(text, 20000)
	var cands []Candidate
	for _, loc := range e.labelPrice.FindAllStringSubmatchIndex(area, -1) {
		v, ok := ToYen(area[loc[4]:loc[5]])
		if !ok {
			continue
		}
		if e.stop.MatchString(window(area, loc[0], loc[1], 100)) {
			continue
		}
		cands = append(cands, Candidate{Score: 1, Value: v})
	}
	if v, ok := Resolve(cands, PreferMin); ok {
		return v, true
	}

	// Safety net: trailing-円 amounts near the top of the page.
	head := headRunes(text, 7000)
	for _, loc := range e.tailYen.FindAllStringSubmatchIndex(head, -1) {
		if e.stop.MatchString(window(head, loc[0], loc[1], 60)) {
			continue
		}
		if v, ok := ToYen(head[loc[2]:loc[3]]); ok {
			return v, true
		}
	}

	return 0, false
}

func (e *surugayaExtractor) Stock(rawHTML, text string) (models.StockState, bool) {
	// Strong negatives, ignoring disclaimer clauses.
	for _, loc := range e.negWord.FindAllStringIndex(text, -1) {
		ctx := window(text, loc[0], loc[1], 30)
		if !cautionRe.MatchString(ctx) {
			return models.StockOutOfStock, true
		}
	}

	// A visible purchase UI settles it.
	if e.buyUI.MatchString(text) || e.qtyWord.MatchString(text) ||
		e.cartMarkup.MatchString(rawHTML) || e.cartAttr.MatchString(rawHTML) {
		return models.StockInStock, true
	}

	// Mail-order stock count.
	if m := e.mailStockN.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			switch {
			case n <= 0:
				return models.StockOutOfStock, true
			case n == 1:
				return models.StockLastOne, true
			default:
				return models.StockInStock, true
			}
		}
	}

	// Mail-order stock symbols, then general stock symbols.
	switch {
	case e.mailStockX.MatchString(text):
		return models.StockOutOfStock, true
	case e.mailStockO.MatchString(text):
		return models.StockInStock, true
	case e.mailStockD.MatchString(text):
		return models.StockLastOne, true
	case e.anyStockX.MatchString(text):
		return models.StockOutOfStock, true
	case e.anyStockO.MatchString(text):
		return models.StockInStock, true
	case e.anyStockD.MatchString(text):
		return models.StockLastOne, true
	}

	if n, ok := remainingQty(text); ok {
		if n == 1 {
			return models.StockLastOne, true
		}
		return models.StockInStock, true
	}

	return models.StockUnknown, false
}
