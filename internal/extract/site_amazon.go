package extract

import (
	"regexp"
	"strconv"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// amazonExtractor handles Amazon.co.jp. The buy box carries stable element
// ids, so raw-markup scans around corePrice/priceToPay/a-offscreen come
// before any structured-data fallback.
type amazonExtractor struct {
	buyBox   []*regexp.Regexp
	fallYen  *regexp.Regexp
	unavail  *regexp.Regexp
	buyUI    *regexp.Regexp
	qtyLeft  *regexp.Regexp
	soldText *regexp.Regexp
}

func newAmazonExtractor() *amazonExtractor {
	return &amazonExtractor{
		buyBox: []*regexp.Regexp{
			regexp.MustCompile(`(?is)id=["']corePrice_feature_div["'][\s\S]{0,400}?[¥￥]\s*([\d,，]{3,10})`),
			regexp.MustCompile(`(?is)id=["']priceToPay["'][\s\S]{0,200}?[¥￥]\s*([\d,，]{3,10})`),
			regexp.MustCompile(`(?i)class=["']a-offscreen["']>\s*[¥￥]\s*([\d,，]{3,10})<`),
		},
		fallYen:  regexp.MustCompile(`[¥￥]\s*([\d,，]{3,10})\s*円`),
		unavail:  regexp.MustCompile(`現在お取り扱いできません|一時的に在庫切れ|再入荷予定は立っておりません`),
		buyUI:    regexp.MustCompile(`在庫あり|カートに入れる|今すぐ買う|今すぐ購入`),
		qtyLeft:  regexp.MustCompile(`残り\s*([0-9]+)\s*点`),
		soldText: regexp.MustCompile(`(?i)売り切れ|在庫切れ|SOLD\s*OUT`),
	}
}

func (e *amazonExtractor) Name() string { return "amazon" }

func (e *amazonExtractor) Match(host string) bool {
	return hostContainsAny(host, "amazon.co.jp")
}

func (e *amazonExtractor) Price(rawHTML, text string) (int, bool) {
	for _, re := range e.buyBox {
		if m := re.FindStringSubmatch(rawHTML); m != nil {
			if v, ok := ToYen(m[1]); ok {
				return v, true
			}
		}
	}

	if v, ok := structuredPrice(rawHTML, metaPriceRe, itempropPriceRe, jsonPriceRe); ok {
		return v, true
	}

	if m := e.fallYen.FindStringSubmatch(text); m != nil {
		if v, ok := ToYen(m[1]); ok {
			return v, true
		}
	}

	return 0, false
}

func (e *amazonExtractor) Stock(rawHTML, text string) (models.StockState, bool) {
	if e.unavail.MatchString(text) {
		return models.StockOutOfStock, true
	}

	if e.buyUI.MatchString(text) {
		if m := e.qtyLeft.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n == 1 {
				return models.StockLastOne, true
			}
		}
		return models.StockInStock, true
	}

	if e.soldText.MatchString(text) {
		return models.StockOutOfStock, true
	}

	return models.StockUnknown, false
}
