package extract

import (
	"regexp"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// yahooAuctionExtractor handles Yahoo! Auctions. "Stock" there means the
// auction is still open. Labels are ranked: a final hammer price beats the
// current bid beats the buy-it-now price.
type yahooAuctionExtractor struct {
	labelPrice *regexp.Regexp
	closed     *regexp.Regexp
	open       *regexp.Regexp
}

func newYahooAuctionExtractor() *yahooAuctionExtractor {
	return &yahooAuctionExtractor{
		labelPrice: regexp.MustCompile(`(落札価格|現在価格|即決価格)[^\d¥￥]{0,8}([¥￥]?\s*\d{1,3}(?:[,，]\d{3})+|[¥￥]?\s*\d{3,7})`),
		closed:     regexp.MustCompile(`終了しました|落札されました|出品終了|このオークションは終了`),
		open:       regexp.MustCompile(`入札する|即決で落札|今すぐ落札|入札受付中`),
	}
}

func (e *yahooAuctionExtractor) Name() string { return "yahoo-auction" }

func (e *yahooAuctionExtractor) Match(host string) bool {
	return hostContainsAny(host, "auctions.yahoo.co.jp")
}

var auctionLabelRank = map[string]int{
	"落札価格": 3,
	"現在価格": 2,
	"即決価格": 1,
}

func (e *yahooAuctionExtractor) Price(rawHTML, text string) (int, bool) {
	head := headRunes(text, 8000)

	var cands []Candidate
	for _, m := range e.labelPrice.FindAllStringSubmatch(head, -1) {
		v, ok := ToYen(m[2])
		if !ok {
			continue
		}
		cands = append(cands, Candidate{Score: auctionLabelRank[m[1]], Value: v})
	}
	if v, ok := Resolve(cands, PreferMin); ok {
		return v, true
	}

	return structuredPrice(rawHTML, jsonPriceRe, itempropPriceRe)
}

func (e *yahooAuctionExtractor) Stock(rawHTML, text string) (models.StockState, bool) {
	if e.closed.MatchString(text) {
		return models.StockOutOfStock, true
	}
	if e.open.MatchString(text) {
		return models.StockInStock, true
	}
	return models.StockUnknown, false
}
