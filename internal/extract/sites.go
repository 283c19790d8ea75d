package extract

import (
	"strings"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// SiteExtractor knows one marketplace's page conventions. Price and Stock
// report ok=false when the page yields no confident signal; the engine then
// falls through to the generic extractor and the shared stock decision.
type SiteExtractor interface {
	Name() string
	Match(host string) bool
	Price(rawHTML, text string) (int, bool)
	Stock(rawHTML, text string) (models.StockState, bool)
}

// DefaultSites returns the built-in extractor table. Dispatch picks the
// first extractor whose Match accepts the host.
func DefaultSites() []SiteExtractor {
	return []SiteExtractor{
		newOffmallExtractor(),
		newRakumaExtractor(),
		newYahooAuctionExtractor(),
		newPayPayFleamarketExtractor(),
		newYahooShoppingExtractor(),
		newSurugayaExtractor(),
		newAmazonExtractor(),
		newMercariExtractor(),
		newRakutenExtractor(),
	}
}

func hostContainsAny(host string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(host, n) {
			return true
		}
	}
	return false
}

// yenToken matches the currency-shaped tokens shared by the label-proximity
// scans: glyph-prefixed, unit-suffixed, comma-grouped or bare 3-7 digits.
const yenToken = `(?:[¥￥]\s*\d{1,3}(?:[,，]\d{3})+|[¥￥]?\s*\d{3,7}|\d{1,3}(?:[,，]\d{3})+\s*円|\d{3,7}\s*円)`
