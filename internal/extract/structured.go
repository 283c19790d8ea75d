package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// Machine-readable price fields embedded in raw markup. Structured matches
// are treated as authoritative and receive the highest base scores.
var (
	jsonPriceRe     = regexp.MustCompile(`(?i)"price"\s*:\s*"?(\d{2,8})"?`)
	jsonLowPriceRe  = regexp.MustCompile(`(?i)"lowPrice"\s*:\s*"?(\d{2,8})"?`)
	itempropPriceRe = regexp.MustCompile(`(?i)itemprop=["']price["'][^>]*content=["']?([\d,，]{1,10})`)
	metaPriceRe     = regexp.MustCompile(`(?i)(?:og:price:amount|product:price:amount)"?\s*content=["']?([\d,，]{1,10})`)
	dataPriceRe     = regexp.MustCompile(`(?i)data-(?:price|amount)\s*=\s*["']?(\d{3,7})`)

	availInStockRe  = regexp.MustCompile(`(?i)itemprop=["']availability["'][^>]*InStock`)
	availOutStockRe = regexp.MustCompile(`(?i)itemprop=["']availability["'][^>]*OutOfStock`)
	availJSONRe     = regexp.MustCompile(`(?i)"availability"\s*:\s*"([^"]+)"`)
	soldOutFlagRe   = regexp.MustCompile(`(?i)"(?:isSoldOut|soldOut)"\s*:\s*(true|false)`)
	inStockFlagRe   = regexp.MustCompile(`(?i)"(?:isInStock|inStock)"\s*:\s*(true|false)`)

	ldJSONCommentRe = regexp.MustCompile(`(?m)//.*$`)
	ldJSONBlockRe   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	ldJSONCommaRe   = regexp.MustCompile(`,\s*([}\]])`)
)

// structuredPrice returns the first in-range value matched by any of the
// given markup patterns, in order.
func structuredPrice(rawHTML string, patterns ...*regexp.Regexp) (int, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(rawHTML); m != nil {
			if v, ok := ToYen(m[1]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// CollectJSONLDPrices walks every ld+json script block and gathers all
// in-range "price" values. Unparseable fragments contribute nothing.
func CollectJSONLDPrices(rawHTML string) []int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var out []int
	doc.Find(`script[type*="ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		raw = ldJSONBlockRe.ReplaceAllString(raw, "")
		raw = ldJSONCommentRe.ReplaceAllString(raw, "")
		raw = ldJSONCommaRe.ReplaceAllString(raw, "$1")

		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return
		}
		walkJSONPrices(data, &out)
	})
	return out
}

func walkJSONPrices(node any, out *[]int) {
	switch v := node.(type) {
	case map[string]any:
		if raw, ok := v["price"]; ok {
			if n, ok := ToYen(jsonScalar(raw)); ok {
				*out = append(*out, n)
			}
		}
		for _, child := range v {
			walkJSONPrices(child, out)
		}
	case []any:
		for _, child := range v {
			walkJSONPrices(child, out)
		}
	}
}

func jsonScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// AvailabilityFromMarkup reads machine-readable availability markers:
// microdata itemprop, JSON-LD availability strings, and soldOut/inStock
// boolean flags. These override textual heuristics but not explicit
// remaining-quantity phrases.
func AvailabilityFromMarkup(rawHTML string) (models.StockState, bool) {
	if availInStockRe.MatchString(rawHTML) {
		return models.StockInStock, true
	}
	if availOutStockRe.MatchString(rawHTML) {
		return models.StockOutOfStock, true
	}
	if m := availJSONRe.FindStringSubmatch(rawHTML); m != nil {
		switch {
		case strings.Contains(strings.ToLower(m[1]), "instock"):
			return models.StockInStock, true
		case strings.Contains(strings.ToLower(m[1]), "outofstock"):
			return models.StockOutOfStock, true
		}
	}
	if m := soldOutFlagRe.FindStringSubmatch(rawHTML); m != nil {
		if strings.EqualFold(m[1], "true") {
			return models.StockOutOfStock, true
		}
		return models.StockInStock, true
	}
	if m := inStockFlagRe.FindStringSubmatch(rawHTML); m != nil {
		if strings.EqualFold(m[1], "true") {
			return models.StockInStock, true
		}
		return models.StockOutOfStock, true
	}
	return models.StockUnknown, false
}
