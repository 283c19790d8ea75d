package extract

import (
	"regexp"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// rakutenExtractor handles Rakuten Ichiba item pages. Shops list the same
// item under bundle and point-back variants, so the buy-box pass keeps the
// LARGEST tied candidate: the undiscounted selling price, not a campaign
// teaser amount. Stock decisions are left to the shared heuristics because
// shop templates vary too much for a single site rule.
type rakutenExtractor struct {
	stop     *regexp.Regexp
	shipping *regexp.Regexp
	buy      *regexp.Regexp
	label    *regexp.Regexp
	labelYen *regexp.Regexp
	yen      *regexp.Regexp
	comma    *regexp.Regexp
	currency *regexp.Regexp
	tailYen  *regexp.Regexp
}

func newRakutenExtractor() *rakutenExtractor {
	return &rakutenExtractor{
		stop:     regexp.MustCompile(`(?i)ポイント|pt|倍|還元|獲得|進呈|付与|相当|円相当|クーポン|%|％|OFF|円OFF|割引|最大|上限|キャンペーン|実質|エントリー`),
		shipping: regexp.MustCompile(`送料|配送料|メール便`),
		buy:      regexp.MustCompile(`購入手続きへ|購入手続き|買い物かごに入れる|かごに追加|かごに入れる`),
		label:    regexp.MustCompile(`価格|販売価格|本体価格|セール価格|特価|税込|税抜`),
		labelYen: regexp.MustCompile(`(?:価格|販売価格|本体価格|セール価格|特価|税込|税抜)[^\d¥￥]{0,12}(` + yenToken + `)`),
		yen:      regexp.MustCompile(yenToken),
		comma:    regexp.MustCompile(`[,，]`),
		currency: regexp.MustCompile(`[¥￥]|円`),
		tailYen:  regexp.MustCompile(`(\d{1,3}(?:[,，]\d{3})+|\d{3,7})\s*円`),
	}
}

func (e *rakutenExtractor) Name() string { return "rakuten" }

func (e *rakutenExtractor) Match(host string) bool {
	return hostContainsAny(host, "item.rakuten.co.jp", "rakuten.co.jp")
}

func (e *rakutenExtractor) Price(rawHTML, text string) (int, bool) {
	if v, ok := structuredPrice(rawHTML, metaPriceRe, itempropPriceRe, dataPriceRe); ok {
		return v, true
	}
	if prices := CollectJSONLDPrices(rawHTML); len(prices) > 0 {
		min := prices[0]
		for _, p := range prices[1:] {
			if p < min {
				min = p
			}
		}
		return min, true
	}

	// Buy-box proximity.
	var cands []Candidate
	for _, loc := range e.buy.FindAllStringIndex(text, -1) {
		ctx := window(text, loc[0], loc[1], 1600)
		for _, n := range e.yen.FindAllStringIndex(ctx, -1) {
			tok := ctx[n[0]:n[1]]
			v, ok := ToYen(tok)
			if !ok {
				continue
			}
			win := window(ctx, n[0], n[1], 120)
			if e.stop.MatchString(win) || e.shipping.MatchString(win) {
				continue
			}
			score := 10
			if e.label.MatchString(win) {
				score += 3
			}
			if e.currency.MatchString(tok) {
				score++
			}
			if e.comma.MatchString(tok) {
				score++
			}
			cands = append(cands, Candidate{Score: score, Value: v})
		}
	}
	if v, ok := Resolve(cands, PreferMax); ok {
		return v, true
	}

	// Label proximity anywhere on the page.
	for _, loc := range e.labelYen.FindAllStringSubmatchIndex(text, -1) {
		win := window(text, loc[0], loc[1], 120)
		if e.stop.MatchString(win) || e.shipping.MatchString(win) {
			continue
		}
		if v, ok := ToYen(text[loc[2]:loc[3]]); ok {
			return v, true
		}
	}

	// Head-of-page unit-suffixed amount as a last resort.
	head := headRunes(text, 12000)
	for _, n := range e.tailYen.FindAllStringSubmatchIndex(head, -1) {
		win := window(head, n[0], n[1], 80)
		if e.stop.MatchString(win) || e.shipping.MatchString(win) {
			continue
		}
		if v, ok := ToYen(head[n[2]:n[3]]); ok {
			return v, true
		}
	}

	return 0, false
}

func (e *rakutenExtractor) Stock(rawHTML, text string) (models.StockState, bool) {
	return models.StockUnknown, false
}
