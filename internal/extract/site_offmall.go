package extract

import (
	"regexp"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// offmallExtractor handles HardOff NetMall listings. Price labels are
// reliable there and shipping-fee noise is absent, so plain 3-digit amounts
// are acceptable candidates.
type offmallExtractor struct {
	stop     *regexp.Regexp
	label    *regexp.Regexp
	oldLabel *regexp.Regexp
	money    *regexp.Regexp
	currency *regexp.Regexp
	grouped  *regexp.Regexp
}

func newOffmallExtractor() *offmallExtractor {
	return &offmallExtractor{
		stop:     regexp.MustCompile(`(?i)ポイント|pt|付与|獲得|還元|実質|送料|手数料|上限|クーポン|値引|割引|合計|参考価格|相場|%|％`),
		label:    regexp.MustCompile(`販売価格|税込|税抜|価格|本体価格|販売金額|セール価格|特価`),
		oldLabel: regexp.MustCompile(`通常価格|定価|旧価格|値下げ前|参考価格`),
		money:    regexp.MustCompile(`([¥￥]?\s*\d{1,3}(?:[,，]\d{3})+|[¥￥]?\s*\d{3,7})(?:\s*円)?`),
		currency: regexp.MustCompile(`[¥￥]|円`),
		grouped:  regexp.MustCompile(`\d{1,3}(?:[,，]\d{3})+`),
	}
}

func (e *offmallExtractor) Name() string { return "offmall" }

func (e *offmallExtractor) Match(host string) bool {
	return hostContainsAny(host, "hardoff", "offmall", "netmall.hardoff.co.jp")
}

func (e *offmallExtractor) Price(rawHTML, text string) (int, bool) {
	var cands []Candidate

	for _, m := range jsonPriceRe.FindAllStringSubmatch(rawHTML, -1) {
		v, ok := ToYen(m[1])
		cands = addCandidate(cands, v, ok, 8)
	}
	for _, m := range itempropPriceRe.FindAllStringSubmatch(rawHTML, -1) {
		v, ok := ToYen(m[1])
		cands = addCandidate(cands, v, ok, 8)
	}
	for _, m := range dataPriceRe.FindAllStringSubmatch(rawHTML, -1) {
		v, ok := ToYen(m[1])
		cands = addCandidate(cands, v, ok, 7)
	}

	for _, loc := range e.money.FindAllStringSubmatchIndex(text, -1) {
		tok := text[loc[2]:loc[3]]
		ctx := window(text, loc[2], loc[3], 40)
		if e.stop.MatchString(ctx) {
			continue
		}
		v, ok := ToYen(tok)
		if !ok {
			continue
		}

		score := 0
		if e.label.MatchString(ctx) {
			score += 5
		}
		if e.currency.MatchString(tok) || e.currency.MatchString(ctx) {
			score += 3
		}
		if e.grouped.MatchString(tok) {
			score++
		}
		if v >= 10_000 {
			score++
		}
		if e.oldLabel.MatchString(ctx) {
			score--
		}
		cands = append(cands, Candidate{Score: score, Value: v})
	}

	return Resolve(cands, PreferMin)
}

func (e *offmallExtractor) Stock(rawHTML, text string) (models.StockState, bool) {
	// No site-specific stock rules; the shared decision applies.
	return models.StockUnknown, false
}
