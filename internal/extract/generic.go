package extract

import "regexp"

// Host-agnostic fallback used when no site extractor matches the host or the
// matching one came up empty. Two scan passes: currency-contextualized tokens
// first, then bare digit runs, each judged on a narrow context window.
var (
	genericCurrencyRe = regexp.MustCompile(`[¥￥]\s*(\d{1,3}(?:[,，]\d{3})+|\d{1,7})|(\d{1,3}(?:[,，]\d{3})+|\d{1,7})\s*円`)
	genericBareRe     = regexp.MustCompile(`\d{3,7}`)

	genericPriceWordRe = regexp.MustCompile(`価格|値段|金額|税込|税抜|販売|支払|円|[¥￥]|price`)
	genericStopRe      = regexp.MustCompile(`(?i)ポイント|pt|獲得|進呈|付与|還元|送料|配送料|手数料|%|％|OFF|円OFF|割引|値引|クーポン|相当|円相当|上限|最大|キャンペーン`)
	genericUnitRe      = regexp.MustCompile(`(?i)cm|mm|kg|g\b|ml|サイズ|型番|品番|年|月|日|時|分|個入|mAh|GB|MB|W\b|V\b|号`)
	genericCommaRe     = regexp.MustCompile(`[,，]`)
	genericGlyphRe     = regexp.MustCompile(`[¥￥]|円`)
)

// httpStatusLike lists bare values that are far more likely to be a status
// code leaked into page text than a price.
var httpStatusLike = map[int]bool{
	200: true, 201: true, 204: true,
	301: true, 302: true, 304: true,
	400: true, 401: true, 403: true, 404: true, 410: true,
	500: true, 502: true, 503: true, 504: true,
}

// GenericPrice scans normalized text for the most price-like numeric token.
func GenericPrice(text string) (int, bool) {
	var cands []Candidate

	seen := map[int]bool{}
	consider := func(tok, win string, bare bool) {
		v, ok := ToYen(tok)
		if !ok {
			return
		}
		if genericStopRe.MatchString(win) || genericUnitRe.MatchString(win) {
			return
		}
		hasKeyword := genericPriceWordRe.MatchString(win)
		if httpStatusLike[v] && !hasKeyword {
			return
		}

		score := 0
		// The window contains the token, so a glyph attached to the number
		// or merely nearby both count.
		if genericGlyphRe.MatchString(win) {
			score += 3
		}
		if hasKeyword {
			score += 2
		}
		if genericCommaRe.MatchString(tok) {
			score++
		}
		// Bare 3-digit runs are noise unless context already vouches.
		if bare && v < 1000 && score < 3 {
			return
		}
		if bare && score == 0 {
			return
		}
		if seen[v] {
			return
		}
		seen[v] = true
		cands = append(cands, Candidate{Score: score, Value: v})
	}

	for _, loc := range genericCurrencyRe.FindAllStringIndex(text, -1) {
		consider(text[loc[0]:loc[1]], window(text, loc[0], loc[1], 24), false)
	}
	for _, loc := range genericBareRe.FindAllStringIndex(text, -1) {
		consider(text[loc[0]:loc[1]], window(text, loc[0], loc[1], 24), true)
	}

	return Resolve(cands, PreferMin)
}
