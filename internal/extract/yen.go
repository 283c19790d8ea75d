package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

var (
	nonDigitRe = regexp.MustCompile(`[^\d]`)
	yenMarkRe  = regexp.MustCompile(`[¥￥円,，]`)
	manRe      = regexp.MustCompile(`^([0-9]+)万([0-9]*)(?:円)?$`)
)

// ToYen converts an amount token to integer yen. Full-width digits are
// folded, currency glyphs, comma separators and unit words are stripped.
// Returns false for empty, non-numeric or out-of-range results; the
// [1, 9_999_999] bound rejects HTTP status codes, years and other
// accidental numeric matches.
func ToYen(token string) (int, bool) {
	t := nonDigitRe.ReplaceAllString(FoldWidth(token), "")
	if t == "" {
		return 0, false
	}
	v, err := strconv.Atoi(t)
	if err != nil || !models.PriceInRange(v) {
		return 0, false
	}
	return v, true
}

// ParseYenStrict is ToYen restricted to tokens that carry an explicit
// currency marker (glyph, unit word or grouped separator).
func ParseYenStrict(token string) (int, bool) {
	if !yenMarkRe.MatchString(token) {
		return 0, false
	}
	return ToYen(token)
}

// ManYen parses the ten-thousand multiplier grammar "N万M": 1万2000 → 12000.
func ManYen(token string) (int, bool) {
	m := manRe.FindStringSubmatch(strings.TrimSpace(FoldWidth(token)))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	v := n * 10_000
	if m[2] != "" {
		rem, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, false
		}
		v += rem
	}
	if !models.PriceInRange(v) {
		return 0, false
	}
	return v, true
}
