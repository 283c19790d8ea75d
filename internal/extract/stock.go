package extract

import (
	"regexp"
	"strconv"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// StockPolicy holds the tunable weights and gates for the shared stock
// decision. The defaults mirror the most elaborated revision of the scoring
// table; treat the numbers as policy, not law.
type StockPolicy struct {
	PosWeight    int // per qualifying purchase-affordance occurrence
	NegWeight    int // per qualifying sold-out occurrence
	SoldOutBoost int // added to the negative total when a soldout CSS marker exists
	InStockMin   int // positive total required for IN_STOCK
	InStockNegLT int // negative total must stay below this for IN_STOCK
	OutMin       int // negative total required for OUT_OF_STOCK
	OutPosLT     int // positive total must stay below this for OUT_OF_STOCK
}

// DefaultStockPolicy returns the production weights.
func DefaultStockPolicy() StockPolicy {
	return StockPolicy{
		PosWeight:    3,
		NegWeight:    4,
		SoldOutBoost: 6,
		InStockMin:   3,
		InStockNegLT: 5,
		OutMin:       5,
		OutPosLT:     3,
	}
}

var (
	qtyRe     = regexp.MustCompile(`残り\s*([0-9]+)\s*(?:点|個|枚|本)`)
	zeroQtyRe = regexp.MustCompile(`(?:残り|在庫)\s*0\s*(?:点|個|枚|本)?`)
	lastOneRe = regexp.MustCompile(`残り\s*1\s*(?:点|個|枚|本)|ラスト\s*1`)

	soldOutClassRe = regexp.MustCompile(`(?i)sold[\s_\-]?out`)

	// Occurrences counted by the additive scorer.
	posWordRe = regexp.MustCompile(`在庫あり|購入手続き|今すぐ購入|カートに入れる|ご購入|購入する|注文手続き|お買い物かご`)
	negWordRe = regexp.MustCompile(`(?i)売り切れ|在庫なし|在庫切れ|完売|販売終了|取扱(?:い)?終了|SOLD\s*OUT`)

	// A purchase word next to "cannot" phrasing is not a purchase affordance.
	posDisableRe = regexp.MustCompile(`できません|不可|入れられない|品切`)
	// A sold-out word inside a cautionary clause ("in the case that items
	// sell out...") describes a future possibility, not current state.
	cautionRe = regexp.MustCompile(`場合|こと|可能性|恐れ|注意|お問い合わせ|ご了承ください`)
)

// remainingQty returns the first explicit remaining-quantity match in text.
func remainingQty(text string) (int, bool) {
	m := qtyRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// stockScores runs the additive occurrence scoring over text, suppressing
// purchase words negated in context and sold-out words inside cautionary
// clauses. Returns the positive and negative totals.
func stockScores(rawHTML, text string, policy StockPolicy) (pos, neg int) {
	for _, loc := range posWordRe.FindAllStringIndex(text, -1) {
		ctx := window(text, loc[0], loc[1], 25)
		if posDisableRe.MatchString(ctx) {
			continue
		}
		pos += policy.PosWeight
	}
	for _, loc := range negWordRe.FindAllStringIndex(text, -1) {
		ctx := window(text, loc[0], loc[1], 20)
		if cautionRe.MatchString(ctx) {
			continue
		}
		neg += policy.NegWeight
	}
	if soldOutClassRe.MatchString(rawHTML) {
		neg += policy.SoldOutBoost
	}
	return pos, neg
}

// sharedStock is the host-agnostic stock decision, layered by signal
// strength: explicit quantity, structured availability, then additive word
// scoring with the soldout-class default. Returns the decided state plus the
// quantity string when an explicit remaining-quantity phrase matched.
func sharedStock(rawHTML, text string, policy StockPolicy) (models.StockState, string) {
	stock := models.StockUnknown
	qty := ""

	if n, ok := remainingQty(text); ok {
		qty = strconv.Itoa(n)
		switch {
		case n == 0:
			stock = models.StockOutOfStock
		case n == 1:
			stock = models.StockLastOne
		default:
			stock = models.StockInStock
		}
	}

	if zeroQtyRe.MatchString(text) {
		stock = models.StockOutOfStock
	}
	if lastOneRe.MatchString(text) {
		stock = models.StockLastOne
	}

	if stock == models.StockUnknown {
		if avail, ok := AvailabilityFromMarkup(rawHTML); ok {
			return avail, qty
		}
	}

	if stock != models.StockLastOne {
		pos, neg := stockScores(rawHTML, text, policy)
		switch {
		// The uncontested shortcuts decide pages nothing stronger has
		// classified yet. An explicit quantity already settled the state and
		// only yields to the full thresholds below.
		case stock == models.StockUnknown && pos > 0 && neg == 0:
			stock = models.StockInStock
		case stock == models.StockUnknown && neg > 0 && pos == 0:
			stock = models.StockOutOfStock
		case neg >= policy.OutMin && pos < policy.OutPosLT:
			stock = models.StockOutOfStock
		case pos >= policy.InStockMin && neg < policy.InStockNegLT:
			stock = models.StockInStock
		default:
			// Signals tied, absent, or below the gates: keep the prior
			// default, except a bare soldout CSS marker tips an UNKNOWN
			// page to OUT.
			if stock == models.StockUnknown && soldOutClassRe.MatchString(rawHTML) {
				stock = models.StockOutOfStock
			}
		}
	}

	return stock, qty
}
