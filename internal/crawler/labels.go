package crawler

import (
	"regexp"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// twoLabelHosts are shop-style sites whose listings only ever read as
// available or not. Flea-market sites keep the richer four-label set because
// "last one" and an unresolved bot page both matter there.
var twoLabelHosts = regexp.MustCompile(`surugaya|amazon|rakuten|shopping\.yahoo|netmall`)

const (
	labelInStock  = "在庫あり"
	labelOut      = "在庫なし"
	labelSoldOut  = "売り切れ"
	labelLastOne  = "残り1点"
	labelChecking = "確認中"
)

// StockLabel renders a stock state as the human-facing Japanese label used
// in notifications and the status sheet.
func StockLabel(host string, stock models.StockState) string {
	if twoLabelHosts.MatchString(host) {
		switch stock {
		case models.StockInStock, models.StockLastOne:
			return labelInStock
		case models.StockOutOfStock:
			return labelOut
		default:
			return labelChecking
		}
	}

	switch stock {
	case models.StockInStock:
		return labelInStock
	case models.StockLastOne:
		return labelLastOne
	case models.StockOutOfStock:
		return labelSoldOut
	default:
		return labelChecking
	}
}
