package models

// StockState is the canonical stock classification for a listing page.
type StockState string

const (
	StockInStock    StockState = "IN_STOCK"
	StockOutOfStock StockState = "OUT_OF_STOCK"
	StockLastOne    StockState = "LAST_ONE"
	StockUnknown    StockState = "UNKNOWN"
)

// Valid reports whether s is one of the three resolved states.
// UNKNOWN is the caller's default, never a plugin/extractor result.
func (s StockState) Valid() bool {
	switch s {
	case StockInStock, StockOutOfStock, StockLastOne:
		return true
	}
	return false
}

const (
	// MinPrice and MaxPrice bound any reported price. The bound rejects
	// HTTP status codes, years and other accidental numeric matches.
	MinPrice = 1
	MaxPrice = 9_999_999
)

// PriceInRange reports whether v is a plausible marketplace price.
func PriceInRange(v int) bool {
	return v >= MinPrice && v <= MaxPrice
}

// Result is the canonical output of one extraction call.
type Result struct {
	Stock StockState `json:"stock"`
	// Qty is the remaining quantity as a decimal string, "" when no
	// explicit remaining-quantity phrase was matched.
	Qty   string `json:"qty"`
	Price *int   `json:"price"`

	Debug *DebugInfo `json:"_debug,omitempty"`
}

// DebugInfo carries diagnostics attached when extraction runs in debug mode.
// Its presence never alters the extraction outcome.
type DebugInfo struct {
	Host        string `json:"host"`
	TextSnippet string `json:"text_snippet"`
}

// NewResult returns the default terminal result: nothing resolved.
func NewResult() Result {
	return Result{Stock: StockUnknown, Qty: "", Price: nil}
}

// HasPrice reports whether a confident price was extracted.
func (r *Result) HasPrice() bool {
	return r.Price != nil
}

// IntPrice returns the price value or -1 when absent.
func (r *Result) IntPrice() int {
	if r.Price == nil {
		return -1
	}
	return *r.Price
}
