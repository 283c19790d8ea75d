package extract

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

var hostRe = regexp.MustCompile(`^https?://([^/]+)`)

// hostOf derives the dispatch host from a listing URL. Anything that is not
// a fully qualified http(s) URL yields the input lowered, so plugin patterns
// can still match raw host strings.
func hostOf(url string) string {
	if m := hostRe.FindStringSubmatch(url); m != nil {
		return strings.ToLower(m[1])
	}
	return strings.ToLower(url)
}

// Engine runs the full extraction pipeline: normalize, site-extractor
// dispatch, generic fallback, shared stock decision, plugin gap-fill,
// invariant finalization. An Engine is immutable after construction and safe
// for concurrent use.
type Engine struct {
	sites   []SiteExtractor
	plugins *Registry
	policy  StockPolicy
	logger  *slog.Logger
}

// NewEngine builds an engine from an explicit extractor table and plugin
// registry. Either may be nil/empty; the shared heuristics still apply.
func NewEngine(sites []SiteExtractor, plugins *Registry, policy StockPolicy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		sites:   sites,
		plugins: plugins,
		policy:  policy,
		logger:  logger.With("component", "extract"),
	}
}

// NewDefaultEngine wires the built-in site table with the default stock
// policy and an empty plugin registry.
func NewDefaultEngine(logger *slog.Logger) *Engine {
	return NewEngine(DefaultSites(), NewRegistry(), DefaultStockPolicy(), logger)
}

// Plugins exposes the registry so optional extractors can register at startup.
func (e *Engine) Plugins() *Registry {
	return e.plugins
}

func (e *Engine) siteFor(host string) SiteExtractor {
	for _, s := range e.sites {
		if s.Match(host) {
			return s
		}
	}
	return nil
}

// Extract classifies stock and price for one fetched listing page. It is a
// total function of (url, rawHTML): malformed or empty input degrades to the
// UNKNOWN/no-price terminal result, never an error.
func (e *Engine) Extract(url, rawHTML string, debug bool) models.Result {
	res := models.NewResult()
	host := hostOf(url)
	text := Normalize(rawHTML)

	var price int
	var priceOK bool
	var siteName string

	if site := e.siteFor(host); site != nil {
		siteName = site.Name()
		price, priceOK = site.Price(rawHTML, text)
		if s, ok := site.Stock(rawHTML, text); ok {
			res.Stock = s
		}
	}
	if !priceOK {
		price, priceOK = GenericPrice(text)
	}
	if priceOK && models.PriceInRange(price) {
		v := price
		res.Price = &v
	}

	// Shared stock decision fills in when the site extractor abstained, and
	// supplies the explicit remaining-quantity count either way.
	shared, qty := sharedStock(rawHTML, text, e.policy)
	if res.Stock == models.StockUnknown {
		res.Stock = shared
	}
	res.Qty = qty

	// Plugins only fill residual gaps unless they registered with override.
	res.Stock, res.Price = e.plugins.Apply(url, host, rawHTML, text, res.Stock, res.Price)

	finalize(&res)

	if debug {
		res.Debug = &models.DebugInfo{
			Host:        host,
			TextSnippet: snippetRunes(text, 200),
		}
		e.logger.Debug("extracted",
			"host", host,
			"site", siteName,
			"stock", string(res.Stock),
			"qty", res.Qty,
			"price", res.IntPrice(),
		)
	}

	return res
}

// finalize enforces the result invariants: an explicit quantity of one means
// LAST_ONE, a sold-out page never reports a positive quantity, and any price
// outside the plausible bound is dropped.
func finalize(r *models.Result) {
	if r.Qty == "1" {
		r.Stock = models.StockLastOne
	}
	if n, err := strconv.Atoi(r.Qty); err == nil {
		if n <= 0 || r.Stock == models.StockOutOfStock {
			r.Qty = ""
		}
	}
	if r.Price != nil && !models.PriceInRange(*r.Price) {
		r.Price = nil
	}
	if !r.Stock.Valid() {
		r.Stock = models.StockUnknown
	}
}
