package extract

import (
	"regexp"
	"sort"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// PriceFn and StockFn are the optional hooks a plugin supplies. Either may
// be nil. A hook reporting ok=false produced no result.
type (
	PriceFn func(url, rawHTML, text string) (int, bool)
	StockFn func(url, rawHTML, text string) (models.StockState, bool)
)

// Plugin is a supplementary extractor consulted after the site and generic
// passes. Unless Override is set it only fills fields still unresolved.
type Plugin struct {
	Name     string
	Hosts    []*regexp.Regexp
	Price    PriceFn
	Stock    StockFn
	Override bool
	Priority int
}

// Registry holds registered plugins ordered by descending priority. It is
// built once at startup and injected into the engine; it has no teardown.
type Registry struct {
	plugins []*Plugin
	byName  map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]bool)}
}

// Register adds a plugin. Re-registering a known name is a no-op.
func (r *Registry) Register(p *Plugin) {
	if p == nil || p.Name == "" || r.byName[p.Name] {
		return
	}
	r.byName[p.Name] = true
	r.plugins = append(r.plugins, p)
	sort.SliceStable(r.plugins, func(i, j int) bool {
		return r.plugins[i].Priority > r.plugins[j].Priority
	})
}

func (p *Plugin) matches(url, host string) bool {
	for _, re := range p.Hosts {
		if re.MatchString(url) || re.MatchString(host) {
			return true
		}
	}
	return false
}

// Apply runs matching plugins against the page and returns the possibly
// filled-in stock and price. A plugin must never break the pipeline: any
// panic inside a hook is swallowed and counts as no result.
func (r *Registry) Apply(url, host, rawHTML, text string, stock models.StockState, price *int) (models.StockState, *int) {
	if r == nil {
		return stock, price
	}
	for _, p := range r.plugins {
		if !p.matches(url, host) {
			continue
		}
		if p.Stock != nil && (p.Override || stock == models.StockUnknown || stock == "") {
			if s, ok := callStock(p.Stock, url, rawHTML, text); ok && s.Valid() && s != models.StockUnknown {
				stock = s
			}
		}
		if p.Price != nil && (p.Override || price == nil) {
			if v, ok := callPrice(p.Price, url, rawHTML, text); ok && models.PriceInRange(v) {
				price = &v
			}
		}
	}
	return stock, price
}

func callPrice(fn PriceFn, url, rawHTML, text string) (v int, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = 0, false
		}
	}()
	return fn(url, rawHTML, text)
}

func callStock(fn StockFn, url, rawHTML, text string) (s models.StockState, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = models.StockUnknown, false
		}
	}()
	return fn(url, rawHTML, text)
}
