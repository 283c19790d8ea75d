package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockwatch-jp/supplier-watcher/internal/crawler"
	"github.com/stockwatch-jp/supplier-watcher/internal/database"
	"github.com/stockwatch-jp/supplier-watcher/internal/extract"
	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

type Handlers struct {
	engine  *extract.Engine
	store   *database.WatchStore
	crawler *crawler.Crawler
	logger  *slog.Logger
}

func NewHandlers(engine *extract.Engine, store *database.WatchStore, cr *crawler.Crawler, logger *slog.Logger) *Handlers {
	return &Handlers{
		engine:  engine,
		store:   store,
		crawler: cr,
		logger:  logger,
	}
}

// ExtractRequest carries a page to classify. HTML is optional; when present
// no fetch happens, which keeps the endpoint usable for offline testing.
type ExtractRequest struct {
	URL   string `json:"url"`
	HTML  string `json:"html"`
	Debug bool   `json:"debug"`
}

// Extract classifies stock and price for a supplied page.
func (h *Handlers) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	res := h.engine.Extract(req.URL, req.HTML, req.Debug)
	h.respondJSON(w, http.StatusOK, res)
}

// AddWatchRequest registers a listing for crawling.
type AddWatchRequest struct {
	SKU        string `json:"sku"`
	SourceURL  string `json:"source_url"`
	ListingURL string `json:"listing_url"`
}

// AddWatch adds one item to the watch list.
func (h *Handlers) AddWatch(w http.ResponseWriter, r *http.Request) {
	var req AddWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SKU == "" || req.SourceURL == "" {
		h.respondError(w, http.StatusBadRequest, "sku and source_url are required")
		return
	}

	item := &models.WatchItem{
		SKU:        req.SKU,
		SourceURL:  req.SourceURL,
		ListingURL: req.ListingURL,
	}
	if err := h.store.AddItem(r.Context(), item); err != nil {
		h.logger.Error("failed to add watch item", "sku", req.SKU, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to add watch item")
		return
	}

	h.respondJSON(w, http.StatusCreated, item)
}

// ListWatches returns the full watch list.
func (h *Handlers) ListWatches(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context())
	if err != nil {
		h.logger.Error("failed to list watch items", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list watch items")
		return
	}
	if items == nil {
		items = []*models.WatchItem{}
	}
	h.respondJSON(w, http.StatusOK, items)
}

// GetWatch returns one watch item with its latest observation.
func (h *Handlers) GetWatch(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	if sku == "" {
		h.respondError(w, http.StatusBadRequest, "sku is required")
		return
	}

	item, err := h.store.GetItem(r.Context(), sku)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "watch item not found")
			return
		}
		h.logger.Error("failed to get watch item", "sku", sku, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get watch item")
		return
	}

	resp := struct {
		Item        *models.WatchItem   `json:"item"`
		Observation *models.Observation `json:"observation,omitempty"`
	}{Item: item}

	obs, err := h.store.GetObservation(r.Context(), sku)
	if err == nil {
		resp.Observation = obs
	} else if !errors.Is(err, database.ErrNotFound) {
		h.logger.Error("failed to get observation", "sku", sku, "error", err)
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// RemoveWatch deletes one watch item.
func (h *Handlers) RemoveWatch(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	if sku == "" {
		h.respondError(w, http.StatusBadRequest, "sku is required")
		return
	}

	if err := h.store.RemoveItem(r.Context(), sku); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "watch item not found")
			return
		}
		h.logger.Error("failed to remove watch item", "sku", sku, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to remove watch item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CheckWatch forces an immediate re-check of one item, outside the crawl
// interval.
func (h *Handlers) CheckWatch(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	if sku == "" {
		h.respondError(w, http.StatusBadRequest, "sku is required")
		return
	}

	item, err := h.store.GetItem(r.Context(), sku)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "watch item not found")
			return
		}
		h.logger.Error("failed to get watch item", "sku", sku, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get watch item")
		return
	}

	if err := h.crawler.CheckItem(r.Context(), item); err != nil {
		h.logger.Error("manual check failed", "sku", sku, "error", err)
		h.respondError(w, http.StatusBadGateway, "check failed")
		return
	}

	obs, err := h.store.GetObservation(r.Context(), sku)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load observation")
		return
	}
	h.respondJSON(w, http.StatusOK, obs)
}

// GetStats returns aggregate watch-list counts.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to get stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
