package models

import (
	"time"
)

// WatchItem is one listing under observation, keyed by SKU.
type WatchItem struct {
	ID         string    `json:"id"`
	SKU        string    `json:"sku"`
	SourceURL  string    `json:"source_url"`
	ListingURL string    `json:"listing_url,omitempty"`
	AddedAt    time.Time `json:"added_at"`
}

// Observation is the latest extraction outcome persisted for a watch item.
type Observation struct {
	SKU        string     `json:"sku"`
	Stock      StockState `json:"stock"`
	StockLabel string     `json:"stock_label"`
	Qty        string     `json:"qty"`
	Price      *int       `json:"price"`
	LastPrice  *int       `json:"last_price"`
	CheckedAt  time.Time  `json:"checked_at"`
	Note       string     `json:"note,omitempty"`
}

// ChangeEvent describes a detected stock or price change for notification.
type ChangeEvent struct {
	EventID   string     `json:"event_id"`
	SKU       string     `json:"sku"`
	URL       string     `json:"url"`
	Kind      ChangeKind `json:"kind"`
	OldStock  StockState `json:"old_stock,omitempty"`
	NewStock  StockState `json:"new_stock,omitempty"`
	OldPrice  *int       `json:"old_price,omitempty"`
	NewPrice  *int       `json:"new_price,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

type ChangeKind string

const (
	ChangeStock ChangeKind = "STOCK"
	ChangePrice ChangeKind = "PRICE"
)
