package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stockwatch-jp/supplier-watcher/internal/models"
)

// ErrNotFound is returned when a watch item or observation does not exist.
var ErrNotFound = errors.New("not found")

// WatchStore persists the watch list and the latest observation per SKU.
type WatchStore struct {
	db *DB
}

func NewWatchStore(db *DB) *WatchStore {
	return &WatchStore{db: db}
}

// AddItem inserts a watch item, generating an id when absent. Adding an
// existing SKU updates its URLs instead of duplicating the row.
func (s *WatchStore) AddItem(ctx context.Context, item *models.WatchItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO watch_items (id, sku, source_url, listing_url, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sku) DO UPDATE
		SET source_url = EXCLUDED.source_url,
		    listing_url = EXCLUDED.listing_url`

	if _, err := s.db.Exec(ctx, query,
		item.ID, item.SKU, item.SourceURL, item.ListingURL, item.AddedAt); err != nil {
		return fmt.Errorf("failed to add watch item: %w", err)
	}
	return nil
}

// GetItem returns one watch item by SKU.
func (s *WatchStore) GetItem(ctx context.Context, sku string) (*models.WatchItem, error) {
	query := `
		SELECT id, sku, source_url, listing_url, added_at
		FROM watch_items
		WHERE sku = $1`

	var item models.WatchItem
	err := s.db.QueryRow(ctx, query, sku).Scan(
		&item.ID, &item.SKU, &item.SourceURL, &item.ListingURL, &item.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get watch item: %w", err)
	}
	return &item, nil
}

// ListItems returns the full watch list in insertion order.
func (s *WatchStore) ListItems(ctx context.Context) ([]*models.WatchItem, error) {
	query := `
		SELECT id, sku, source_url, listing_url, added_at
		FROM watch_items
		ORDER BY added_at`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch items: %w", err)
	}
	defer rows.Close()

	var items []*models.WatchItem
	for rows.Next() {
		var item models.WatchItem
		if err := rows.Scan(
			&item.ID, &item.SKU, &item.SourceURL, &item.ListingURL, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// RemoveItem deletes a watch item and its observation.
func (s *WatchStore) RemoveItem(ctx context.Context, sku string) error {
	return s.db.Transaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM observations WHERE sku = $1`, sku); err != nil {
			return fmt.Errorf("failed to delete observation: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM watch_items WHERE sku = $1`, sku)
		if err != nil {
			return fmt.Errorf("failed to delete watch item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SaveObservation upserts the latest observation for a SKU.
func (s *WatchStore) SaveObservation(ctx context.Context, obs *models.Observation) error {
	if obs.CheckedAt.IsZero() {
		obs.CheckedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO observations (sku, stock, stock_label, qty, price, last_price, checked_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (sku) DO UPDATE
		SET stock = EXCLUDED.stock,
		    stock_label = EXCLUDED.stock_label,
		    qty = EXCLUDED.qty,
		    price = EXCLUDED.price,
		    last_price = EXCLUDED.last_price,
		    checked_at = EXCLUDED.checked_at,
		    note = EXCLUDED.note`

	if _, err := s.db.Exec(ctx, query,
		obs.SKU, string(obs.Stock), obs.StockLabel, obs.Qty,
		obs.Price, obs.LastPrice, obs.CheckedAt, obs.Note); err != nil {
		return fmt.Errorf("failed to save observation: %w", err)
	}
	return nil
}

// GetObservation returns the latest observation for a SKU.
func (s *WatchStore) GetObservation(ctx context.Context, sku string) (*models.Observation, error) {
	query := `
		SELECT sku, stock, stock_label, qty, price, last_price, checked_at, note
		FROM observations
		WHERE sku = $1`

	var obs models.Observation
	var stock string
	err := s.db.QueryRow(ctx, query, sku).Scan(
		&obs.SKU, &stock, &obs.StockLabel, &obs.Qty,
		&obs.Price, &obs.LastPrice, &obs.CheckedAt, &obs.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get observation: %w", err)
	}
	obs.Stock = models.StockState(stock)
	return &obs, nil
}

// Stats returns aggregate counts for the status endpoint.
func (s *WatchStore) Stats(ctx context.Context) (map[string]int64, error) {
	stats := make(map[string]int64)

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM watch_items`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count watch items: %w", err)
	}
	stats["watch_items"] = total

	rows, err := s.db.Query(ctx, `SELECT stock, COUNT(*) FROM observations GROUP BY stock`)
	if err != nil {
		return nil, fmt.Errorf("failed to count observations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stock string
		var n int64
		if err := rows.Scan(&stock, &n); err != nil {
			return nil, fmt.Errorf("failed to scan stock count: %w", err)
		}
		stats["stock_"+stock] = n
	}
	return stats, rows.Err()
}
