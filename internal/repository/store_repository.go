package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/itplace/locator-backend-go/internal/database"
	"github.com/itplace/locator-backend-go/internal/models"
)

// StoreRepository handles database operations for the store catalog
type StoreRepository struct {
	db *sql.DB
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *sql.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// List returns every store in catalog order
func (r *StoreRepository) List(ctx context.Context) ([]models.Store, error) {
	query := `SELECT id, name, benefit, latitude, longitude, geohash
		FROM stores ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	stores := make([]models.Store, 0)
	for rows.Next() {
		var s models.Store
		err := rows.Scan(
			&s.ID, &s.Name, &s.Benefit,
			&s.Location.Latitude, &s.Location.Longitude, &s.Geohash,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stores: %w", err)
	}

	return stores, nil
}

// Count returns the number of stored stores
func (r *StoreRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stores").Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count stores: %w", err)
	}
	return total, nil
}

// ReplaceAll replaces the whole catalog in one transaction and records the import
func (r *StoreRepository) ReplaceAll(ctx context.Context, stores []models.Store, source string) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM stores"); err != nil {
			return fmt.Errorf("failed to clear stores: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO stores
			(id, position, name, benefit, latitude, longitude, geohash)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare store insert: %w", err)
		}
		defer stmt.Close()

		for i, s := range stores {
			_, err := stmt.ExecContext(ctx,
				s.ID, i, s.Name, s.Benefit,
				s.Location.Latitude, s.Location.Longitude, s.Geohash,
			)
			if err != nil {
				return fmt.Errorf("failed to insert store %s: %w", s.ID, err)
			}
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO catalog_imports (source, store_count) VALUES (?, ?)",
			source, len(stores))
		if err != nil {
			return fmt.Errorf("failed to record catalog import: %w", err)
		}
		return nil
	})
}

// LastImport returns the most recent catalog import, or nil when none exists
func (r *StoreRepository) LastImport(ctx context.Context) (*models.CatalogImport, error) {
	query := `SELECT id, source, store_count, imported_at
		FROM catalog_imports ORDER BY id DESC LIMIT 1`

	var imp models.CatalogImport
	err := r.db.QueryRowContext(ctx, query).Scan(&imp.ID, &imp.Source, &imp.StoreCount, &imp.ImportedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last catalog import: %w", err)
	}
	return &imp, nil
}
