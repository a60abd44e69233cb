package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shopkeeper/internal/domain"
	apperrors "shopkeeper/internal/errors"
	"shopkeeper/internal/infrastructure/mysql"
)

// ErrDayCollision is returned when moving stock rows onto a product that already has a row for the same day.
var ErrDayCollision = errors.New("stock row already exists for that product and day")

type MySQLStockRepository struct {
	db *sql.DB
}

func NewMySQLStockRepository(db *sql.DB) *MySQLStockRepository {
	return &MySQLStockRepository{db: db}
}

// FindLatestByProductID returns the stock row with the most recent day.
func (r *MySQLStockRepository) FindLatestByProductID(ctx context.Context, productID uint64) (*domain.Stock, error) {
	query := `
		SELECT productId, day, inStock, onTheShelf, purchasedToday
		FROM Stock
		WHERE productId = ?
		ORDER BY day DESC
		LIMIT 1`

	var s domain.Stock
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&s.ProductID, &s.Day, &s.InStock, &s.OnTheShelf, &s.PurchasedToday,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no stock recorded for product %d", productID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest stock: %w", err)
	}

	return &s, nil
}

// maxIDsPerQuery keeps each IN list far below the 65,535 placeholders MySQL accepts per statement.
var maxIDsPerQuery = 1000

// FindLatestByProductIDs returns the most recent stock row per product. Products without
// any stock row are absent from the map.
func (r *MySQLStockRepository) FindLatestByProductIDs(ctx context.Context, productIDs []uint64) (map[uint64]domain.Stock, error) {
	latest := make(map[uint64]domain.Stock, len(productIDs))

	for start := 0; start < len(productIDs); start += maxIDsPerQuery {
		end := min(start+maxIDsPerQuery, len(productIDs))
		if err := r.findLatestChunk(ctx, productIDs[start:end], latest); err != nil {
			return nil, err
		}
	}

	return latest, nil
}

func (r *MySQLStockRepository) findLatestChunk(ctx context.Context, productIDs []uint64, latest map[uint64]domain.Stock) error {
	placeholders := make([]string, len(productIDs))
	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT s.productId, s.day, s.inStock, s.onTheShelf, s.purchasedToday
		FROM Stock s
		JOIN (
			SELECT productId, MAX(day) AS day
			FROM Stock
			WHERE productId IN (%s)
			GROUP BY productId
		) newest ON newest.productId = s.productId AND newest.day = s.day`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying latest stock: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Stock
		if err := rows.Scan(&s.ProductID, &s.Day, &s.InStock, &s.OnTheShelf, &s.PurchasedToday); err != nil {
			return fmt.Errorf("scanning stock row: %w", err)
		}
		latest[s.ProductID] = s
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating stock rows: %w", err)
	}

	return nil
}

// ReassignProduct moves the whole stock history of oldID onto newID.
func (r *MySQLStockRepository) ReassignProduct(ctx context.Context, tx *sql.Tx, oldID, newID uint64) (int64, error) {
	result, err := tx.ExecContext(ctx, `UPDATE Stock SET productId = ? WHERE productId = ?`, newID, oldID)
	if mysql.IsDuplicateEntry(err) {
		return 0, fmt.Errorf("reassigning stock of product %d: %w", oldID, ErrDayCollision)
	}
	if err != nil {
		return 0, fmt.Errorf("reassigning stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected, nil
}

func (r *MySQLStockRepository) DeleteByProductID(ctx context.Context, tx *sql.Tx, productID uint64) (int64, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM Stock WHERE productId = ?`, productID)
	if err != nil {
		return 0, fmt.Errorf("deleting stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected, nil
}
