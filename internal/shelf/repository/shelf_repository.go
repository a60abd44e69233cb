package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shopkeeper/internal/domain"
	apperrors "shopkeeper/internal/errors"
)

// MySQLShelfRepository reads shelves and rewrites the product references held in their slots.
// Shelves themselves are created and resized elsewhere.
type MySQLShelfRepository struct {
	db *sql.DB
}

func NewMySQLShelfRepository(db *sql.DB) *MySQLShelfRepository {
	return &MySQLShelfRepository{db: db}
}

// FindByID loads the shelf with its slots in position order and holds a shared lock on
// the shelf row, so the shelf cannot disappear before tx commits.
func (r *MySQLShelfRepository) FindByID(ctx context.Context, tx *sql.Tx, id uint64) (*domain.Shelf, error) {
	query := `
		SELECT s.shelfId, sl.position, sl.productId
		FROM Shelves s
		LEFT JOIN ShelfSlots sl ON sl.shelfId = s.shelfId
		WHERE s.shelfId = ?
		ORDER BY sl.position
		LOCK IN SHARE MODE`

	rows, err := tx.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying shelf by id: %w", err)
	}
	defer rows.Close()

	var shelf *domain.Shelf
	for rows.Next() {
		var (
			shelfID   uint64
			position  sql.NullInt64
			productID *uint64
		)
		if err := rows.Scan(&shelfID, &position, &productID); err != nil {
			return nil, fmt.Errorf("scanning shelf row: %w", err)
		}
		if shelf == nil {
			shelf = &domain.Shelf{ID: shelfID, Slots: []*uint64{}}
		}
		if position.Valid {
			shelf.Slots = append(shelf.Slots, productID)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shelf rows: %w", err)
	}

	if shelf == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("shelf with id %d not found", id))
	}

	return shelf, nil
}

// ReassignProduct points every slot holding oldID at newID and returns the number of slots changed.
func (r *MySQLShelfRepository) ReassignProduct(ctx context.Context, tx *sql.Tx, oldID, newID uint64) (int64, error) {
	result, err := tx.ExecContext(ctx, `UPDATE ShelfSlots SET productId = ? WHERE productId = ?`, newID, oldID)
	if err != nil {
		return 0, fmt.Errorf("reassigning shelf slots: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected, nil
}

// ClearProduct empties every slot holding productID.
func (r *MySQLShelfRepository) ClearProduct(ctx context.Context, tx *sql.Tx, productID uint64) (int64, error) {
	result, err := tx.ExecContext(ctx, `UPDATE ShelfSlots SET productId = NULL WHERE productId = ?`, productID)
	if err != nil {
		return 0, fmt.Errorf("clearing shelf slots: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected, nil
}
