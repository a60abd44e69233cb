package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopkeeper/internal/domain"
	apperrors "shopkeeper/internal/errors"
	"shopkeeper/internal/infrastructure/mysql"
)

// ErrDuplicateID is returned by Insert when the primary key is already taken.
var ErrDuplicateID = errors.New("product id already exists")

const productColumns = `productId, name, description, category, price, shelfId`

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.ShelfID)
	return p, err
}

func (r *MySQLRepository) FindAll(ctx context.Context, category *domain.Category) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Products`
	var args []any
	if category != nil {
		query += ` WHERE category = ?`
		args = append(args, *category)
	}
	query += ` ORDER BY productId`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Products WHERE productId = ?`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return &p, nil
}

// FindByIDForUpdate locks the product row until tx ends.
func (r *MySQLRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Products WHERE productId = ? FOR UPDATE`

	p, err := scanProduct(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("locking product by id: %w", err)
	}

	return &p, nil
}

func (r *MySQLRepository) ExistsByID(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM Products WHERE productId = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking product existence: %w", err)
	}
	return exists, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, tx *sql.Tx, p domain.Product) error {
	query := `INSERT INTO Products (` + productColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Category, p.Price, p.ShelfID)
	if mysql.IsDuplicateEntry(err) {
		return fmt.Errorf("inserting product %d: %w", p.ID, ErrDuplicateID)
	}
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

// Update overwrites every scalar column of the row identified by p.ID.
func (r *MySQLRepository) Update(ctx context.Context, tx *sql.Tx, p domain.Product) error {
	query := `
		UPDATE Products
		SET name = ?, description = ?, category = ?, price = ?, shelfId = ?
		WHERE productId = ?`

	if _, err := tx.ExecContext(ctx, query, p.Name, p.Description, p.Category, p.Price, p.ShelfID, p.ID); err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, tx *sql.Tx, id uint64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM Products WHERE productId = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}

	return nil
}
