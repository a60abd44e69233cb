package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/shopkeeper_test?parseTime=true"

// SetupTestDB opens the MySQL test database named by TEST_DB_DSN, defaulting to a local
// 'shopkeeper_test'. The test is skipped when the database is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties every table and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}

	for _, table := range []string{"Stock", "ShelfSlots", "Shelves", "Products"} {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema from migrations/001_init.sql if it is missing.
func SetupTestTables(t *testing.T, db *sql.DB) {
	t.Helper()

	tables := []struct {
		name  string
		query string
	}{
		{"Shelves", `
		CREATE TABLE IF NOT EXISTS Shelves (
			shelfId BIGINT UNSIGNED NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL DEFAULT ''
		)`},
		{"ShelfSlots", `
		CREATE TABLE IF NOT EXISTS ShelfSlots (
			shelfId BIGINT UNSIGNED NOT NULL,
			position INT NOT NULL,
			productId BIGINT UNSIGNED NULL,
			PRIMARY KEY (shelfId, position),
			INDEX idx_slot_product (productId),
			FOREIGN KEY (shelfId) REFERENCES Shelves(shelfId) ON DELETE CASCADE
		)`},
		{"Products", `
		CREATE TABLE IF NOT EXISTS Products (
			productId BIGINT UNSIGNED NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			category VARCHAR(32) NOT NULL,
			price DECIMAL(10,2) NOT NULL DEFAULT 0.00,
			shelfId BIGINT UNSIGNED NULL,
			INDEX idx_category (category),
			INDEX idx_shelf (shelfId)
		)`},
		{"Stock", `
		CREATE TABLE IF NOT EXISTS Stock (
			productId BIGINT UNSIGNED NOT NULL,
			day DATE NOT NULL,
			inStock INT NOT NULL DEFAULT 0,
			onTheShelf INT NOT NULL DEFAULT 0,
			purchasedToday INT NOT NULL DEFAULT 0,
			PRIMARY KEY (productId, day)
		)`},
	}

	for _, tbl := range tables {
		if _, err := db.Exec(tbl.query); err != nil {
			t.Fatalf("failed to create table %s: %v", tbl.name, err)
		}
	}
}

// InsertShelf creates a shelf with the given slots; nil entries are empty slots.
func InsertShelf(t *testing.T, db *sql.DB, shelfID uint64, slots ...*uint64) {
	t.Helper()

	if _, err := db.Exec(`INSERT INTO Shelves (shelfId) VALUES (?)`, shelfID); err != nil {
		t.Fatalf("failed to insert shelf %d: %v", shelfID, err)
	}
	for pos, productID := range slots {
		if _, err := db.Exec(`INSERT INTO ShelfSlots (shelfId, position, productId) VALUES (?, ?, ?)`, shelfID, pos, productID); err != nil {
			t.Fatalf("failed to insert slot %d of shelf %d: %v", pos, shelfID, err)
		}
	}
}

// InsertStock adds one stock row; day is formatted YYYY-MM-DD.
func InsertStock(t *testing.T, db *sql.DB, productID uint64, day string, inStock, onTheShelf, purchasedToday int) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO Stock (productId, day, inStock, onTheShelf, purchasedToday) VALUES (?, ?, ?, ?, ?)`,
		productID, day, inStock, onTheShelf, purchasedToday,
	)
	if err != nil {
		t.Fatalf("failed to insert stock for product %d: %v", productID, err)
	}
}

// WithTx runs fn inside a transaction that is committed when fn succeeds.
func WithTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) error {
	t.Helper()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
