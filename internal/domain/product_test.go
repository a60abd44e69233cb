package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCategory_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		valid    bool
	}{
		{name: "beverages", category: CategoryBeverages, valid: true},
		{name: "other", category: CategoryOther, valid: true},
		{name: "empty", category: "", valid: false},
		{name: "wrong case", category: "beverages", valid: false},
		{name: "unknown", category: "Electronics", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.category.IsValid())
		})
	}
}

func TestCategories_ReturnsCopy(t *testing.T) {
	list := Categories()
	assert.Contains(t, list, CategoryDairy)

	list[0] = "Mutated"
	assert.Equal(t, CategoryBeverages, Categories()[0])
}

func TestProduct_NullableShelf(t *testing.T) {
	shelfID := uint64(5)
	product := Product{
		ID:       1,
		Name:     "Cola",
		Category: CategoryBeverages,
		Price:    decimal.RequireFromString("1.99"),
		ShelfID:  &shelfID,
	}

	assert.Equal(t, uint64(5), *product.ShelfID)

	product.ShelfID = nil
	assert.Nil(t, product.ShelfID)
}

func TestZeroStock(t *testing.T) {
	now := time.Date(2024, 1, 2, 17, 45, 12, 0, time.UTC)

	stock := ZeroStock(42, now)

	assert.Equal(t, uint64(42), stock.ProductID)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), stock.Day)
	assert.Zero(t, stock.InStock)
	assert.Zero(t, stock.OnTheShelf)
	assert.Zero(t, stock.PurchasedToday)
}

func TestToday_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, 1, 2, 1, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Today(now))
}
