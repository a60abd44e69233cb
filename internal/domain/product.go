package domain

import "github.com/shopspring/decimal"

type Category string

const (
	CategoryBeverages Category = "Beverages"
	CategoryBakery    Category = "Bakery"
	CategoryDairy     Category = "Dairy"
	CategoryProduce   Category = "Produce"
	CategoryMeat      Category = "Meat"
	CategoryFrozen    Category = "Frozen"
	CategoryPantry    Category = "Pantry"
	CategoryHousehold Category = "Household"
	CategoryOther     Category = "Other"
)

var categories = []Category{
	CategoryBeverages,
	CategoryBakery,
	CategoryDairy,
	CategoryProduce,
	CategoryMeat,
	CategoryFrozen,
	CategoryPantry,
	CategoryHousehold,
	CategoryOther,
}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product ids are assigned by the client, never by the database.
type Product struct {
	ID          uint64
	Name        string
	Description string
	Category    Category
	Price       decimal.Decimal
	ShelfID     *uint64
}

// ProductWithStock pairs a product with its current stock.
type ProductWithStock struct {
	Product Product
	Stock   Stock
}
