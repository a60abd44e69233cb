package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const DayLayout = "2006-01-02"

// ProductRequest is the body of create and update calls. Shelf is the reverse side of
// the shelf relation and must be left empty; slots are edited through shelves only.
type ProductRequest struct {
	ProductID   uint64          `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ShelfID     *uint64         `json:"shelfId"`
	Shelf       json.RawMessage `json:"shelf,omitempty"`
}

func (r ProductRequest) HasShelfObject() bool {
	raw := bytes.TrimSpace(r.Shelf)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

type ProductDTO struct {
	ProductID   uint64          `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ShelfID     *uint64         `json:"shelfId"`
}

type StockDTO struct {
	ProductID      uint64 `json:"productId"`
	Day            string `json:"day"`
	InStock        int    `json:"inStock"`
	OnTheShelf     int    `json:"onTheShelf"`
	PurchasedToday int    `json:"purchasedToday"`
}

// ProductStockResponse is a product together with its current stock.
type ProductStockResponse struct {
	Product ProductDTO `json:"product"`
	Stock   StockDTO   `json:"stock"`
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
