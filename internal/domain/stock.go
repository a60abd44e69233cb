package domain

import "time"

// Stock is the count snapshot of one product for one day.
type Stock struct {
	ProductID      uint64
	Day            time.Time
	InStock        int
	OnTheShelf     int
	PurchasedToday int
}

// ZeroStock is what a product without any stock rows reports: all counts zero, dated today.
func ZeroStock(productID uint64, now time.Time) Stock {
	return Stock{
		ProductID: productID,
		Day:       Today(now),
	}
}

func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
