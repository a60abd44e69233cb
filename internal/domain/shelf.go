package domain

// Shelf holds a fixed number of slots; a slot references a product but does not own it.
type Shelf struct {
	ID    uint64
	Slots []*uint64
}
