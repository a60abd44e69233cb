package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"shopkeeper/internal/domain"
	apperrors "shopkeeper/internal/errors"
	productrepo "shopkeeper/internal/product/repository"
	stockrepo "shopkeeper/internal/stock/repository"
)

// memStore is an in-memory stand-in for the Products, Shelves and Stock tables.
type memStore struct {
	products map[uint64]domain.Product
	shelves  map[uint64][]*uint64
	stock    []domain.Stock

	// failure injection
	failStockDelete   error
	failShelfReassign error
	skipExistsCheck   bool
}

func newMemStore() *memStore {
	return &memStore{
		products: map[uint64]domain.Product{},
		shelves:  map[uint64][]*uint64{},
	}
}

func ptr(v uint64) *uint64 {
	return &v
}

func (m *memStore) addShelf(id uint64, slots ...*uint64) {
	m.shelves[id] = slots
}

func (m *memStore) snapshot() *memStore {
	c := *m
	c.products = make(map[uint64]domain.Product, len(m.products))
	for k, v := range m.products {
		c.products[k] = v
	}
	c.shelves = make(map[uint64][]*uint64, len(m.shelves))
	for k, slots := range m.shelves {
		copied := make([]*uint64, len(slots))
		for i, slot := range slots {
			if slot != nil {
				copied[i] = ptr(*slot)
			}
		}
		c.shelves[k] = copied
	}
	c.stock = append([]domain.Stock(nil), m.stock...)
	return &c
}

func (m *memStore) restore(from *memStore) {
	m.products = from.products
	m.shelves = from.shelves
	m.stock = from.stock
}

// fakeTxManager commits by keeping the mutated store and rolls back by restoring a snapshot.
type fakeTxManager struct {
	store *memStore
	calls int
}

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	f.calls++
	before := f.store.snapshot()
	if err := fn(ctx, nil); err != nil {
		f.store.restore(before)
		return err
	}
	return nil
}

type fakeProductRepo struct{ *memStore }

func (r fakeProductRepo) FindAll(ctx context.Context, category *domain.Category) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range r.products {
		if category == nil || p.Category == *category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeProductRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	return &p, nil
}

func (r fakeProductRepo) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint64) (*domain.Product, error) {
	return r.FindByID(ctx, id)
}

func (r fakeProductRepo) ExistsByID(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	if r.skipExistsCheck {
		return false, nil
	}
	_, ok := r.products[id]
	return ok, nil
}

func (r fakeProductRepo) Insert(ctx context.Context, tx *sql.Tx, p domain.Product) error {
	if _, ok := r.products[p.ID]; ok {
		return fmt.Errorf("inserting product %d: %w", p.ID, productrepo.ErrDuplicateID)
	}
	r.products[p.ID] = p
	return nil
}

func (r fakeProductRepo) Update(ctx context.Context, tx *sql.Tx, p domain.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r fakeProductRepo) Delete(ctx context.Context, tx *sql.Tx, id uint64) error {
	if _, ok := r.products[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	delete(r.products, id)
	return nil
}

type fakeShelfRepo struct{ *memStore }

func (r fakeShelfRepo) FindByID(ctx context.Context, tx *sql.Tx, id uint64) (*domain.Shelf, error) {
	slots, ok := r.shelves[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("shelf with id %d not found", id))
	}
	return &domain.Shelf{ID: id, Slots: slots}, nil
}

func (r fakeShelfRepo) ReassignProduct(ctx context.Context, tx *sql.Tx, oldID, newID uint64) (int64, error) {
	if r.failShelfReassign != nil {
		return 0, r.failShelfReassign
	}
	var n int64
	for _, slots := range r.shelves {
		for i, slot := range slots {
			if slot != nil && *slot == oldID {
				slots[i] = ptr(newID)
				n++
			}
		}
	}
	return n, nil
}

func (r fakeShelfRepo) ClearProduct(ctx context.Context, tx *sql.Tx, productID uint64) (int64, error) {
	var n int64
	for _, slots := range r.shelves {
		for i, slot := range slots {
			if slot != nil && *slot == productID {
				slots[i] = nil
				n++
			}
		}
	}
	return n, nil
}

type fakeStockRepo struct{ *memStore }

func (r fakeStockRepo) FindLatestByProductID(ctx context.Context, productID uint64) (*domain.Stock, error) {
	latest, ok := r.latest()[productID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no stock recorded for product %d", productID))
	}
	return &latest, nil
}

func (r fakeStockRepo) FindLatestByProductIDs(ctx context.Context, productIDs []uint64) (map[uint64]domain.Stock, error) {
	all := r.latest()
	out := map[uint64]domain.Stock{}
	for _, id := range productIDs {
		if s, ok := all[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (r fakeStockRepo) latest() map[uint64]domain.Stock {
	out := map[uint64]domain.Stock{}
	for _, s := range r.stock {
		if cur, ok := out[s.ProductID]; !ok || s.Day.After(cur.Day) {
			out[s.ProductID] = s
		}
	}
	return out
}

func (r fakeStockRepo) ReassignProduct(ctx context.Context, tx *sql.Tx, oldID, newID uint64) (int64, error) {
	days := map[string]bool{}
	for _, s := range r.stock {
		if s.ProductID == newID {
			days[s.Day.Format("2006-01-02")] = true
		}
	}
	var n int64
	for i := range r.stock {
		if r.stock[i].ProductID != oldID {
			continue
		}
		if days[r.stock[i].Day.Format("2006-01-02")] {
			return 0, fmt.Errorf("reassigning stock of product %d: %w", oldID, stockrepo.ErrDayCollision)
		}
		r.stock[i].ProductID = newID
		n++
	}
	return n, nil
}

func (r fakeStockRepo) DeleteByProductID(ctx context.Context, tx *sql.Tx, productID uint64) (int64, error) {
	if r.failStockDelete != nil {
		return 0, r.failStockDelete
	}
	kept := r.stock[:0]
	var n int64
	for _, s := range r.stock {
		if s.ProductID == productID {
			n++
			continue
		}
		kept = append(kept, s)
	}
	r.stock = kept
	return n, nil
}
