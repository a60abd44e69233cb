package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shopkeeper/internal/domain"
	apperrors "shopkeeper/internal/errors"
	productrepo "shopkeeper/internal/product/repository"
	stockrepo "shopkeeper/internal/stock/repository"
)

type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type Repository interface {
	FindAll(ctx context.Context, category *domain.Category) ([]domain.Product, error)
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint64) (*domain.Product, error)
	ExistsByID(ctx context.Context, tx *sql.Tx, id uint64) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, p domain.Product) error
	Update(ctx context.Context, tx *sql.Tx, p domain.Product) error
	Delete(ctx context.Context, tx *sql.Tx, id uint64) error
}

type ShelfRepository interface {
	FindByID(ctx context.Context, tx *sql.Tx, id uint64) (*domain.Shelf, error)
	ReassignProduct(ctx context.Context, tx *sql.Tx, oldID, newID uint64) (int64, error)
	ClearProduct(ctx context.Context, tx *sql.Tx, productID uint64) (int64, error)
}

type StockRepository interface {
	FindLatestByProductID(ctx context.Context, productID uint64) (*domain.Stock, error)
	FindLatestByProductIDs(ctx context.Context, productIDs []uint64) (map[uint64]domain.Stock, error)
	ReassignProduct(ctx context.Context, tx *sql.Tx, oldID, newID uint64) (int64, error)
	DeleteByProductID(ctx context.Context, tx *sql.Tx, productID uint64) (int64, error)
}

// ProductService owns the product rows and keeps the shelf slots and stock rows that
// reference them consistent. Every mutation runs in a single transaction.
type ProductService struct {
	txManager TransactionManager
	repo      Repository
	shelfRepo ShelfRepository
	stockRepo StockRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewProductService(
	txManager TransactionManager,
	repo Repository,
	shelfRepo ShelfRepository,
	stockRepo StockRepository,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		txManager: txManager,
		repo:      repo,
		shelfRepo: shelfRepo,
		stockRepo: stockRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ProductService) ListProducts(ctx context.Context, category *domain.Category) ([]domain.ProductWithStock, error) {
	products, err := s.repo.FindAll(ctx, category)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	latest, err := s.stockRepo.FindLatestByProductIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := make([]domain.ProductWithStock, 0, len(products))
	for _, p := range products {
		stock, ok := latest[p.ID]
		if !ok {
			stock = domain.ZeroStock(p.ID, now)
		}
		result = append(result, domain.ProductWithStock{Product: p, Stock: stock})
	}

	return result, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint64) (*domain.ProductWithStock, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stock, err := s.stockRepo.FindLatestByProductID(ctx, id)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
		zero := domain.ZeroStock(id, s.now())
		stock = &zero
	}

	return &domain.ProductWithStock{Product: *product, Stock: *stock}, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.create(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.Uint64("productId", p.ID))
	return &p, nil
}

func (s *ProductService) create(ctx context.Context, tx *sql.Tx, p domain.Product) error {
	exists, err := s.repo.ExistsByID(ctx, tx, p.ID)
	if err != nil {
		return err
	}
	if exists {
		return duplicateProductError(p.ID)
	}

	if err := s.checkShelf(ctx, tx, p.ShelfID); err != nil {
		return err
	}

	if err := s.repo.Insert(ctx, tx, p); err != nil {
		if errors.Is(err, productrepo.ErrDuplicateID) {
			return duplicateProductError(p.ID)
		}
		return err
	}
	return nil
}

// UpdateProduct overwrites the product in place when p.ID equals id. When the ids differ
// the product is renumbered: p is created, every shelf slot and stock row referencing id
// moves to p.ID, and the old row is removed. renumbered reports which path ran.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint64, p domain.Product) (updated *domain.Product, renumbered bool, err error) {
	if p.ID != id {
		return s.renumber(ctx, id, p)
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.repo.FindByIDForUpdate(ctx, tx, id); err != nil {
			return err
		}
		if err := s.checkShelf(ctx, tx, p.ShelfID); err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, p)
	})
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("product updated", zap.Uint64("productId", id))
	return &p, false, nil
}

func (s *ProductService) renumber(ctx context.Context, oldID uint64, p domain.Product) (*domain.Product, bool, error) {
	var slotsMoved, stockMoved int64

	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.repo.FindByIDForUpdate(ctx, tx, oldID); err != nil {
			return err
		}

		if err := s.create(ctx, tx, p); err != nil {
			return err
		}

		var err error
		slotsMoved, err = s.shelfRepo.ReassignProduct(ctx, tx, oldID, p.ID)
		if err != nil {
			return err
		}

		stockMoved, err = s.stockRepo.ReassignProduct(ctx, tx, oldID, p.ID)
		if err != nil {
			if errors.Is(err, stockrepo.ErrDayCollision) {
				return apperrors.NewValidationError(
					fmt.Sprintf("product %d already has stock recorded for a day product %d also has", p.ID, oldID),
					apperrors.ValidationDetail{Field: "productId", Message: "stock history of both products overlaps"},
				)
			}
			return err
		}

		return s.repo.Delete(ctx, tx, oldID)
	})
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("product renumbered",
		zap.Uint64("oldProductId", oldID),
		zap.Uint64("newProductId", p.ID),
		zap.Int64("shelfSlotsMoved", slotsMoved),
		zap.Int64("stockRowsMoved", stockMoved),
	)
	return &p, true, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uint64) error {
	var slotsCleared, stockDeleted int64

	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.repo.FindByIDForUpdate(ctx, tx, id); err != nil {
			return err
		}

		var err error
		stockDeleted, err = s.stockRepo.DeleteByProductID(ctx, tx, id)
		if err != nil {
			return err
		}

		slotsCleared, err = s.shelfRepo.ClearProduct(ctx, tx, id)
		if err != nil {
			return err
		}

		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deleted",
		zap.Uint64("productId", id),
		zap.Int64("shelfSlotsCleared", slotsCleared),
		zap.Int64("stockRowsDeleted", stockDeleted),
	)
	return nil
}

func (s *ProductService) checkShelf(ctx context.Context, tx *sql.Tx, shelfID *uint64) error {
	if shelfID == nil {
		return nil
	}

	_, err := s.shelfRepo.FindByID(ctx, tx, *shelfID)
	if err == nil {
		return nil
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return apperrors.NewValidationError("The selected shelf does not exist", apperrors.ValidationDetail{
			Field:   "shelfId",
			Message: fmt.Sprintf("shelf %d does not exist", *shelfID),
		})
	}
	return err
}

func duplicateProductError(id uint64) error {
	return apperrors.NewValidationError("A product with the same id already exists", apperrors.ValidationDetail{
		Field:   "productId",
		Message: fmt.Sprintf("product %d already exists", id),
	})
}
