package usecase

import (
	"context"

	"shopkeeper/internal/domain"
	"shopkeeper/internal/dto"
)

type Service interface {
	ListProducts(ctx context.Context, category *domain.Category) ([]domain.ProductWithStock, error)
	GetProduct(ctx context.Context, id uint64) (*domain.ProductWithStock, error)
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uint64, p domain.Product) (*domain.Product, bool, error)
	DeleteProduct(ctx context.Context, id uint64) error
}

// ProductsUseCase translates between the wire DTOs and the domain model.
type ProductsUseCase struct {
	service Service
}

func NewProductsUseCase(service Service) *ProductsUseCase {
	return &ProductsUseCase{service: service}
}

func (uc *ProductsUseCase) ListProducts(ctx context.Context, category *domain.Category) ([]dto.ProductStockResponse, error) {
	found, err := uc.service.ListProducts(ctx, category)
	if err != nil {
		return nil, err
	}

	products := make([]dto.ProductStockResponse, 0, len(found))
	for _, ps := range found {
		products = append(products, toProductStockResponse(ps))
	}

	return products, nil
}

func (uc *ProductsUseCase) GetProduct(ctx context.Context, id uint64) (*dto.ProductStockResponse, error) {
	ps, err := uc.service.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toProductStockResponse(*ps)
	return &resp, nil
}

func (uc *ProductsUseCase) CreateProduct(ctx context.Context, req dto.ProductRequest) (*dto.ProductDTO, error) {
	created, err := uc.service.CreateProduct(ctx, toDomainProduct(req))
	if err != nil {
		return nil, err
	}

	resp := toProductDTO(*created)
	return &resp, nil
}

// UpdateProduct returns the created product only when the update renumbered it.
func (uc *ProductsUseCase) UpdateProduct(ctx context.Context, id uint64, req dto.ProductRequest) (*dto.ProductDTO, error) {
	updated, renumbered, err := uc.service.UpdateProduct(ctx, id, toDomainProduct(req))
	if err != nil {
		return nil, err
	}
	if !renumbered {
		return nil, nil
	}

	resp := toProductDTO(*updated)
	return &resp, nil
}

func (uc *ProductsUseCase) DeleteProduct(ctx context.Context, id uint64) error {
	return uc.service.DeleteProduct(ctx, id)
}

func toDomainProduct(req dto.ProductRequest) domain.Product {
	return domain.Product{
		ID:          req.ProductID,
		Name:        req.Name,
		Description: req.Description,
		Category:    domain.Category(req.Category),
		Price:       req.Price,
		ShelfID:     req.ShelfID,
	}
}

func toProductDTO(p domain.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    string(p.Category),
		Price:       p.Price,
		ShelfID:     p.ShelfID,
	}
}

func toProductStockResponse(ps domain.ProductWithStock) dto.ProductStockResponse {
	return dto.ProductStockResponse{
		Product: toProductDTO(ps.Product),
		Stock: dto.StockDTO{
			ProductID:      ps.Stock.ProductID,
			Day:            ps.Stock.Day.Format(dto.DayLayout),
			InStock:        ps.Stock.InStock,
			OnTheShelf:     ps.Stock.OnTheShelf,
			PurchasedToday: ps.Stock.PurchasedToday,
		},
	}
}
