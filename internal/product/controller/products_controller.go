package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopkeeper/internal/domain"
	"shopkeeper/internal/dto"
	apperrors "shopkeeper/internal/errors"
)

const RequestIDHeader = "X-Request-Id"

const maxBodyBytes = 1 << 20

type ProductsUseCase interface {
	ListProducts(ctx context.Context, category *domain.Category) ([]dto.ProductStockResponse, error)
	GetProduct(ctx context.Context, id uint64) (*dto.ProductStockResponse, error)
	CreateProduct(ctx context.Context, req dto.ProductRequest) (*dto.ProductDTO, error)
	UpdateProduct(ctx context.Context, id uint64, req dto.ProductRequest) (*dto.ProductDTO, error)
	DeleteProduct(ctx context.Context, id uint64) error
}

type ProductsController struct {
	useCase ProductsUseCase
	logger  *zap.Logger
}

func NewProductsController(useCase ProductsUseCase, logger *zap.Logger) *ProductsController {
	return &ProductsController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *ProductsController) ListProducts(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace(r)

	var category *domain.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		cat := domain.Category(raw)
		if !cat.IsValid() {
			c.writeValidationError(w, "invalid category", categoryDetail("category"))
			return
		}
		category = &cat
	}

	resp, err := c.useCase.ListProducts(r.Context(), category)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *ProductsController) GetProduct(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace(r)

	productID, ok := c.productIDParam(w, r, logger)
	if !ok {
		return
	}

	resp, err := c.useCase.GetProduct(r.Context(), productID)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *ProductsController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace(r)

	req, ok := c.decodeProductRequest(w, r, logger)
	if !ok {
		return
	}

	created, err := c.useCase.CreateProduct(r.Context(), req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeCreated(w, created)
}

// UpdateProduct answers 204 for an in-place update and 201 with the new location when the
// body carries a different productId than the path.
func (c *ProductsController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace(r)

	productID, ok := c.productIDParam(w, r, logger)
	if !ok {
		return
	}

	req, ok := c.decodeProductRequest(w, r, logger)
	if !ok {
		return
	}

	created, err := c.useCase.UpdateProduct(r.Context(), productID, req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	if created != nil {
		c.writeCreated(w, created)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ProductsController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.trace(r)

	productID, ok := c.productIDParam(w, r, logger)
	if !ok {
		return
	}

	if err := c.useCase.DeleteProduct(r.Context(), productID); err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *ProductsController) trace(r *http.Request) (string, *zap.Logger) {
	traceID := r.Header.Get(RequestIDHeader)
	if traceID == "" {
		traceID = uuid.New().String()
	}
	return traceID, c.logger.With(zap.String("traceId", traceID))
}

func (c *ProductsController) productIDParam(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uint64, bool) {
	raw := chi.URLParam(r, "productId")
	productID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || productID == 0 {
		logger.Warn("invalid productId in path", zap.String("productId", raw))
		c.writeValidationError(w, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return 0, false
	}
	return productID, true
}

func (c *ProductsController) decodeProductRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (dto.ProductRequest, bool) {
	var req dto.ProductRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("request body too large", zap.Int64("limit", tooLarge.Limit))
			c.writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error":   "PAYLOAD_TOO_LARGE",
				"message": fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit),
			})
			return req, false
		}
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return req, false
	}

	if err := validateProductRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return req, false
	}

	return req, true
}

func validateProductRequest(req dto.ProductRequest) error {
	var details []apperrors.ValidationDetail

	if req.ProductID == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
	}

	if !domain.Category(req.Category).IsValid() {
		details = append(details, categoryDetail("category"))
	}

	if req.Price.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be non-negative",
		})
	}

	if req.ShelfID != nil && *req.ShelfID == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "shelfId",
			Message: "shelfId must be a positive integer or null",
		})
	}

	if req.HasShelfObject() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "shelf",
			Message: "shelf must be null; set shelfId and edit the shelf slots separately",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func categoryDetail(field string) apperrors.ValidationDetail {
	names := make([]string, 0, len(domain.Categories()))
	for _, cat := range domain.Categories() {
		names = append(names, string(cat))
	}
	return apperrors.ValidationDetail{
		Field:   field,
		Message: "category must be one of " + strings.Join(names, ", "),
	}
}

func (c *ProductsController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		logger.Warn("transaction gave up after deadlocks", zap.Error(err))
		c.writeErrorResponse(w, traceID, http.StatusConflict, "DEADLOCK", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *ProductsController) writeCreated(w http.ResponseWriter, product *dto.ProductDTO) {
	w.Header().Set("Location", fmt.Sprintf("/products/%d", product.ProductID))
	c.writeJSON(w, http.StatusCreated, product)
}

func (c *ProductsController) writeErrorResponse(w http.ResponseWriter, traceID string, statusCode int, code string, message string) {
	c.writeJSON(w, statusCode, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *ProductsController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *ProductsController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
