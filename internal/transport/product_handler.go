package transport

import (
	"net/http"
	"strconv"

	"photo-inventory/internal/apperr"
	"photo-inventory/internal/middleware"
	"photo-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes behind authMiddleware
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/product", h.CreateProduct)
		r.Get("/products", h.ListProducts)
		r.Get("/product/{id}", h.GetProduct)
		r.Put("/product/{id}", h.UpdateProduct)
		r.Delete("/product/{id}", h.DeleteProduct)
	})
}

// CreateProduct handles POST /product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	var input service.ProductInput
	if err := middleware.DecodeJSON(w, r, &input); err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	product, err := h.productService.Create(r.Context(), userID, input)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int64("user_id", userID),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	products, err := h.productService.List(r.Context(), userID)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /product/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, err := productIDParam(r)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	product, err := h.productService.Get(r.Context(), id, userID)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// UpdateProduct handles PUT /product/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, err := productIDParam(r)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	var input service.ProductInput
	if err := middleware.DecodeJSON(w, r, &input); err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	product, err := h.productService.Update(r.Context(), id, userID, input)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	h.logger.Info("Product updated", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /product/{id} and returns the removed product
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, err := productIDParam(r)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	product, err := h.productService.Delete(r.Context(), id, userID)
	if err != nil {
		middleware.RespondWithAppError(w, h.logger, err)
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func productIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid product ID",
			apperr.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	return id, nil
}
