package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/service"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
	"github.com/utafrali/shopfront/pkg/httputil"
	"github.com/utafrali/shopfront/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// UpdateProductRequest is the JSON request body for updating a product.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
}

// --- Responses ---

type productResponse struct {
	Success bool            `json:"success"`
	Product *domain.Product `json:"product"`
}

type productsResponse struct {
	Success  bool             `json:"success"`
	Products []domain.Product `json:"products"`
}

type productListResponse struct {
	Success               bool             `json:"success"`
	Products              []domain.Product `json:"products"`
	ProductsCount         int              `json:"productsCount"`
	ResultPerPage         int              `json:"resultPerPage"`
	FilteredProductsCount int              `json:"filteredProductsCount"`
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products.
// Query parameters: keyword, page, and field filters such as category=Laptop
// or price[gte]=100.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListProducts(r.Context(), r.URL.Query())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productListResponse{
		Success:               true,
		Products:              nonNil(result.Products),
		ProductsCount:         result.ProductsCount,
		ResultPerPage:         result.ResultPerPage,
		FilteredProductsCount: result.ProductsCount,
	})
}

// ListAdminProducts handles GET /api/v1/admin/products.
func (h *ProductHandler) ListAdminProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListAllProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productsResponse{Success: true, Products: nonNil(products)})
}

// GetProduct handles GET /api/v1/product/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productResponse{Success: true, Product: product})
}

// CreateProduct handles POST /api/v1/admin/product/new (multipart/form-data).
// Form fields: name, description, price, category, stock and one or more
// images.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	images, err := formImages(r.MultipartForm, "images")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	price, err := formFloat(r, "price")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	stock, err := formInt(r, "stock")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	input := &service.CreateProductInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Images:      images,
		CreatedBy:   userFromContext(r.Context()).ID,
	}
	if price != nil {
		input.Price = *price
	}
	if stock != nil {
		input.Stock = *stock
	}

	product, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, productResponse{Success: true, Product: product})
}

// UpdateProduct handles PUT /api/v1/admin/product/{id}. The body is either
// JSON or multipart; images sent in a multipart body replace the existing
// ones.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var (
		input *service.UpdateProductInput
		err   error
	)
	if isMultipart(r) {
		input, err = updateInputFromForm(w, r)
	} else {
		input, err = updateInputFromJSON(w, r)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productResponse{Success: true, Product: product})
}

func updateInputFromJSON(w http.ResponseWriter, r *http.Request) (*service.UpdateProductInput, error) {
	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		return nil, err
	}
	return &service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	}, nil
}

func updateInputFromForm(w http.ResponseWriter, r *http.Request) (*service.UpdateProductInput, error) {
	if err := parseMultipart(w, r); err != nil {
		return nil, err
	}

	images, err := formImages(r.MultipartForm, "images")
	if err != nil {
		return nil, err
	}
	price, err := formFloat(r, "price")
	if err != nil {
		return nil, err
	}
	stock, err := formInt(r, "stock")
	if err != nil {
		return nil, err
	}

	return &service.UpdateProductInput{
		Name:        formString(r, "name"),
		Description: formString(r, "description"),
		Price:       price,
		Category:    formString(r, "category"),
		Stock:       stock,
		Images:      images,
	}, nil
}

// DeleteProduct handles DELETE /api/v1/admin/product/{id}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Product Delete Successfully")
}

// --- Form helpers ---

func formString(r *http.Request, key string) *string {
	if _, ok := r.MultipartForm.Value[key]; !ok {
		return nil
	}
	v := r.FormValue(key)
	return &v
}

func formFloat(r *http.Request, key string) (*float64, error) {
	raw := formString(r, key)
	if raw == nil || *raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return nil, apperrors.InvalidInput(key + " must be a number")
	}
	return &v, nil
}

func formInt(r *http.Request, key string) (*int, error) {
	raw := formString(r, key)
	if raw == nil || *raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperrors.InvalidInput(key + " must be an integer")
	}
	return &v, nil
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
