package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/internal/domain"
)

func productImages(n int) []filePart {
	parts := make([]filePart, n)
	for i := range parts {
		parts[i] = filePart{field: "images", filename: fmt.Sprintf("img-%d.png", i), data: []byte(fmt.Sprintf("image-%d", i))}
	}
	return parts
}

func TestListProducts_Filters(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "Gaming Laptop", "Laptop", 1500, 5)
	env.seedProduct(t, "Office Laptop", "Laptop", 600, 5)
	env.seedProduct(t, "Phone Case", "Accessories", 20, 5)

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"no filter", "", 3},
		{"keyword is case insensitive", "?keyword=laptop", 2},
		{"category", "?category=Accessories", 1},
		{"price range", "?price[gte]=100&price[lt]=1000", 1},
		{"keyword and price", "?keyword=laptop&price[gt]=1000", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products"+tt.query, nil), nil)

			require.Equal(t, http.StatusOK, rec.Code)
			body := decodeJSON(t, rec)
			assert.Equal(t, true, body["success"])
			assert.Len(t, body["products"], tt.count)
			assert.EqualValues(t, tt.count, body["productsCount"])
			assert.EqualValues(t, tt.count, body["filteredProductsCount"])
			assert.EqualValues(t, 8, body["resultPerPage"])
		})
	}
}

func TestListProducts_Pagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 1; i <= 10; i++ {
		env.seedProduct(t, fmt.Sprintf("Product %02d", i), "Misc", float64(i), 1)
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products?page=2", nil), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	products := body["products"].([]any)
	require.Len(t, products, 2)
	assert.Equal(t, "Product 09", products[0].(map[string]any)["name"])
	assert.EqualValues(t, 10, body["productsCount"])
}

func TestListProducts_RejectsUnknownOperator(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products?price[regex]=1", nil), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Desk Lamp", "Home", 35, 3)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/product/"+p.ID, nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	product := decodeJSON(t, rec)["product"].(map[string]any)
	assert.Equal(t, p.ID, product["_id"])
	assert.Contains(t, product, "numOfReviews")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/product/not-a-uuid", nil), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/product/7b0c6c3e-1d7a-4f8e-9a53-0d5c4f1e2a10", nil), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "Admin User", "admin@example.com", domain.RoleAdmin)

	req := multipartRequest(t, http.MethodPost, "/api/v1/admin/product/new", map[string]string{
		"name":        "Mechanical Keyboard",
		"description": "Clicky",
		"price":       "89.5",
		"category":    "Accessories",
		"stock":       "12",
	}, productImages(2))
	rec := env.do(req, env.cookieFor(t, admin))

	require.Equal(t, http.StatusCreated, rec.Code)
	product := decodeJSON(t, rec)["product"].(map[string]any)
	assert.Equal(t, "Mechanical Keyboard", product["name"])
	assert.Equal(t, admin.ID, product["user"])
	assert.Len(t, product["images"], 2)
	assert.EqualValues(t, 0, product["numOfReviews"])
	assert.Equal(t, 2, env.images.Len())
}

func TestCreateProduct_DataURIImage(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "Admin User", "admin@example.com", domain.RoleAdmin)

	req := multipartRequest(t, http.MethodPost, "/api/v1/admin/product/new", map[string]string{
		"name":        "Poster",
		"description": "Wall art",
		"price":       "10",
		"category":    "Home",
		"stock":       "1",
		"images":      "data:image/png;base64,aGVsbG8=",
	}, nil)
	rec := env.do(req, env.cookieFor(t, admin))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, env.images.Len())
}

func TestCreateProduct_Rejections(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "Admin User", "admin@example.com", domain.RoleAdmin)
	fields := map[string]string{
		"name":        "Widget",
		"description": "A widget",
		"price":       "5",
		"category":    "Misc",
		"stock":       "1",
	}

	t.Run("no images", func(t *testing.T) {
		rec := env.do(multipartRequest(t, http.MethodPost, "/api/v1/admin/product/new", fields, nil), env.cookieFor(t, admin))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No images provided", decodeJSON(t, rec)["message"])
	})

	t.Run("bad price", func(t *testing.T) {
		bad := map[string]string{"name": "Widget", "description": "A widget", "price": "cheap", "category": "Misc", "stock": "1"}
		rec := env.do(multipartRequest(t, http.MethodPost, "/api/v1/admin/product/new", bad, productImages(1)), env.cookieFor(t, admin))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not admin", func(t *testing.T) {
		user := env.seedUser(t, "Plain User", "plain@example.com", domain.RoleUser)
		rec := env.do(multipartRequest(t, http.MethodPost, "/api/v1/admin/product/new", fields, productImages(1)), env.cookieFor(t, user))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	assert.Equal(t, 0, env.images.Len())
}

func TestUpdateProduct_JSON(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "Admin User", "admin@example.com", domain.RoleAdmin)
	p := env.seedProduct(t, "Old Name", "Misc", 10, 1)

	rec := env.do(jsonRequest(t, http.MethodPut, "/api/v1/admin/product/"+p.ID, map[string]any{
		"name":  "New Name",
		"price": 12.5,
	}), env.cookieFor(t, admin))

	require.Equal(t, http.StatusOK, rec.Code)
	product := decodeJSON(t, rec)["product"].(map[string]any)
	assert.Equal(t, "New Name", product["name"])
	assert.EqualValues(t, 12.5, product["price"])
	assert.Equal(t, "Misc", product["category"])
}

func TestUpdateProduct_ReplacesImages(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "Admin User", "admin@example.com", domain.RoleAdmin)
	cookie := env.cookieFor(t, admin)

	rec := env.do(multipartRequest(t, http.MethodPost, "/api/v1/admin/product/new", map[string]string{
		"name": "Chair", "description": "Sit", "price": "40", "category": "Home", "stock": "2",
	}, productImages(2)), cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeJSON(t, rec)["product"].(map[string]any)["_id"].(string)

	rec = env.do(multipartRequest(t, http.MethodPut, "/api/v1/admin/product/"+id, map[string]string{
		"stock": "3",
	}, productImages(1)), cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	product := decodeJSON(t, rec)["product"].(map[string]any)
	assert.Len(t, product["images"], 1)
	assert.EqualValues(t, 3, product["stock"])
	assert.Equal(t, 1, env.images.Len())
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "Admin User", "admin@example.com", domain.RoleAdmin)
	p := env.seedProduct(t, "Doomed", "Misc", 1, 1)

	rec := env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/product/"+p.ID, nil), env.cookieFor(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product Delete Successfully", decodeJSON(t, rec)["message"])

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/product/"+p.ID, nil), env.cookieFor(t, admin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAdminProducts(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "Admin User", "admin@example.com", domain.RoleAdmin)
	for i := 0; i < 10; i++ {
		env.seedProduct(t, fmt.Sprintf("Item %d", i), "Misc", 1, 1)
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/products", nil), env.cookieFor(t, admin))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON(t, rec)["products"], 10)
}
