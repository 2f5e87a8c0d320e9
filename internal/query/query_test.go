package query

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/internal/domain"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

func params(raw string) url.Values {
	v, err := url.ParseQuery(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func TestApplyKeywordSearch(t *testing.T) {
	assert.Equal(t, "shoe", ApplyKeywordSearch(Query{}, params("keyword=shoe")).Keyword)
	assert.Equal(t, Query{}, ApplyKeywordSearch(Query{}, params("keyword=")))
	assert.Equal(t, Query{}, ApplyKeywordSearch(Query{}, params("page=2")))
}

func TestApplyFilters_Operators(t *testing.T) {
	q, err := ApplyFilters(Query{}, params("price[gte]=100&price[lte]=500&category=Laptop&ratings[gt]=3&stock[lt]=10&numOfReviews[eq]=2"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []Condition{
		{Field: FieldCategory, Op: OpEq, Value: "Laptop"},
		{Field: FieldNumOfReviews, Op: OpEq, Value: 2.0},
		{Field: FieldPrice, Op: OpGte, Value: 100.0},
		{Field: FieldPrice, Op: OpLte, Value: 500.0},
		{Field: FieldRatings, Op: OpGt, Value: 3.0},
		{Field: FieldStock, Op: OpLt, Value: 10.0},
	}, q.Conditions)
}

func TestApplyFilters_IgnoresReservedKeys(t *testing.T) {
	q, err := ApplyFilters(Query{}, params("keyword=shoe&page=3&limit=50"))
	require.NoError(t, err)
	assert.Empty(t, q.Conditions)
}

func TestApplyFilters_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"operator injection", "price[$where]=1"},
		{"unsupported operator", "price[ne]=1"},
		{"regex operator", "category[regex]=.*"},
		{"unknown field", "password=x"},
		{"unknown field with operator", "createdAt[gte]=2020"},
		{"non numeric", "price[gte]=cheap"},
		{"not a number", "price[gte]=NaN"},
		{"infinity", "price[lte]=Inf"},
		{"negative infinity", "stock[gt]=-inf"},
		{"range on string field", "category[gte]=A"},
		{"unterminated operator", "price[gte=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyFilters(Query{}, params(tt.query))
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "INVALID_QUERY_PARAMETER", appErr.Code)
			assert.Equal(t, 400, appErr.Status)
		})
	}
}

func TestApplyFilters_DoesNotAliasInput(t *testing.T) {
	base := Query{Conditions: make([]Condition, 1, 4)}
	base.Conditions[0] = Condition{Field: FieldStock, Op: OpGt, Value: 0.0}

	a, err := ApplyFilters(base, params("price[gte]=1"))
	require.NoError(t, err)
	b, err := ApplyFilters(base, params("price[lte]=2"))
	require.NoError(t, err)

	assert.Equal(t, OpGte, a.Conditions[1].Op)
	assert.Equal(t, OpLte, b.Conditions[1].Op)
	assert.Len(t, base.Conditions, 1)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		query string
		skip  int
	}{
		{"", 0},
		{"page=1", 0},
		{"page=2", 8},
		{"page=5", 32},
	}

	for _, tt := range tests {
		q, err := Paginate(Query{}, params(tt.query), 8)
		require.NoError(t, err)
		assert.Equal(t, tt.skip, q.Skip, tt.query)
		assert.Equal(t, 8, q.Limit, tt.query)
	}
}

func TestPaginate_InvalidPage(t *testing.T) {
	for _, raw := range []string{"page=0", "page=-1", "page=abc", "page=1.5"} {
		_, err := Paginate(Query{}, params(raw), 8)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, raw)
	}
}

func TestPaginate_DefaultPageSize(t *testing.T) {
	q, err := Paginate(Query{}, params("page=2"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, q.Limit)
}

func TestBuild_NoParamsIsUnrestricted(t *testing.T) {
	count, page, err := Build(url.Values{}, 8)
	require.NoError(t, err)
	assert.Equal(t, Query{}, count)
	assert.Equal(t, Query{Skip: 0, Limit: 8}, page)
}

func TestBuild_CountQueryIsNotPaginated(t *testing.T) {
	count, page, err := Build(params("keyword=shoe&page=3&price[lt]=100"), 8)
	require.NoError(t, err)

	assert.Zero(t, count.Skip)
	assert.Zero(t, count.Limit)
	assert.Equal(t, 16, page.Skip)
	assert.Equal(t, count.Keyword, page.Keyword)
	assert.Equal(t, count.Conditions, page.Conditions)
}

func TestBuild_PropagatesErrors(t *testing.T) {
	_, _, err := Build(params("price[gte]=x"), 8)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, err = Build(params("page=0"), 8)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// ============================================================================
// Evaluation
// ============================================================================

func catalog(n int) []domain.Product {
	products := make([]domain.Product, n)
	for i := range products {
		products[i] = domain.Product{
			ID:       fmt.Sprintf("p%02d", i+1),
			Name:     fmt.Sprintf("Item %02d", i+1),
			Price:    float64((i + 1) * 100),
			Category: "Misc",
		}
	}
	return products
}

func TestKeywordSearch_CaseInsensitiveSubstring(t *testing.T) {
	products := []domain.Product{
		{Name: "Running SHOE"},
		{Name: "Shoelace"},
		{Name: "Sandal"},
	}

	q := ApplyKeywordSearch(Query{}, params("keyword=shoe"))
	got := q.Apply(products)

	require.Len(t, got, 2)
	assert.Equal(t, "Running SHOE", got[0].Name)
	assert.Equal(t, "Shoelace", got[1].Name)
}

func TestKeywordSearch_Literal(t *testing.T) {
	products := []domain.Product{{Name: "a.b"}, {Name: "axb"}}
	q := ApplyKeywordSearch(Query{}, params("keyword=a.b"))
	got := q.Apply(products)
	require.Len(t, got, 1)
	assert.Equal(t, "a.b", got[0].Name)
}

func TestSecondPageOfTwenty(t *testing.T) {
	products := catalog(20)

	count, page, err := Build(params("page=2"), 8)
	require.NoError(t, err)

	got := page.Apply(products)
	require.Len(t, got, 8)
	assert.Equal(t, "p09", got[0].ID)
	assert.Equal(t, "p16", got[7].ID)
	assert.Len(t, count.Apply(products), 20)
}

func TestPriceRange(t *testing.T) {
	products := catalog(20)

	count, page, err := Build(params("price[gte]=500&price[lte]=900"), 8)
	require.NoError(t, err)

	got := count.Apply(products)
	require.Len(t, got, 5)
	for _, p := range got {
		assert.GreaterOrEqual(t, p.Price, 500.0)
		assert.LessOrEqual(t, p.Price, 900.0)
	}
	assert.Len(t, page.Apply(products), 5)
}

func TestLastPartialPage(t *testing.T) {
	_, page, err := Build(params("page=3"), 8)
	require.NoError(t, err)
	assert.Len(t, page.Apply(catalog(20)), 4)
}
