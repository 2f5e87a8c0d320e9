package query

import (
	"strings"

	"github.com/utafrali/shopfront/internal/domain"
)

// Matches reports whether p satisfies the keyword and every condition of q.
// Pagination is not considered.
func (q Query) Matches(p *domain.Product) bool {
	if q.Keyword != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Keyword)) {
		return false
	}
	for _, c := range q.Conditions {
		if !c.matches(p) {
			return false
		}
	}
	return true
}

func (c Condition) matches(p *domain.Product) bool {
	if c.Field == FieldCategory {
		s, _ := c.Value.(string)
		return p.Category == s
	}

	want, ok := c.Value.(float64)
	if !ok {
		return false
	}

	var got float64
	switch c.Field {
	case FieldPrice:
		got = p.Price
	case FieldRatings:
		got = p.Ratings
	case FieldStock:
		got = float64(p.Stock)
	case FieldNumOfReviews:
		got = float64(p.NumOfReviews)
	default:
		return false
	}

	switch c.Op {
	case OpGt:
		return got > want
	case OpGte:
		return got >= want
	case OpLt:
		return got < want
	case OpLte:
		return got <= want
	default:
		return got == want
	}
}

// Apply filters products in order and then applies Skip and Limit.
func (q Query) Apply(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0)
	skipped := 0
	for i := range products {
		if !q.Matches(&products[i]) {
			continue
		}
		if skipped < q.Skip {
			skipped++
			continue
		}
		out = append(out, products[i])
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}
