// Package query turns untrusted listing parameters into a store-agnostic
// product query. Stores translate a Query into their own dialect.
package query

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// DefaultPageSize is the listing page size used when none is configured.
const DefaultPageSize = 8

// Reserved parameter names. They never become field filters.
const (
	ParamKeyword = "keyword"
	ParamPage    = "page"
	ParamLimit   = "limit"
)

// Operator is a whitelisted comparison operator.
type Operator string

// Supported operators.
const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

func parseOperator(s string) (Operator, bool) {
	switch op := Operator(s); op {
	case OpEq, OpGt, OpGte, OpLt, OpLte:
		return op, true
	}
	return "", false
}

// Kind is the value type of a filterable field.
type Kind int

// Field kinds.
const (
	KindString Kind = iota
	KindNumber
)

// Field names accepted as filters.
const (
	FieldCategory     = "category"
	FieldPrice        = "price"
	FieldRatings      = "ratings"
	FieldStock        = "stock"
	FieldNumOfReviews = "numOfReviews"
)

var fields = map[string]Kind{
	FieldCategory:     KindString,
	FieldPrice:        KindNumber,
	FieldRatings:      KindNumber,
	FieldStock:        KindNumber,
	FieldNumOfReviews: KindNumber,
}

// Condition compares one product field against a value. Value holds a
// string for KindString fields and a float64 for KindNumber fields.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Query is a bounded product query. Limit 0 means unbounded.
type Query struct {
	Keyword    string
	Conditions []Condition
	Skip       int
	Limit      int
}

// ApplyKeywordSearch restricts q to products whose name contains the
// keyword, case-insensitively. The keyword is always matched literally.
func ApplyKeywordSearch(q Query, params url.Values) Query {
	if kw := strings.TrimSpace(params.Get(ParamKeyword)); kw != "" {
		q.Keyword = kw
	}
	return q
}

// ApplyFilters adds a condition for every non-reserved parameter.
// "field=value" is an equality test and "field[op]=value" a comparison.
// Keys are processed in sorted order so the result is deterministic.
func ApplyFilters(q Query, params url.Values) (Query, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	conds := slices.Clone(q.Conditions)
	for _, key := range keys {
		switch key {
		case ParamKeyword, ParamPage, ParamLimit:
			continue
		}

		value := strings.TrimSpace(params.Get(key))
		if value == "" {
			continue
		}

		cond, err := parseCondition(key, value)
		if err != nil {
			return q, err
		}
		conds = append(conds, cond)
	}

	q.Conditions = conds
	return q, nil
}

func parseCondition(key, value string) (Condition, error) {
	name, op := key, OpEq
	if base, rest, ok := strings.Cut(key, "["); ok {
		raw, closed := strings.CutSuffix(rest, "]")
		if !closed {
			return Condition{}, apperrors.InvalidQueryParameter(key, "malformed operator")
		}
		parsed, valid := parseOperator(raw)
		if !valid {
			return Condition{}, apperrors.InvalidQueryParameter(key, "unsupported operator "+strconv.Quote(raw))
		}
		name, op = base, parsed
	}

	kind, known := fields[name]
	if !known {
		return Condition{}, apperrors.InvalidQueryParameter(key, "unknown filter field")
	}

	switch kind {
	case KindNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return Condition{}, apperrors.InvalidQueryParameter(key, "value must be a number")
		}
		return Condition{Field: name, Op: op, Value: n}, nil
	default:
		if op != OpEq {
			return Condition{}, apperrors.InvalidQueryParameter(key, "only equality is supported for "+name)
		}
		return Condition{Field: name, Op: op, Value: value}, nil
	}
}

// Paginate bounds q to one page of pageSize results. The 1-based page number
// comes from the "page" parameter and defaults to 1.
func Paginate(q Query, params url.Values, pageSize int) (Query, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	page := 1
	if raw := strings.TrimSpace(params.Get(ParamPage)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, apperrors.InvalidQueryParameter(ParamPage, "must be a positive integer")
		}
		page = n
	}

	q.Skip = pageSize * (page - 1)
	q.Limit = pageSize
	return q, nil
}

// Build constructs the count query (search and filters) and, independently,
// the page query (search, filters and pagination) for a listing request.
func Build(params url.Values, pageSize int) (count, page Query, err error) {
	count, err = ApplyFilters(ApplyKeywordSearch(Query{}, params), params)
	if err != nil {
		return Query{}, Query{}, err
	}

	page, err = ApplyFilters(ApplyKeywordSearch(Query{}, params), params)
	if err != nil {
		return Query{}, Query{}, err
	}
	page, err = Paginate(page, params, pageSize)
	if err != nil {
		return Query{}, Query{}, err
	}

	return count, page, nil
}
