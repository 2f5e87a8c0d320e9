package postgres

import (
	"fmt"
	"strings"

	"github.com/utafrali/shopfront/internal/query"
)

// productColumns maps filterable query fields to product columns.
var productColumns = map[string]string{
	query.FieldCategory:     "category",
	query.FieldPrice:        "price",
	query.FieldRatings:      "ratings",
	query.FieldStock:        "stock",
	query.FieldNumOfReviews: "num_of_reviews",
}

// integerColumns are compared as double precision so fractional bounds
// behave as in the other catalog backends instead of being truncated by the
// int4 encoder.
var integerColumns = map[string]bool{
	"stock":          true,
	"num_of_reviews": true,
}

var sqlOperators = map[query.Operator]string{
	query.OpEq:  "=",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere renders the keyword and conditions of q as a " WHERE ..." clause
// with positional arguments starting at $1. Column names and operators come only
// from the fixed maps above.
func buildWhere(q query.Query) (string, []any, error) {
	var (
		conditions []string
		args       []any
	)

	if q.Keyword != "" {
		args = append(args, "%"+likeEscaper.Replace(q.Keyword)+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	for _, c := range q.Conditions {
		column, ok := productColumns[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %q", c.Field)
		}
		op, ok := sqlOperators[c.Op]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter operator %q", c.Op)
		}
		if integerColumns[column] {
			column += "::double precision"
		}
		args = append(args, c.Value)
		conditions = append(conditions, fmt.Sprintf("%s %s $%d", column, op, len(args)))
	}

	if len(conditions) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}
