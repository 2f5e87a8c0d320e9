package mongo

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/utafrali/shopfront/internal/query"
)

// documentFields maps filterable query fields to product document fields.
var documentFields = map[string]string{
	query.FieldCategory:     "category",
	query.FieldPrice:        "price",
	query.FieldRatings:      "ratings",
	query.FieldStock:        "stock",
	query.FieldNumOfReviews: "numOfReviews",
}

var documentOperators = map[query.Operator]string{
	query.OpEq:  "$eq",
	query.OpGt:  "$gt",
	query.OpGte: "$gte",
	query.OpLt:  "$lt",
	query.OpLte: "$lte",
}

// toFilter translates q into a MongoDB filter document. Comparisons on the
// same field are merged into one operator document.
func toFilter(q query.Query) (bson.D, error) {
	filter := bson.D{}

	if q.Keyword != "" {
		filter = append(filter, bson.E{Key: "name", Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(q.Keyword)},
			{Key: "$options", Value: "i"},
		}})
	}

	var order []string
	ops := make(map[string]bson.D)
	for _, c := range q.Conditions {
		field, ok := documentFields[c.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported filter field %q", c.Field)
		}
		op, ok := documentOperators[c.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported filter operator %q", c.Op)
		}
		if _, seen := ops[field]; !seen {
			order = append(order, field)
		}
		ops[field] = append(ops[field], bson.E{Key: op, Value: c.Value})
	}

	for _, field := range order {
		filter = append(filter, bson.E{Key: field, Value: ops[field]})
	}
	return filter, nil
}
