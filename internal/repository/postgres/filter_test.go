package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/internal/query"
)

func TestBuildWhere_Empty(t *testing.T) {
	where, args, err := buildWhere(query.Query{})
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildWhere_KeywordAndConditions(t *testing.T) {
	q := query.Query{
		Keyword: "shoe",
		Conditions: []query.Condition{
			{Field: query.FieldPrice, Op: query.OpGte, Value: 100.0},
			{Field: query.FieldCategory, Op: query.OpEq, Value: "Footwear"},
			{Field: query.FieldNumOfReviews, Op: query.OpGt, Value: 0.0},
		},
	}

	where, args, err := buildWhere(q)
	require.NoError(t, err)
	assert.Equal(t, " WHERE name ILIKE $1 AND price >= $2 AND category = $3 AND num_of_reviews::double precision > $4", where)
	assert.Equal(t, []any{"%shoe%", 100.0, "Footwear", 0.0}, args)
}

func TestBuildWhere_KeywordIsLiteral(t *testing.T) {
	where, args, err := buildWhere(query.Query{Keyword: `50%_off\`})
	require.NoError(t, err)
	assert.Equal(t, " WHERE name ILIKE $1", where)
	assert.Equal(t, []any{`%50\%\_off\\%`}, args)
}

func TestBuildWhere_RejectsUnknownField(t *testing.T) {
	_, _, err := buildWhere(query.Query{Conditions: []query.Condition{{Field: "password", Op: query.OpEq, Value: "x"}}})
	assert.Error(t, err)

	_, _, err = buildWhere(query.Query{Conditions: []query.Condition{{Field: query.FieldPrice, Op: "ne", Value: 1.0}}})
	assert.Error(t, err)
}

func TestBuildWhere_IntegerColumnsKeepFractionalBounds(t *testing.T) {
	tests := []struct {
		cond  query.Condition
		where string
	}{
		{query.Condition{Field: query.FieldStock, Op: query.OpLt, Value: 2.5}, " WHERE stock::double precision < $1"},
		{query.Condition{Field: query.FieldStock, Op: query.OpEq, Value: 2.5}, " WHERE stock::double precision = $1"},
		{query.Condition{Field: query.FieldNumOfReviews, Op: query.OpGte, Value: 0.5}, " WHERE num_of_reviews::double precision >= $1"},
		{query.Condition{Field: query.FieldPrice, Op: query.OpLte, Value: 9.99}, " WHERE price <= $1"},
	}

	for _, tt := range tests {
		t.Run(tt.where, func(t *testing.T) {
			where, args, err := buildWhere(query.Query{Conditions: []query.Condition{tt.cond}})
			require.NoError(t, err)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, []any{tt.cond.Value}, args)
		})
	}
}
