package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kiwiJSON = `{
	"id": 22,
	"title": "Kiwi",
	"description": "Nutrient-rich kiwi, perfect for snacking.",
	"category": "groceries",
	"price": 2.49,
	"discountPercentage": 15.22,
	"rating": 4.93,
	"stock": 99,
	"tags": ["fruits"],
	"sku": "GRO-BRD-KIW-022",
	"weight": 5,
	"dimensions": {"width": 15.38, "height": 27.84, "depth": 9.4},
	"warrantyInformation": "6 months warranty",
	"reviews": [{"rating": 5, "comment": "Very satisfied!"}]
}`

func TestProductKeepsUnknownFields(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(kiwiJSON), &p))

	assert.Equal(t, "Kiwi", p.Title)
	assert.Nil(t, p.Brand)
	assert.Contains(t, p.Extra, "warrantyInformation")
	assert.Contains(t, p.Extra, "reviews")

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, kiwiJSON, string(out))
}

func TestProductMissingRequiredField(t *testing.T) {
	testCases := []struct {
		name  string
		json  string
		field string
	}{
		{"Missing title", `{"id":1}`, "title"},
		{"Missing dimension", `{"id":1,"title":"Kiwi","description":"","category":"","price":1,"discountPercentage":0,"rating":0,"stock":0,"tags":[],"sku":"A","weight":1,"dimensions":{"width":1,"height":1}}`, "depth"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p Product
			err := json.Unmarshal([]byte(tc.json), &p)

			var mfe *MissingFieldError
			require.True(t, errors.As(err, &mfe), "expected MissingFieldError, got %v", err)
			assert.Equal(t, tc.field, mfe.Field)
		})
	}
}

func TestProductListOptionalMetadata(t *testing.T) {
	var pl ProductList
	require.NoError(t, json.Unmarshal([]byte(`{"products":[`+kiwiJSON+`],"total":1,"source":"dummyjson"}`), &pl))

	require.Len(t, pl.Products, 1)
	require.NotNil(t, pl.Total)
	assert.Equal(t, 1, *pl.Total)
	assert.Nil(t, pl.Skip)
	assert.Contains(t, pl.Extra, "source")

	out, err := json.Marshal(pl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"products":[`+kiwiJSON+`],"total":1,"source":"dummyjson"}`, string(out))
}
