package domain

import (
	"encoding/json"
	"fmt"
)

// Dimensions of a product package
//
// swagger:model
type Dimensions struct {
	// required: true
	// example: 3.5
	Width float64 `json:"width" validate:"gte=0"`

	// required: true
	// example: 4.1
	Height float64 `json:"height" validate:"gte=0"`

	// required: true
	// example: 2.2
	Depth float64 `json:"depth" validate:"gte=0"`
}

// Product represents a single catalog item
//
// Keys that are not part of the model are kept in Extra and written back
// unchanged when the product is serialised.
//
// swagger:model
type Product struct {
	// The ID of the product, unique within the catalog
	//
	// required: true
	// min: 1
	// example: 22
	ID int `json:"id" validate:"gte=1"`

	// required: true
	// example: Kiwi
	Title string `json:"title"`

	// required: true
	// example: Nutrient-rich kiwi, perfect for snacking.
	Description string `json:"description"`

	// required: true
	// example: groceries
	Category string `json:"category"`

	// required: true
	// min: 0
	// example: 2.49
	Price float64 `json:"price" validate:"gte=0"`

	// required: true
	// example: 15.22
	DiscountPercentage float64 `json:"discountPercentage" validate:"gte=0,lte=100"`

	// required: true
	// example: 4.93
	Rating float64 `json:"rating" validate:"gte=0,lte=5"`

	// required: true
	// example: 99
	Stock int `json:"stock" validate:"gte=0"`

	// required: true
	Tags []string `json:"tags"`

	// required: false
	Brand *string `json:"brand,omitempty"`

	// required: true
	// example: GRO-BRD-KIW-022
	SKU string `json:"sku"`

	// required: true
	// example: 5
	Weight float64 `json:"weight" validate:"gte=0"`

	// required: true
	Dimensions Dimensions `json:"dimensions"`

	Extra map[string]json.RawMessage `json:"-"`
}

// ProductList is the catalog document
//
// swagger:model
type ProductList struct {
	// required: true
	Products []Product `json:"products" validate:"unique=ID,dive"`

	Total *int `json:"total,omitempty" validate:"omitempty,gte=0"`
	Skip  *int `json:"skip,omitempty" validate:"omitempty,gte=0"`
	Limit *int `json:"limit,omitempty" validate:"omitempty,gte=0"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MissingFieldError is returned when a required key is absent from a JSON object
type MissingFieldError struct {
	Object string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field '%s'", e.Object, e.Field)
}

// fieldSet lists the keys a JSON object is expected to carry
type fieldSet struct {
	required []string
	optional []string
}

var (
	productFieldSet = fieldSet{
		required: []string{"id", "title", "description", "category", "price", "discountPercentage",
			"rating", "stock", "tags", "sku", "weight", "dimensions"},
		optional: []string{"brand"},
	}
	dimensionsFieldSet  = fieldSet{required: []string{"width", "height", "depth"}}
	productListFieldSet = fieldSet{required: []string{"products"}, optional: []string{"total", "skip", "limit"}}
)

// splitKeys checks that every required key is present and returns the keys
// the model does not know about.
func splitKeys(object string, data []byte, fields fieldSet) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	for _, key := range fields.required {
		if _, ok := all[key]; !ok {
			return nil, &MissingFieldError{Object: object, Field: key}
		}
		delete(all, key)
	}
	for _, key := range fields.optional {
		delete(all, key)
	}

	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// mergeKeys writes the extra keys next to the ones produced for the model
func mergeKeys(data []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return data, nil
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, ok := all[key]; !ok {
			all[key] = value
		}
	}
	return json.Marshal(all)
}

type dimensionsFields Dimensions

func (d *Dimensions) UnmarshalJSON(data []byte) error {
	if _, err := splitKeys("dimensions", data, dimensionsFieldSet); err != nil {
		return err
	}
	return json.Unmarshal(data, (*dimensionsFields)(d))
}

type productFields Product

func (p *Product) UnmarshalJSON(data []byte) error {
	extra, err := splitKeys("product", data, productFieldSet)
	if err != nil {
		return err
	}

	var fields productFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	fields.Extra = extra
	*p = Product(fields)
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(productFields(p))
	if err != nil {
		return nil, err
	}
	return mergeKeys(data, p.Extra)
}

type productListFields ProductList

func (pl *ProductList) UnmarshalJSON(data []byte) error {
	extra, err := splitKeys("catalog", data, productListFieldSet)
	if err != nil {
		return err
	}

	var fields productListFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	fields.Extra = extra
	*pl = ProductList(fields)
	return nil
}

func (pl ProductList) MarshalJSON() ([]byte, error) {
	if pl.Products == nil {
		pl.Products = []Product{}
	}
	data, err := json.Marshal(productListFields(pl))
	if err != nil {
		return nil, err
	}
	return mergeKeys(data, pl.Extra)
}
