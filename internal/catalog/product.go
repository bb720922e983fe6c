// Package catalog provides the product entity and the catalog operations
// built on top of an injected data access object.
package catalog

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Keys of a product mapping.
const (
	KeyID          = "id"
	KeyName        = "name"
	KeyDescription = "description"
	KeyCost        = "cost"
	KeyQty         = "qty"
)

// RequiredKeys lists every key a product mapping must carry, in reporting order.
var RequiredKeys = []string{KeyID, KeyName, KeyDescription, KeyCost, KeyQty}

// Mapping is the generic representation of a product exchanged with a DAO.
type Mapping map[string]any

// Product is a catalog item.
type Product struct {
	ID          int64   `json:"id"          mapstructure:"id"`
	Name        string  `json:"name"        mapstructure:"name"`
	Description string  `json:"description" mapstructure:"description"`
	Cost        float64 `json:"cost"        mapstructure:"cost"`
	Qty         int64   `json:"qty"         mapstructure:"qty"`
}

// NewProduct creates a product with a zero quantity.
func NewProduct(id int64, name, description string, cost float64) *Product {
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Cost:        cost,
	}
}

// FromMapping builds a Product from a mapping.
// Returns a *KeyError if one of the required keys is absent.
func FromMapping(m Mapping) (*Product, error) {
	for _, key := range RequiredKeys {
		if _, ok := m[key]; !ok {
			return nil, &KeyError{Key: key}
		}
	}

	var p Product
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &p,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(m)); err != nil {
		return nil, fmt.Errorf("failed to decode product mapping: %w", err)
	}
	return &p, nil
}

// ToMapping returns the mapping representation of the product.
func (p *Product) ToMapping() Mapping {
	return Mapping{
		KeyID:          p.ID,
		KeyName:        p.Name,
		KeyDescription: p.Description,
		KeyCost:        p.Cost,
		KeyQty:         p.Qty,
	}
}
