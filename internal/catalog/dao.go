package catalog

import "context"

// DAO is the persistence collaborator of the catalog.
// Errors it returns are storage errors and reach the caller unchanged.
type DAO interface {
	// ListProducts returns every stored product mapping, in storage order.
	ListProducts(ctx context.Context) ([]Mapping, error)

	// GetProduct returns the mapping stored under id.
	// Returns a nil or empty mapping if nothing is stored under id.
	GetProduct(ctx context.Context, id int64) (Mapping, error)

	// AddProduct stores a single product mapping.
	AddProduct(ctx context.Context, m Mapping) error

	// AddProducts stores a batch of product mappings.
	AddProducts(ctx context.Context, ms []Mapping) error

	// UpdateQty sets the quantity of the product stored under id.
	UpdateQty(ctx context.Context, id int64, qty int64) error
}
