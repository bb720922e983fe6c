// Package store provides the catalog.DAO implementations.
package store

import (
	"errors"
	"fmt"

	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/spf13/cast"
)

var (
	// ErrDuplicateID is returned when a product id is already stored.
	// It matches catalog.ErrConflict.
	ErrDuplicateID = fmt.Errorf("%w: product id already exists", catalog.ErrConflict)
	// ErrInvalidMapping is returned when a mapping value cannot be stored in its column.
	ErrInvalidMapping = errors.New("product mapping cannot be stored")
)

// row is the storage shape of a product.
type row struct {
	ID          int64
	Name        string
	Description string
	Cost        float64
	Qty         int64
}

// toRow coerces the values of m into their column types.
func toRow(m catalog.Mapping) (row, error) {
	var (
		r   row
		err error
	)
	if r.ID, err = cast.ToInt64E(m[catalog.KeyID]); err != nil {
		return row{}, fmt.Errorf("%w: id: %v", ErrInvalidMapping, err)
	}
	if r.Name, err = cast.ToStringE(m[catalog.KeyName]); err != nil {
		return row{}, fmt.Errorf("%w: name: %v", ErrInvalidMapping, err)
	}
	if r.Description, err = cast.ToStringE(m[catalog.KeyDescription]); err != nil {
		return row{}, fmt.Errorf("%w: description: %v", ErrInvalidMapping, err)
	}
	if r.Cost, err = cast.ToFloat64E(m[catalog.KeyCost]); err != nil {
		return row{}, fmt.Errorf("%w: cost: %v", ErrInvalidMapping, err)
	}
	if r.Qty, err = cast.ToInt64E(m[catalog.KeyQty]); err != nil {
		return row{}, fmt.Errorf("%w: qty: %v", ErrInvalidMapping, err)
	}
	return r, nil
}

func toRows(ms []catalog.Mapping) ([]row, error) {
	rows := make([]row, 0, len(ms))
	for _, m := range ms {
		r, err := toRow(m)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (r row) mapping() catalog.Mapping {
	return catalog.Mapping{
		catalog.KeyID:          r.ID,
		catalog.KeyName:        r.Name,
		catalog.KeyDescription: r.Description,
		catalog.KeyCost:        r.Cost,
		catalog.KeyQty:         r.Qty,
	}
}
