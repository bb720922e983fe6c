package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ catalog.DAO = (*PgStore)(nil)

const (
	listProductsSQL = `SELECT id, name, description, cost, qty FROM products ORDER BY seq`
	getProductSQL   = `SELECT id, name, description, cost, qty FROM products WHERE id = $1`
	insertSQL       = `INSERT INTO products (id, name, description, cost, qty) VALUES ($1, $2, $3, $4, $5)`
	updateQtySQL    = `UPDATE products SET qty = $2 WHERE id = $1`

	uniqueViolation = "23505"
)

// PgStore implements catalog.DAO using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of PgStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// ListProducts retrieves all products in insertion order.
func (p *PgStore) ListProducts(ctx context.Context) ([]catalog.Mapping, error) {
	rows, err := p.db.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByPos[row])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	list := make([]catalog.Mapping, len(products))
	for i, r := range products {
		list[i] = r.mapping()
	}
	return list, nil
}

// GetProduct retrieves a product by its identifier.
// Returns a nil mapping if no product exists with the given ID.
func (p *PgStore) GetProduct(ctx context.Context, id int64) (catalog.Mapping, error) {
	rows, err := p.db.Query(ctx, getProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	r, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[row])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return r.mapping(), nil
}

// AddProduct inserts a single product.
func (p *PgStore) AddProduct(ctx context.Context, m catalog.Mapping) error {
	r, err := toRow(m)
	if err != nil {
		return err
	}
	if _, err := p.db.Exec(ctx, insertSQL, r.ID, r.Name, r.Description, r.Cost, r.Qty); err != nil {
		return insertError(r.ID, err)
	}
	return nil
}

// AddProducts inserts all products in a single transaction.
func (p *PgStore) AddProducts(ctx context.Context, ms []catalog.Mapping) error {
	rows, err := toRows(ms)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range rows {
			batch.Queue(insertSQL, r.ID, r.Name, r.Description, r.Cost, r.Qty)
		}
		results := tx.SendBatch(ctx, batch)
		for _, r := range rows {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return insertError(r.ID, err)
			}
		}
		return results.Close()
	})
}

// UpdateQty sets the quantity of a product. An unknown id updates nothing.
func (p *PgStore) UpdateQty(ctx context.Context, id int64, qty int64) error {
	if _, err := p.db.Exec(ctx, updateQtySQL, id, qty); err != nil {
		return fmt.Errorf("failed to update product quantity: %w", err)
	}
	return nil
}

// Close closes the underlying pool.
func (p *PgStore) Close() error {
	p.db.Close()
	return nil
}

func insertError(id int64, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	return fmt.Errorf("failed to insert product %d: %w", id, err)
}
