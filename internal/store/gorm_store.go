package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abgdnv/catalog/internal/catalog"
	"gorm.io/gorm"
)

var _ catalog.DAO = (*GormStore)(nil)

// productRecord is the gorm model of the products table.
// Seq keeps insertion order; SQLite would alias an integer ID key to rowid.
type productRecord struct {
	Seq         int64   `gorm:"primaryKey;autoIncrement"`
	ID          int64   `gorm:"uniqueIndex;not null"`
	Name        string  `gorm:"not null"`
	Description string  `gorm:"type:text;not null"`
	Cost        float64 `gorm:"not null"`
	Qty         int64   `gorm:"not null"`
}

// TableName returns the table name for productRecord
func (productRecord) TableName() string {
	return "products"
}

func recordOf(r row) productRecord {
	return productRecord{ID: r.ID, Name: r.Name, Description: r.Description, Cost: r.Cost, Qty: r.Qty}
}

func (p productRecord) mapping() catalog.Mapping {
	return row{ID: p.ID, Name: p.Name, Description: p.Description, Cost: p.Cost, Qty: p.Qty}.mapping()
}

// GormStore implements catalog.DAO on top of gorm. It is used with the SQLite driver.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates the products table if needed and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&productRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate products table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// ListProducts retrieves all products in insertion order.
func (g *GormStore) ListProducts(ctx context.Context) ([]catalog.Mapping, error) {
	var records []productRecord
	err := g.db.WithContext(ctx).
		Order("seq").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	list := make([]catalog.Mapping, len(records))
	for i, rec := range records {
		list[i] = rec.mapping()
	}
	return list, nil
}

// GetProduct retrieves a product by its identifier.
// Returns a nil mapping if no product exists with the given ID.
func (g *GormStore) GetProduct(ctx context.Context, id int64) (catalog.Mapping, error) {
	var rec productRecord
	if err := g.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return rec.mapping(), nil
}

// AddProduct inserts a single product.
func (g *GormStore) AddProduct(ctx context.Context, m catalog.Mapping) error {
	r, err := toRow(m)
	if err != nil {
		return err
	}
	rec := recordOf(r)
	if err := g.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return gormInsertError(r.ID, err)
	}
	return nil
}

// AddProducts inserts all products in a single transaction.
func (g *GormStore) AddProducts(ctx context.Context, ms []catalog.Mapping) error {
	rows, err := toRows(ms)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range rows {
			rec := recordOf(r)
			if err := tx.Create(&rec).Error; err != nil {
				return gormInsertError(r.ID, err)
			}
		}
		return nil
	})
}

// UpdateQty sets the quantity of a product. An unknown id updates nothing.
func (g *GormStore) UpdateQty(ctx context.Context, id int64, qty int64) error {
	err := g.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ?", id).
		Update("qty", qty).Error
	if err != nil {
		return fmt.Errorf("failed to update product quantity: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormInsertError(id int64, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	return fmt.Errorf("failed to insert product %d: %w", id, err)
}
