package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/catalog/pkg/messaging"
)

// ProductsAddedEvent is emitted once per successful add, single or batch.
type ProductsAddedEvent struct {
	Products []map[string]any `json:"products"`
	AddedAt  time.Time        `json:"added_at"`
}

func (e ProductsAddedEvent) Subject() string {
	return messaging.ProductsAddedSubject
}

func (e ProductsAddedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ProductQtyUpdatedEvent is emitted after the quantity of a product was set.
type ProductQtyUpdatedEvent struct {
	ProductID int64     `json:"product_id"`
	Qty       int64     `json:"qty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e ProductQtyUpdatedEvent) Subject() string {
	return messaging.ProductQtyUpdatedSubject
}

func (e ProductQtyUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
