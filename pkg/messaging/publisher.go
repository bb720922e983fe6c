// Package messaging defines the events the catalog emits and the publisher they go through.
package messaging

import (
	"context"
)

const (
	// StreamName is the JetStream stream holding every catalog event.
	StreamName = "CATALOG"
	// StreamSubjects matches every subject of StreamName.
	StreamSubjects = "catalog.>"

	ProductsAddedSubject     = "catalog.products.added"
	ProductQtyUpdatedSubject = "catalog.products.qty_updated"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
