// Package shipper provides an abstraction layer for shipping carriers.
package shipper

import (
	"context"
)

// Shipper defines the interface that all shipping carriers must implement.
type Shipper interface {
	// Name returns the carrier identifier (e.g., "spring").
	Name() string

	// CreateShipment submits an order and returns the carrier tracking number.
	CreateShipment(ctx context.Context, order Order) (string, error)

	// FetchLabel retrieves the printable label for a tracking number.
	FetchLabel(ctx context.Context, trackingNumber string) (*Label, error)
}
