// Package mock provides a mock shipper implementation for testing.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tournevent/spring/pkg/shipper"
)

// Client is a mock shipper for testing. It remembers the tracking numbers
// it issued so FetchLabel can tell known from unknown shipments.
type Client struct {
	name string

	// Err, when set, is returned from every call.
	Err error

	mu      sync.Mutex
	created map[string]shipper.Order
}

// New creates a new mock shipper.
func New(name string) *Client {
	return &Client{
		name:    name,
		created: make(map[string]shipper.Order),
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// CreateShipment records the order and returns a fresh tracking number.
func (c *Client) CreateShipment(ctx context.Context, order shipper.Order) (string, error) {
	if c.Err != nil {
		return "", c.Err
	}
	if strings.TrimSpace(order[shipper.FieldWeight]) == "" {
		return "", shipper.InvalidInput("please provide weight in kg")
	}

	tracking := strings.ToUpper(c.name[:min(3, len(c.name))]) + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]

	c.mu.Lock()
	defer c.mu.Unlock()
	c.created[tracking] = order
	return tracking, nil
}

// FetchLabel returns a small fake PDF for tracking numbers it issued.
func (c *Client) FetchLabel(ctx context.Context, trackingNumber string) (*shipper.Label, error) {
	if c.Err != nil {
		return nil, c.Err
	}

	c.mu.Lock()
	_, ok := c.created[trackingNumber]
	c.mu.Unlock()
	if !ok {
		return nil, shipper.NewError(shipper.KindAPI, fmt.Sprintf("shipment %s not found", trackingNumber))
	}

	return &shipper.Label{
		TrackingNumber: trackingNumber,
		Format:         shipper.LabelPDF,
		Data:           []byte("%PDF-1.4 mock label " + trackingNumber),
	}, nil
}

// Created returns how many shipments were created.
func (c *Client) Created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.created)
}

var _ shipper.Shipper = (*Client)(nil)
