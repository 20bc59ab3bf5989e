package spring

import (
	"context"
)

// APIClient defines the interface for Spring API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// Send posts one command with its Shipment body and returns the decoded
	// response, or a *shipper.Error. Never both.
	Send(ctx context.Context, command Command, shipment any) (Response, error)
}

// Command is the value of the top-level "Command" request key.
type Command string

const (
	CommandOrderShipment    Command = "OrderShipment"
	CommandGetShipmentLabel Command = "GetShipmentLabel"
)

// ============================================================================
// API Request/Response Types (match Spring JSON API structure)
// ============================================================================

// requestEnvelope is the top-level request body. Field order is the wire order.
type requestEnvelope struct {
	Shipment any     `json:"Shipment"`
	Apikey   string  `json:"Apikey"`
	Command  Command `json:"Command"`
}

// ShipmentPayload is the Shipment body of an OrderShipment command.
type ShipmentPayload struct {
	LabelFormat      string  `json:"LabelFormat"`
	ShipperReference string  `json:"ShipperReference"`
	OrderDate        string  `json:"OrderDate"`
	Service          string  `json:"Service"`
	Weight           string  `json:"Weight"`
	Value            string  `json:"Value"`
	Currency         string  `json:"Currency"`
	Description      string  `json:"Description,omitempty"`
	DeclarationType  string  `json:"DeclarationType,omitempty"`
	ConsignorAddress Address `json:"ConsignorAddress"`
	ConsigneeAddress Address `json:"ConsigneeAddress"`
}

// Address is a consignor or consignee block.
type Address struct {
	Name         string `json:"Name"`
	Company      string `json:"Company"`
	City         string `json:"City"`
	Zip          string `json:"Zip"`
	Country      string `json:"Country"`
	Phone        string `json:"Phone"`
	Email        string `json:"Email,omitempty"`
	AddressLine1 string `json:"AddressLine1"`
	AddressLine2 string `json:"AddressLine2,omitempty"`
	AddressLine3 string `json:"AddressLine3,omitempty"`
}

// LabelPayload is the Shipment body of a GetShipmentLabel command.
type LabelPayload struct {
	LabelFormat    string `json:"LabelFormat"`
	TrackingNumber string `json:"TrackingNumber"`
}

// Response is a decoded, successful API response.
type Response map[string]any

// ShipmentString returns the string value at Shipment.<key>.
func (r Response) ShipmentString(key string) (string, bool) {
	shipment, ok := r["Shipment"].(map[string]any)
	if !ok {
		return "", false
	}
	v, ok := shipment[key].(string)
	return v, ok
}
