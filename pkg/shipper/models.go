package shipper

import (
	"strings"
	"time"
)

// Order is a flat mapping of order field names to raw string values, as
// submitted by a form or read from a file.
type Order map[string]string

// Order field names.
const (
	FieldWeight             = "weight"
	FieldValue              = "value"
	FieldCurrency           = "currency"
	FieldDescription        = "description"
	FieldDeclarationType    = "declaration_type"
	FieldSenderFullName     = "sender_fullname"
	FieldSenderCompany      = "sender_company"
	FieldSenderAddress      = "sender_address"
	FieldSenderCity         = "sender_city"
	FieldSenderPostalCode   = "sender_postalcode"
	FieldSenderCountry      = "sender_country"
	FieldSenderPhone        = "sender_phone"
	FieldDeliveryFullName   = "delivery_fullname"
	FieldDeliveryCompany    = "delivery_company"
	FieldDeliveryAddress    = "delivery_address"
	FieldDeliveryCity       = "delivery_city"
	FieldDeliveryPostalCode = "delivery_postalcode"
	FieldDeliveryCountry    = "delivery_country"
	FieldDeliveryPhone      = "delivery_phone"
	FieldDeliveryEmail      = "delivery_email"
)

// Trimmed returns a copy of the order with surrounding whitespace removed
// from every value.
func (o Order) Trimmed() Order {
	out := make(Order, len(o))
	for k, v := range o {
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// Lookup returns a field value and whether it was present.
func (o Order) Lookup(field string) (string, bool) {
	v, ok := o[field]
	return v, ok
}

// LabelFormat is the label document format requested from the carrier.
type LabelFormat string

const (
	LabelPDF LabelFormat = "PDF"
	LabelPNG LabelFormat = "PNG"
	LabelZPL LabelFormat = "ZPL"
)

// ContentType returns the MIME type of a label in this format.
func (f LabelFormat) ContentType() string {
	switch LabelFormat(strings.ToUpper(string(f))) {
	case LabelPNG:
		return "image/png"
	case LabelZPL:
		return "application/zpl"
	default:
		return "application/pdf"
	}
}

// Extension returns the file extension for a label in this format.
func (f LabelFormat) Extension() string {
	switch LabelFormat(strings.ToUpper(string(f))) {
	case LabelPNG:
		return "png"
	case LabelZPL:
		return "zpl"
	default:
		return "pdf"
	}
}

// ClientConfig holds the per-account settings of a carrier client.
// It is read-only once the client is built.
type ClientConfig struct {
	URL         string
	APIKey      string
	LabelFormat LabelFormat
	Service     string

	// Timeout bounds one HTTP round trip. Zero keeps the platform default.
	Timeout time.Duration
	// Location is used for the order date. Nil means UTC.
	Location *time.Location
}

// Label is a printable shipping label.
type Label struct {
	TrackingNumber string
	Format         LabelFormat
	Data           []byte
}

// ShipmentResult is the outcome of one order in a batch.
type ShipmentResult struct {
	Index          int
	TrackingNumber string
	Err            error
}
