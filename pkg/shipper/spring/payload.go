package spring

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tournevent/spring/pkg/shipper"
)

const (
	defaultCurrency = "PLN"

	// referenceSalt is mixed into every shipper reference.
	referenceSalt = "BaseLinker"

	referenceLength = 16
	maxAddressLines = 3
	orderDateLayout = "2006-01-02"
)

// BuildOption customises payload construction.
type BuildOption func(*buildOptions)

type buildOptions struct {
	now      func() time.Time
	location *time.Location
}

// WithClock replaces time.Now for the order date and shipper reference.
func WithClock(now func() time.Time) BuildOption {
	return func(o *buildOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLocation sets the time zone of the order date.
func WithLocation(loc *time.Location) BuildOption {
	return func(o *buildOptions) {
		if loc != nil {
			o.location = loc
		}
	}
}

// BuildShipmentPayload maps a validated order to the OrderShipment body.
// The order is expected to be trimmed already.
func BuildShipmentPayload(order shipper.Order, labelFormat shipper.LabelFormat, service string, opts ...BuildOption) (ShipmentPayload, error) {
	o := buildOptions{now: time.Now, location: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}

	reqs, ok := Requirements(service)
	if !ok {
		return ShipmentPayload{}, shipper.Internal("unsupported service").WithCause(fmt.Errorf("service code %q", service))
	}

	now := o.now()

	currency := order[shipper.FieldCurrency]
	if currency == "" {
		currency = defaultCurrency
	}

	consignor := Address{
		Name:    order[shipper.FieldSenderFullName],
		Company: order[shipper.FieldSenderCompany],
		City:    order[shipper.FieldSenderCity],
		Zip:     order[shipper.FieldSenderPostalCode],
		Country: order[shipper.FieldSenderCountry],
		Phone:   order[shipper.FieldSenderPhone],
	}
	consignor.setLines(WrapAddress(order[shipper.FieldSenderAddress], reqs.MaxAddressLineLen))

	consignee := Address{
		Name:    order[shipper.FieldDeliveryFullName],
		Company: order[shipper.FieldDeliveryCompany],
		City:    order[shipper.FieldDeliveryCity],
		Zip:     order[shipper.FieldDeliveryPostalCode],
		Country: order[shipper.FieldDeliveryCountry],
		Phone:   order[shipper.FieldDeliveryPhone],
		Email:   order[shipper.FieldDeliveryEmail],
	}
	consignee.setLines(WrapAddress(order[shipper.FieldDeliveryAddress], reqs.MaxAddressLineLen))

	return ShipmentPayload{
		LabelFormat:      string(labelFormat),
		ShipperReference: ShipperReference(order[shipper.FieldSenderFullName], now),
		OrderDate:        now.In(o.location).Format(orderDateLayout),
		Service:          service,
		Weight:           order[shipper.FieldWeight],
		Value:            order[shipper.FieldValue],
		Currency:         currency,
		Description:      order[shipper.FieldDescription],
		DeclarationType:  order[shipper.FieldDeclarationType],
		ConsignorAddress: consignor,
		ConsigneeAddress: consignee,
	}, nil
}

// BuildLabelPayload builds the GetShipmentLabel body.
func BuildLabelPayload(trackingNumber string, labelFormat shipper.LabelFormat) LabelPayload {
	return LabelPayload{
		LabelFormat:    string(labelFormat),
		TrackingNumber: trackingNumber,
	}
}

// ShipperReference derives a 16 character lowercase hex correlation token
// from the sender name and the unix time. It is not reproducible across
// seconds.
func ShipperReference(name string, at time.Time) string {
	sum := sha256.Sum256([]byte(name + referenceSalt + strconv.FormatInt(at.Unix(), 10)))
	return hex.EncodeToString(sum[:])[:referenceLength]
}

// WrapAddress word-wraps an address into at most three lines of at most
// maxLen characters. Words longer than maxLen are cut; lines past the third
// are dropped.
func WrapAddress(address string, maxLen int) []string {
	if maxLen <= 0 {
		return nil
	}

	var lines []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, string(current))
			current = current[:0:0]
		}
	}

	for _, word := range strings.Fields(address) {
		w := []rune(word)

		if len(w) > maxLen {
			flush()
			for len(w) > maxLen {
				lines = append(lines, string(w[:maxLen]))
				w = w[maxLen:]
			}
		}
		if len(w) == 0 {
			continue
		}

		switch {
		case len(current) == 0:
			current = append(current, w...)
		case len(current)+1+len(w) <= maxLen:
			current = append(current, ' ')
			current = append(current, w...)
		default:
			flush()
			current = append(current, w...)
		}
	}
	flush()

	if len(lines) > maxAddressLines {
		lines = lines[:maxAddressLines]
	}
	return lines
}

func (a *Address) setLines(lines []string) {
	targets := []*string{&a.AddressLine1, &a.AddressLine2, &a.AddressLine3}
	for i, line := range lines {
		if i >= len(targets) {
			break
		}
		*targets[i] = line
	}
}
