package spring

import (
	"maps"
	"slices"

	"github.com/tournevent/spring/pkg/shipper"
)

// ServicePPTT is the Spring tracked-parcel service.
const ServicePPTT = "PPTT"

// FieldRule bounds one required order field.
type FieldRule struct {
	Field     string
	MaxLength int
	Label     string
}

// ServiceRequirements holds the per-service input limits enforced before any
// request reaches the API.
type ServiceRequirements struct {
	// Fields is ordered so validation reports the first failing field
	// deterministically.
	Fields             []FieldRule
	MaxAddressLineLen  int
	SupportedCountries map[string]struct{}
}

// SupportsCountry reports exact, case-sensitive membership.
func (r *ServiceRequirements) SupportsCountry(code string) bool {
	_, ok := r.SupportedCountries[code]
	return ok
}

var supportedCountryCodes = countrySet(
	"AU", "AT", "BE", "BG", "BR", "BY", "CA", "CH", "CN", "CY", "CZ", "DK", "DE", "EE", "ES", "FI",
	"FR", "GB", "GF", "GI", "GP", "GR", "HK", "HR", "HU", "ID", "IE", "IL", "IS", "IT", "JP", "KR",
	"LB", "LT", "LU", "LV", "MQ", "MT", "MY", "NL", "NO", "NZ", "PL", "PT", "RE", "RO", "RS", "RU",
	"SA", "SE", "SG", "SI", "SK", "TH", "TR", "US",
)

// Weight and value are range-checked by the API itself, so only their
// format is validated locally.
var serviceRequirements = map[string]*ServiceRequirements{
	ServicePPTT: {
		Fields: []FieldRule{
			{shipper.FieldSenderFullName, 30, "sender name"},
			{shipper.FieldSenderCompany, 30, "sender company"},
			{shipper.FieldSenderAddress, 90, "sender address"}, // 3 lines of 30
			{shipper.FieldSenderCity, 30, "sender city"},
			{shipper.FieldSenderPostalCode, 20, "sender postal code"},
			{shipper.FieldSenderPhone, 15, "sender phone"},
			{shipper.FieldDeliveryFullName, 30, "delivery name"},
			{shipper.FieldDeliveryCompany, 30, "delivery company"},
			{shipper.FieldDeliveryAddress, 90, "delivery address"},
			{shipper.FieldDeliveryCity, 30, "delivery city"},
			{shipper.FieldDeliveryPostalCode, 20, "delivery postal code"},
			{shipper.FieldDeliveryPhone, 15, "delivery phone"},
		},
		MaxAddressLineLen:  30,
		SupportedCountries: supportedCountryCodes,
	},
}

// Requirements returns the input limits for a service code.
func Requirements(service string) (*ServiceRequirements, bool) {
	r, ok := serviceRequirements[service]
	return r, ok
}

// Services returns the supported service codes in sorted order.
func Services() []string {
	return slices.Sorted(maps.Keys(serviceRequirements))
}

func countrySet(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}
