package spring

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/tournevent/spring/pkg/shipper"
)

// validate is safe for concurrent use and caches nothing per order.
var validate = validator.New()

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// Validate checks an order against the rules of a service. It trims a copy
// of the order and stops at the first failing rule.
func Validate(order shipper.Order, service string) error {
	return validateTrimmed(order.Trimmed(), service)
}

func validateTrimmed(order shipper.Order, service string) error {
	if !isDecimal(order, shipper.FieldWeight) {
		return shipper.InvalidInput("please provide weight in kg")
	}
	if !isDecimal(order, shipper.FieldValue) {
		return shipper.InvalidInput("please provide package value")
	}
	if email, ok := order.Lookup(shipper.FieldDeliveryEmail); !ok || validate.Var(email, "required,email") != nil {
		return shipper.InvalidInput("please provide delivery email")
	}

	reqs, ok := Requirements(service)
	if !ok {
		return shipper.Internal("unsupported service").WithCause(fmt.Errorf("service code %q", service))
	}

	for _, rule := range reqs.Fields {
		v, ok := order.Lookup(rule.Field)
		if !ok || v == "" || utf8.RuneCountInString(v) > rule.MaxLength || isMarkupOnly(v) {
			return shipper.InvalidInput(fmt.Sprintf("please provide %s with maximum of %d characters", rule.Label, rule.MaxLength))
		}
	}

	if c, ok := order.Lookup(shipper.FieldSenderCountry); !ok || !reqs.SupportsCountry(c) {
		return shipper.InvalidInput("please provide valid ISO country code for sender")
	}
	if c, ok := order.Lookup(shipper.FieldDeliveryCountry); !ok || !reqs.SupportsCountry(c) {
		return shipper.InvalidInput("please provide valid ISO country code for delivery")
	}

	// Currency is optional and defaults when blank.
	if c := order[shipper.FieldCurrency]; c != "" && validate.Var(c, "iso4217") != nil {
		return shipper.InvalidInput("please provide valid ISO 4217 currency code")
	}

	return nil
}

// isDecimal reports whether field is present and holds a plain finite decimal
// such as "12", "-3" or "0.75".
func isDecimal(order shipper.Order, field string) bool {
	v, ok := order.Lookup(field)
	if !ok || validate.Var(v, "required,numeric") != nil {
		return false
	}
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// isMarkupOnly reports whether s carries no printable text: invalid UTF-8,
// or nothing left once HTML tags, whitespace and control or format
// characters are removed.
func isMarkupOnly(s string) bool {
	if !utf8.ValidString(s) {
		return true
	}
	for _, r := range htmlTag.ReplaceAllString(s, "") {
		if unicode.IsSpace(r) || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		return false
	}
	return true
}
