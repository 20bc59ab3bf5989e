package spring_test

import (
	"github.com/tournevent/spring/pkg/shipper"
)

func validOrder() shipper.Order {
	return shipper.Order{
		"weight":              "0.7",
		"value":               "120",
		"currency":            "PLN",
		"description":         "Technical documentation of the project",
		"declaration_type":    "Documents",
		"sender_fullname":     "Lopez the Quick",
		"sender_company":      "BaseLinker",
		"sender_address":      "Kiszczaka 12A",
		"sender_city":         "Abramów",
		"sender_postalcode":   "67890",
		"sender_country":      "PL",
		"sender_phone":        "555555555",
		"delivery_fullname":   "Maud Driant",
		"delivery_company":    "Spring GDS",
		"delivery_address":    "Strada Foisorului, Nr. 16, Bl. F11C, Sc. 1, Ap. 10",
		"delivery_city":       "Bucuresti, Sector 3",
		"delivery_postalcode": "031179",
		"delivery_country":    "RO",
		"delivery_phone":      "333333333",
		"delivery_email":      "john@doe.com",
	}
}

func requiredFields() []string {
	return []string{
		"sender_fullname", "sender_company", "sender_address", "sender_city",
		"sender_postalcode", "sender_phone",
		"delivery_fullname", "delivery_company", "delivery_address", "delivery_city",
		"delivery_postalcode", "delivery_phone",
	}
}
