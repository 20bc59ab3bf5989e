package server

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tournevent/spring/pkg/shipper"
)

// decodeOrder reads a flat JSON object into an order. Numbers are kept in
// their textual form; null fields are skipped.
func decodeOrder(r io.Reader) (shipper.Order, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("body is null")
	}

	order := make(shipper.Order, len(raw))
	for field, v := range raw {
		switch v := v.(type) {
		case nil:
		case string:
			order[field] = v
		case json.Number:
			order[field] = v.String()
		default:
			return nil, fmt.Errorf("field %q must be a string", field)
		}
	}
	return order, nil
}
