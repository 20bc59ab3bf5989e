package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tournevent/spring/pkg/shipper"
	"gopkg.in/yaml.v3"
)

// readOrderFile loads orders from a YAML or JSON file. The document is
// either one mapping of order fields or a sequence of them. Scalars keep
// their source text, so "0.70" stays "0.70".
func readOrderFile(path string) ([]shipper.Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	orders, err := parseOrders(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return orders, nil
}

func parseOrders(data []byte) ([]shipper.Order, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("no orders")
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		var order shipper.Order
		if err := root.Decode(&order); err != nil {
			return nil, err
		}
		return []shipper.Order{order}, nil
	case yaml.SequenceNode:
		var orders []shipper.Order
		if err := root.Decode(&orders); err != nil {
			return nil, err
		}
		if len(orders) == 0 {
			return nil, errors.New("no orders")
		}
		return orders, nil
	default:
		return nil, fmt.Errorf("line %d: expected an order or a list of orders", root.Line)
	}
}
