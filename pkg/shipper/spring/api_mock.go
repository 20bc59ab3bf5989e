package spring

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/spring/pkg/shipper"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	// OnSend overrides the default behaviour when set.
	OnSend func(ctx context.Context, command Command, shipment any) (Response, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one Send invocation.
type MockCall struct {
	Command  Command
	Shipment any
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Send records the call and returns a canned response.
func (m *MockAPIClient) Send(ctx context.Context, command Command, shipment any) (Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Command: command, Shipment: shipment})
	m.mu.Unlock()

	if m.SimulateLatency > 0 {
		select {
		case <-ctx.Done():
			return nil, shipper.Internal("request failed").WithCause(ctx.Err())
		case <-time.After(m.SimulateLatency):
		}
	}

	if m.SimulateErrors {
		return nil, shipper.NewError(shipper.KindAPIFatal, "Simulated API error")
	}

	if m.OnSend != nil {
		return m.OnSend(ctx, command, shipment)
	}

	switch command {
	case CommandOrderShipment:
		tracking := "SP" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:14])
		return Response{"Shipment": map[string]any{"TrackingNumber": tracking}}, nil
	case CommandGetShipmentLabel:
		label := []byte("%PDF-1.4 mock label")
		if p, ok := shipment.(LabelPayload); ok {
			label = append(label, []byte(" "+p.TrackingNumber)...)
		}
		return Response{"Shipment": map[string]any{
			"LabelImage": base64.StdEncoding.EncodeToString(label),
		}}, nil
	default:
		return nil, shipper.NewError(shipper.KindAPIFatal, "Unknown command")
	}
}

// Calls returns the recorded Send invocations.
func (m *MockAPIClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// RawResponse builds an OnSend hook that runs body through the same
// decoding and ErrorLevel classification as the HTTP client.
func RawResponse(body string) func(ctx context.Context, command Command, shipment any) (Response, error) {
	return func(ctx context.Context, command Command, shipment any) (Response, error) {
		return decodeResponse([]byte(body))
	}
}

// EchoResponse builds an OnSend hook that returns v re-encoded as JSON and
// decoded again, like a server echoing a fixed document.
func EchoResponse(v any) func(ctx context.Context, command Command, shipment any) (Response, error) {
	return func(ctx context.Context, command Command, shipment any) (Response, error) {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, shipper.Internal("encode mock response").WithCause(err)
		}
		return decodeResponse(raw)
	}
}

var _ APIClient = (*MockAPIClient)(nil)
