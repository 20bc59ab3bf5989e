package spring_test

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/spring/pkg/shipper"
	"github.com/tournevent/spring/pkg/shipper/spring"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func testConfig() spring.Config {
	return spring.Config{
		ClientConfig: shipper.ClientConfig{
			URL:         "https://mtapi.net/?testMode=1",
			APIKey:      "f16753b55cac6c6e",
			LabelFormat: shipper.LabelPDF,
			Service:     spring.ServicePPTT,
		},
	}
}

func newTestClient(mockClient *spring.MockAPIClient) *spring.Client {
	logger := otelzap.New(zap.NewNop())
	return spring.NewWithAPIClient(
		testConfig(),
		mockClient,
		logger,
		nil,
	)
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(spring.NewMockAPIClient())
	assert.Equal(t, "spring", client.Name())
}

func TestClient_CreateShipment_Success(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	client := newTestClient(mockAPI)

	tracking, err := client.CreateShipment(context.Background(), validOrder())

	require.NoError(t, err)
	assert.NotEmpty(t, tracking)

	calls := mockAPI.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, spring.CommandOrderShipment, calls[0].Command)
}

func TestClient_CreateShipment_EchoedTrackingNumber(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	mockAPI.OnSend = spring.EchoResponse(map[string]any{
		"Shipment": map[string]any{"TrackingNumber": "T123"},
	})
	client := newTestClient(mockAPI)

	tracking, err := client.CreateShipment(context.Background(), validOrder())

	require.NoError(t, err)
	assert.Equal(t, "T123", tracking)
}

func TestClient_CreateShipment_SendsBuiltPayload(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	client := newTestClient(mockAPI).WithClock(fixedClock)

	order := validOrder()
	order["sender_fullname"] = "  Lopez the Quick  "

	_, err := client.CreateShipment(context.Background(), order)
	require.NoError(t, err)

	calls := mockAPI.Calls()
	require.Len(t, calls, 1)
	payload, ok := calls[0].Shipment.(spring.ShipmentPayload)
	require.True(t, ok)

	assert.Equal(t, "Lopez the Quick", payload.ConsignorAddress.Name)
	assert.Equal(t, "2025-03-14", payload.OrderDate)
	assert.Equal(t, spring.ShipperReference("Lopez the Quick", fixedClock()), payload.ShipperReference)
	assert.Equal(t, "  Lopez the Quick  ", order["sender_fullname"], "caller's order must not be modified")
}

func TestClient_CreateShipment_MissingFieldsNeverReachAPI(t *testing.T) {
	fields := append([]string{"weight", "value", "delivery_email"}, requiredFields()...)

	for _, field := range fields {
		t.Run(field, func(t *testing.T) {
			mockAPI := spring.NewMockAPIClient()
			client := newTestClient(mockAPI)

			order := validOrder()
			delete(order, field)

			_, err := client.CreateShipment(context.Background(), order)
			require.Error(t, err)
			assert.Equal(t, shipper.KindInvalidInput, shipper.KindOf(err))
			assert.Empty(t, mockAPI.Calls())
		})
	}
}

func TestClient_CreateShipment_InvalidEmailNeverReachesAPI(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	client := newTestClient(mockAPI)

	order := validOrder()
	order["delivery_email"] = "not-an-email"

	_, err := client.CreateShipment(context.Background(), order)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shipper.ErrInvalidInput))
	assert.Empty(t, mockAPI.Calls())
}

func TestClient_CreateShipment_UnknownCountry(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	client := newTestClient(mockAPI)

	order := validOrder()
	order["sender_country"] = "ZZ"

	_, err := client.CreateShipment(context.Background(), order)
	require.Error(t, err)
	assert.Equal(t, shipper.KindInvalidInput, shipper.KindOf(err))
	assert.Contains(t, err.Error(), "valid ISO country code")
	assert.Empty(t, mockAPI.Calls())
}

func TestClient_CreateShipment_UnsupportedService(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	cfg := testConfig()
	cfg.Service = "EXPR"
	client := spring.NewWithAPIClient(cfg, mockAPI, otelzap.New(zap.NewNop()), nil)

	_, err := client.CreateShipment(context.Background(), validOrder())
	require.Error(t, err)
	assert.Equal(t, shipper.KindInternal, shipper.KindOf(err))
	assert.Equal(t, shipper.InternalPublicMessage, shipper.PublicMessage(err))
	assert.Empty(t, mockAPI.Calls())
}

func TestClient_CreateShipment_APIError(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	mockAPI.OnSend = spring.RawResponse(`{"ErrorLevel":1,"Error":"Maximum weight exceeded"}`)
	client := newTestClient(mockAPI)

	_, err := client.CreateShipment(context.Background(), validOrder())

	var apiErr *shipper.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, shipper.KindAPI, apiErr.Kind)
	assert.Equal(t, "Maximum weight exceeded", apiErr.Message)
	assert.Equal(t, "Maximum weight exceeded", shipper.PublicMessage(err))
}

func TestClient_CreateShipment_APIFatalError(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.CreateShipment(context.Background(), validOrder())
	require.Error(t, err)
	assert.Equal(t, shipper.KindAPIFatal, shipper.KindOf(err))
}

func TestClient_CreateShipment_UndecodableResponse(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	mockAPI.OnSend = spring.RawResponse(`{"Shipment":`)
	client := newTestClient(mockAPI)

	_, err := client.CreateShipment(context.Background(), validOrder())
	require.Error(t, err)
	assert.Equal(t, shipper.KindInternal, shipper.KindOf(err))
}

func TestClient_CreateShipment_TrackingNumberMissing(t *testing.T) {
	for name, body := range map[string]string{
		"no shipment":     `{}`,
		"no tracking":     `{"Shipment":{}}`,
		"not a string":    `{"Shipment":{"TrackingNumber":123}}`,
		"shipment scalar": `{"Shipment":"T123"}`,
	} {
		t.Run(name, func(t *testing.T) {
			mockAPI := spring.NewMockAPIClient()
			mockAPI.OnSend = spring.RawResponse(body)
			client := newTestClient(mockAPI)

			_, err := client.CreateShipment(context.Background(), validOrder())
			require.Error(t, err)
			assert.Equal(t, shipper.KindInternal, shipper.KindOf(err))
			assert.Contains(t, err.Error(), "tracking number missing in response")
		})
	}
}

func TestClient_CreateShipment_Concurrent(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	client := newTestClient(mockAPI)

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.CreateShipment(context.Background(), validOrder())
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, mockAPI.Calls(), 20)
}

func TestClient_FetchLabel_Success(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	pdf := []byte("%PDF-1.4 label bytes")
	mockAPI.OnSend = spring.EchoResponse(map[string]any{
		"Shipment": map[string]any{"LabelImage": base64.StdEncoding.EncodeToString(pdf)},
	})
	client := newTestClient(mockAPI)

	label, err := client.FetchLabel(context.Background(), "T123")

	require.NoError(t, err)
	assert.Equal(t, pdf, label.Data)
	assert.Equal(t, shipper.LabelPDF, label.Format)
	assert.Equal(t, "T123", label.TrackingNumber)

	calls := mockAPI.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, spring.CommandGetShipmentLabel, calls[0].Command)
	assert.Equal(t, spring.LabelPayload{LabelFormat: "PDF", TrackingNumber: "T123"}, calls[0].Shipment)
}

func TestClient_FetchLabel_DefaultMock(t *testing.T) {
	client := newTestClient(spring.NewMockAPIClient())

	label, err := client.FetchLabel(context.Background(), "SP1")
	require.NoError(t, err)
	assert.Contains(t, string(label.Data), "%PDF")
}

func TestClient_FetchLabel_EmptyTrackingNumber(t *testing.T) {
	mockAPI := spring.NewMockAPIClient()
	client := newTestClient(mockAPI)

	_, err := client.FetchLabel(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, shipper.KindInvalidInput, shipper.KindOf(err))
	assert.Empty(t, mockAPI.Calls())
}

func TestClient_FetchLabel_Failures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		kind    shipper.ErrorKind
		message string
	}{
		{"missing label", `{"Shipment":{"TrackingNumber":"T123"}}`, shipper.KindInternal, "label image missing in response"},
		{"invalid base64", `{"Shipment":{"LabelImage":"!!not base64!!"}}`, shipper.KindInternal, "API responded with invalid label"},
		{"api error", `{"ErrorLevel":1,"Error":"Shipment not found"}`, shipper.KindAPI, "Shipment not found"},
		{"undecodable", `not json`, shipper.KindInternal, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := spring.NewMockAPIClient()
			mockAPI.OnSend = spring.RawResponse(tt.body)
			client := newTestClient(mockAPI)

			label, err := client.FetchLabel(context.Background(), "T123")
			require.Error(t, err)
			assert.Nil(t, label)
			assert.Equal(t, tt.kind, shipper.KindOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestNew_UseMock(t *testing.T) {
	cfg := testConfig()
	cfg.UseMock = true
	client := spring.New(cfg, otelzap.New(zap.NewNop()), nil)

	tracking, err := client.CreateShipment(context.Background(), validOrder())
	require.NoError(t, err)

	label, err := client.FetchLabel(context.Background(), tracking)
	require.NoError(t, err)
	assert.NotEmpty(t, label.Data)
}

func TestClient_CreateShipment_CancelledWhileWaiting(t *testing.T) {
	mockClient := spring.NewMockAPIClient()
	mockClient.SimulateLatency = time.Hour
	client := newTestClient(mockClient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreateShipment(ctx, validOrder())
	require.Error(t, err)
	assert.Equal(t, shipper.KindInternal, shipper.KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, mockClient.Calls(), 1)
}
