// Package spring provides integration with the Spring parcel-shipping API.
package spring

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/tournevent/spring/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	carrierName = "spring"
	tracerName  = "github.com/tournevent/spring/pkg/shipper/spring"
)

// Config holds Spring configuration.
type Config struct {
	shipper.ClientConfig
	UseMock bool
}

// Client is the Spring shipper client. It keeps no per-call state and is
// safe for concurrent use.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// New creates a new Spring client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			URL:     cfg.URL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
			Tracer:  tracer,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new Spring client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	if cfg.LabelFormat == "" {
		cfg.LabelFormat = shipper.LabelPDF
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
		now:       time.Now,
	}
}

// WithClock returns a copy of the client that reads time from now.
func (c *Client) WithClock(now func() time.Time) *Client {
	cp := *c
	cp.now = now
	return &cp
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// CreateShipment validates an order, submits it and returns the tracking
// number. Invalid orders never reach the network.
func (c *Client) CreateShipment(ctx context.Context, order shipper.Order) (string, error) {
	ctx, span := c.tracer.Start(ctx, "spring.CreateShipment", trace.WithAttributes(
		attribute.String("spring.service", c.config.Service),
	))
	defer span.End()

	order = order.Trimmed()

	if err := validateTrimmed(order, c.config.Service); err != nil {
		c.logFailure(ctx, span, "Spring order rejected", err)
		return "", err
	}

	payload, err := BuildShipmentPayload(order, c.config.LabelFormat, c.config.Service,
		WithClock(c.now),
		WithLocation(c.config.Location),
	)
	if err != nil {
		c.logFailure(ctx, span, "Spring payload build failed", err)
		return "", err
	}

	c.logger.Ctx(ctx).Info("Creating Spring shipment",
		zap.String("service", payload.Service),
		zap.String("shipper_reference", payload.ShipperReference),
		zap.String("destination_country", payload.ConsigneeAddress.Country),
	)

	resp, err := c.apiClient.Send(ctx, CommandOrderShipment, payload)
	if err != nil {
		c.logFailure(ctx, span, "Spring API error", err)
		return "", err
	}

	tracking, ok := resp.ShipmentString("TrackingNumber")
	if !ok || tracking == "" {
		err := shipper.Internal("tracking number missing in response")
		c.logFailure(ctx, span, "Spring API error", err)
		return "", err
	}

	span.SetAttributes(attribute.String("spring.tracking_number", tracking))
	return tracking, nil
}

// FetchLabel retrieves and decodes the label for a tracking number.
func (c *Client) FetchLabel(ctx context.Context, trackingNumber string) (*shipper.Label, error) {
	ctx, span := c.tracer.Start(ctx, "spring.FetchLabel", trace.WithAttributes(
		attribute.String("spring.tracking_number", trackingNumber),
	))
	defer span.End()

	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		err := shipper.InvalidInput("please provide tracking number")
		c.logFailure(ctx, span, "Spring label request rejected", err)
		return nil, err
	}

	c.logger.Ctx(ctx).Info("Getting Spring label",
		zap.String("tracking_number", trackingNumber),
		zap.String("format", string(c.config.LabelFormat)),
	)

	resp, err := c.apiClient.Send(ctx, CommandGetShipmentLabel, BuildLabelPayload(trackingNumber, c.config.LabelFormat))
	if err != nil {
		c.logFailure(ctx, span, "Spring API error", err)
		return nil, err
	}

	encoded, ok := resp.ShipmentString("LabelImage")
	if !ok {
		err := shipper.Internal("label image missing in response")
		c.logFailure(ctx, span, "Spring API error", err)
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		err := shipper.Internal("API responded with invalid label").WithCause(err)
		c.logFailure(ctx, span, "Spring API error", err)
		return nil, err
	}

	return &shipper.Label{
		TrackingNumber: trackingNumber,
		Format:         c.config.LabelFormat,
		Data:           data,
	}, nil
}

// logFailure logs internal errors at error level and user-facing ones at
// info level, and marks the span.
func (c *Client) logFailure(ctx context.Context, span trace.Span, msg string, err error) {
	kind := shipper.KindOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, kind.String())

	fields := []zap.Field{zap.String("kind", kind.String()), zap.Error(err)}
	if kind == shipper.KindInternal {
		c.logger.Ctx(ctx).Error(msg, fields...)
		return
	}
	c.logger.Ctx(ctx).Info(msg, fields...)
}

var _ shipper.Shipper = (*Client)(nil)
