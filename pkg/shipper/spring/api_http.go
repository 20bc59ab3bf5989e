package spring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tournevent/spring/pkg/shipper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	contentType = "text/json"

	defaultAPIErrorMessage = "network connection error"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP/JSON.
type HTTPAPIClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
	tracer     trace.Tracer
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	URL    string
	APIKey string
	// Timeout of zero leaves the http.Client default in place.
	Timeout    time.Duration
	HTTPClient *http.Client
	Tracer     trace.Tracer
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &HTTPAPIClient{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		tracer:     tracer,
	}
}

// Send posts a command to the Spring API and classifies the response.
func (c *HTTPAPIClient) Send(ctx context.Context, command Command, shipment any) (Response, error) {
	ctx, span := c.tracer.Start(ctx, "spring.Send", trace.WithAttributes(
		attribute.String("spring.command", string(command)),
	))
	defer span.End()

	resp, err := c.send(ctx, command, shipment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, shipper.KindOf(err).String())
		return nil, err
	}
	return resp, nil
}

func (c *HTTPAPIClient) send(ctx context.Context, command Command, shipment any) (Response, error) {
	body, err := encodeRequest(requestEnvelope{
		Shipment: shipment,
		Apikey:   c.apiKey,
		Command:  command,
	})
	if err != nil {
		return nil, shipper.Internal("encode request body").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, shipper.Internal("create request").WithCause(err)
	}
	req.Header.Set("Content-Type", contentType)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, shipper.Internal("request failed").WithCause(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, shipper.Internal("request failed").
			WithCause(fmt.Errorf("unexpected HTTP status %d", httpResp.StatusCode))
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, shipper.Internal("read response body").WithCause(err)
	}

	return decodeResponse(raw)
}

// encodeRequest marshals v without escaping HTML characters, slashes or
// non-ASCII text, and without the encoder's trailing newline.
func encodeRequest(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// decodeResponse turns a raw body into a Response or a classified error.
func decodeResponse(raw []byte) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var result Response
	if err := dec.Decode(&result); err != nil {
		return nil, shipper.Internal("decode response").WithCause(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, shipper.Internal("decode response").WithCause(fmt.Errorf("unexpected data after JSON object"))
	}
	if result == nil {
		return nil, shipper.Internal("decode response").WithCause(fmt.Errorf("response is not a JSON object"))
	}

	level, present := result["ErrorLevel"]
	if !present {
		return result, nil
	}

	kind, failed := classifyErrorLevel(level)
	if !failed {
		return result, nil
	}

	msg, ok := result["Error"].(string)
	if !ok {
		msg = defaultAPIErrorMessage
	}
	return nil, shipper.NewError(kind, msg)
}

// classifyErrorLevel maps the ErrorLevel value to an error kind. Level 0 (or
// null) is success, 1 is a regular API error and anything else is fatal.
func classifyErrorLevel(level any) (shipper.ErrorKind, bool) {
	var n int64
	switch v := level.(type) {
	case nil:
		return 0, false
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return shipper.KindAPIFatal, true
		}
		n = i
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return shipper.KindAPIFatal, true
		}
		n = i
	default:
		return shipper.KindAPIFatal, true
	}

	switch n {
	case 0:
		return 0, false
	case 1:
		return shipper.KindAPI, true
	default:
		return shipper.KindAPIFatal, true
	}
}

var _ APIClient = (*HTTPAPIClient)(nil)
