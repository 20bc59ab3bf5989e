package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/spring/internal/telemetry"
	"github.com/tournevent/spring/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const maxOrderBytes = 64 << 10

// unknownCarrier labels metrics for carriers that are not registered.
const unknownCarrier = "unknown"

// Server is the HTTP bridge in front of the registered carriers.
type Server struct {
	port           int
	defaultCarrier string
	registry       *shipper.Registry
	logger         *otelzap.Logger
	metrics        *telemetry.Metrics
	promRegistry   *prometheus.Registry
}

// Config holds server configuration.
type Config struct {
	Port int
	// DefaultCarrier is used when a request names none.
	DefaultCarrier string
}

// New creates a new server instance.
func New(cfg Config, registry *shipper.Registry, logger *otelzap.Logger) *Server {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Server{
		port:           cfg.Port,
		defaultCarrier: cfg.DefaultCarrier,
		registry:       registry,
		logger:         logger,
		metrics:        telemetry.NewMetrics(promRegistry),
		promRegistry:   promRegistry,
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
	mux.HandleFunc("POST /shipments", s.handleCreateShipment)
	mux.HandleFunc("GET /labels/{trackingNumber}", s.handleGetLabel)

	return s.withRequestID(mux)
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type createShipmentResponse struct {
	TrackingNumber string `json:"trackingNumber"`
	Carrier        string `json:"carrier"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	const operation = "create_shipment"
	start := time.Now()
	ctx := r.Context()

	carrier, sh, ok := s.lookupCarrier(w, r, operation)
	if !ok {
		return
	}

	order, err := decodeOrder(http.MaxBytesReader(w, r.Body, maxOrderBytes))
	if err != nil {
		s.metrics.RecordRequest(operation, carrier, "error", time.Since(start).Seconds())
		s.writeError(w, r, operation, carrier, shipper.InvalidInput("request body must be a JSON object of order fields").WithCause(err))
		return
	}

	tracking, err := sh.CreateShipment(ctx, order)
	if err != nil {
		s.metrics.RecordRequest(operation, carrier, "error", time.Since(start).Seconds())
		s.writeError(w, r, operation, carrier, err)
		return
	}

	s.metrics.RecordRequest(operation, carrier, "ok", time.Since(start).Seconds())
	s.logger.Ctx(ctx).Info("Shipment created",
		zap.String("carrier", carrier),
		zap.String("tracking_number", tracking),
		zap.String("request_id", w.Header().Get("X-Request-ID")),
	)

	writeJSON(w, http.StatusCreated, createShipmentResponse{TrackingNumber: tracking, Carrier: carrier})
}

func (s *Server) handleGetLabel(w http.ResponseWriter, r *http.Request) {
	const operation = "fetch_label"
	start := time.Now()

	carrier, sh, ok := s.lookupCarrier(w, r, operation)
	if !ok {
		return
	}

	label, err := sh.FetchLabel(r.Context(), r.PathValue("trackingNumber"))
	if err != nil {
		s.metrics.RecordRequest(operation, carrier, "error", time.Since(start).Seconds())
		s.writeError(w, r, operation, carrier, err)
		return
	}
	s.metrics.RecordRequest(operation, carrier, "ok", time.Since(start).Seconds())

	w.Header().Set("Content-Type", label.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="label.%s"`, label.Format.Extension()))
	w.Header().Set("Content-Length", fmt.Sprint(len(label.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(label.Data)
}

func (s *Server) lookupCarrier(w http.ResponseWriter, r *http.Request, operation string) (string, shipper.Shipper, bool) {
	carrier := r.URL.Query().Get("carrier")
	if carrier == "" {
		carrier = s.defaultCarrier
	}

	sh, err := s.registry.Get(carrier)
	if err != nil {
		s.writeError(w, r, operation, unknownCarrier, err)
		return carrier, nil, false
	}
	return carrier, sh, true
}

// writeError maps an error to a status code and a user-safe body. Internal
// details only go to the log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, operation, carrier string, err error) {
	kind := shipper.KindOf(err)
	s.metrics.RecordError(carrier, kind.String())

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shipper.ErrCarrierNotFound):
		status = http.StatusNotFound
		writeJSON(w, status, errorBody{Error: errorDetail{Kind: "not_found", Message: "unknown carrier"}})
		return
	case kind == shipper.KindInvalidInput:
		status = http.StatusBadRequest
	case kind == shipper.KindAPI, kind == shipper.KindAPIFatal:
		status = http.StatusBadGateway
	}

	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("carrier", carrier),
		zap.String("kind", kind.String()),
		zap.String("request_id", w.Header().Get("X-Request-ID")),
		zap.Error(err),
	}
	if kind == shipper.KindInternal {
		s.logger.Ctx(r.Context()).Error("Request failed", fields...)
	} else {
		s.logger.Ctx(r.Context()).Info("Request rejected", fields...)
	}

	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind.String(), Message: shipper.PublicMessage(err)}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
