package telemetry_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/tournevent/spring/internal/telemetry"
	"go.uber.org/zap/zapcore"
)

func TestMetrics_RecordRequest(t *testing.T) {
	m := telemetry.NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("create_shipment", "spring", "ok", 0.2)
	m.RecordRequest("create_shipment", "spring", "ok", 0.3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("create_shipment", "spring", "ok")))
}

func TestMetrics_RecordError(t *testing.T) {
	m := telemetry.NewMetrics(prometheus.NewRegistry())

	m.RecordError("spring", "api_error")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CarrierErrors.WithLabelValues("spring", "api_error")))
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.NewMetrics(prometheus.NewRegistry())
		telemetry.NewMetrics(prometheus.NewRegistry())
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, telemetry.ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, telemetry.ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, telemetry.ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, telemetry.ParseLevel("verbose"))
}

func TestNewLogger(t *testing.T) {
	logger, err := telemetry.NewLogger("debug")
	assert.NoError(t, err)
	assert.NotNil(t, logger)
}
