package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/tournevent/spring/pkg/shipper"
	"github.com/tournevent/spring/pkg/shipper/spring"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Spring
	SpringURL         string        `envconfig:"SPRING_API_URL" default:"https://mtapi.net/?testMode=1"`
	SpringAPIKey      string        `envconfig:"SPRING_API_KEY"`
	SpringLabelFormat string        `envconfig:"SPRING_LABEL_FORMAT" default:"PDF"`
	SpringService     string        `envconfig:"SPRING_SERVICE" default:"PPTT"`
	SpringTimeout     time.Duration `envconfig:"SPRING_TIMEOUT" default:"0s"`
	SpringTimeZone    string        `envconfig:"SPRING_ORDER_DATE_TZ" default:"UTC"`
	SpringUseMock     bool          `envconfig:"SPRING_USE_MOCK" default:"false"`

	// Batch submissions from the CLI
	BatchConcurrency int `envconfig:"BATCH_CONCURRENCY" default:"4"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"spring-shipping"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables. Values from a .env
// file in the working directory are applied first when the file exists;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// SpringClientConfig returns the client settings for the Spring API.
func (c *Config) SpringClientConfig() (shipper.ClientConfig, error) {
	if _, ok := spring.Requirements(c.SpringService); !ok {
		return shipper.ClientConfig{}, fmt.Errorf("unsupported SPRING_SERVICE %q (supported: %s)",
			c.SpringService, strings.Join(spring.Services(), ", "))
	}

	loc, err := time.LoadLocation(c.SpringTimeZone)
	if err != nil {
		return shipper.ClientConfig{}, fmt.Errorf("loading order date time zone: %w", err)
	}

	return shipper.ClientConfig{
		URL:         c.SpringURL,
		APIKey:      c.SpringAPIKey,
		LabelFormat: shipper.LabelFormat(c.SpringLabelFormat),
		Service:     c.SpringService,
		Timeout:     c.SpringTimeout,
		Location:    loc,
	}, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("spring.service", c.SpringService),
		attribute.String("spring.label_format", c.SpringLabelFormat),
		attribute.Bool("spring.mock", c.SpringUseMock),
	}
}
