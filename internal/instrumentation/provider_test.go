package instrumentation

import (
	"context"
	"testing"
	"time"
)

func providerConfig(metricsExporter, tracingExporter string) Config {
	return Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: metricsExporter,
		TracingExporter: tracingExporter,
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}

	// A disabled provider still hands out a recorder and a tracer
	if provider.Metrics() == nil {
		t.Error("expected metrics to be non-nil even when disabled")
	}
	if provider.Tracer("test") == nil {
		t.Error("expected a no-op tracer when disabled")
	}

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, providerConfig("prometheus", "none"))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}
	if provider.Metrics() == nil {
		t.Error("expected metrics to be non-nil")
	}
	if provider.PrometheusHandler() == nil {
		t.Error("expected PrometheusHandler to be non-nil for prometheus exporter")
	}
	if provider.Tracer("test") == nil {
		t.Error("expected tracer to be non-nil")
	}
}

func TestNewProvider_StdoutExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, providerConfig("stdout", "stdout"))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}
	if provider.PrometheusHandler() != nil {
		t.Error("expected PrometheusHandler to be nil for stdout exporter")
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "unknown metrics exporter",
			config: providerConfig("invalid", "none"),
		},
		{
			name:   "unknown tracing exporter",
			config: providerConfig("prometheus", "invalid"),
		},
		{
			name:   "otlp tracing without endpoint",
			config: providerConfig("prometheus", "otlp"),
		},
		{
			name:   "otlp metrics without endpoint",
			config: providerConfig("otlp", "none"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if _, err := NewProvider(ctx, tt.config); err == nil {
				t.Error("NewProvider() expected error, got nil")
			}
		})
	}
}

func TestProvider_Shutdown(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, providerConfig("prometheus", "none"))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
