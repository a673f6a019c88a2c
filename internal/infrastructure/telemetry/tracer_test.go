package telemetry_test

import (
	"context"
	"testing"

	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/appforge/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, config.TelemetryConfig{
		Enabled:     false,
		ServiceName: "appforge-test",
	}, "test", zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	before := otel.GetTracerProvider()
	tp.EnableSpanProfiles()
	assert.Equal(t, before, otel.GetTracerProvider())
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	ctx := context.Background()
	// the gRPC exporter connects lazily, so no collector is needed
	tp, err := telemetry.NewTracerProvider(ctx, config.TelemetryConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     0.5,
		ServiceName:       "appforge-test",
		Insecure:          true,
	}, "test", nil)
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	_, span := otel.Tracer("test").Start(ctx, "noop")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	tp.EnableSpanProfiles()
	_, span = otel.Tracer("test").Start(ctx, "profiled")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = tp.Shutdown(shutdownCtx)
}
