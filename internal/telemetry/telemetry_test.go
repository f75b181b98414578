package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainpulse/trainpulse-ai-go/internal/config"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitStdoutExporter(t *testing.T) {
	shutdown, err := Init(config.TelemetryConfig{
		Enabled:     true,
		ServiceName: "trainpulse-test",
	})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	tracer := Tracer("test")
	_, span := tracer.Start(context.Background(), "noop")
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}
