package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitOtel_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), Options{ServiceName: "task-manager"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NotNil(t, otel.GetTextMapPropagator())
	require.NoError(t, shutdown(context.Background()))
}
