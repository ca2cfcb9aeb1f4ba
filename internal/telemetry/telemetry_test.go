package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, span := StartStage(context.Background(), "load", "anda")
	assert.NotNil(t, ctx)
	EndStage(span, errors.New("boom"))

	assert.NoError(t, shutdown(context.Background()))
}
