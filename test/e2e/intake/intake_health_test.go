package intake_test

import (
	"testing"

	"github.com/aussiebroadwan/leadflow/pkg/intakesdk"
	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check endpoint.
func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupIntakeContainer(t)
	defer cleanup()

	client := intakesdk.NewClient(baseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
}

// TestReadyzEndpoint verifies readiness reports each dependency.
func TestReadyzEndpoint(t *testing.T) {
	baseURL, cleanup := setupIntakeContainer(t)
	defer cleanup()

	client := intakesdk.NewClient(baseURL)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "disabled", health.Checks.Search)
	require.Equal(t, "log", health.Checks.Events)
}
