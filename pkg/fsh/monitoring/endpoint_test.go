package monitoring

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort asks the kernel for an unused localhost port.
func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().String()
}

// waitForEndpoint polls the metrics route until the server answers.
func waitForEndpoint(t *testing.T, addr string) *http.Response {
	t.Helper()
	var (
		resp *http.Response
		err  error
	)
	for i := 0; i < 50; i++ {
		resp, err = http.Get(fmt.Sprintf("http://%s/metrics", addr))
		if err == nil {
			return resp
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("endpoint never came up: %v", err)
	return nil
}

// TestEnableEndpoint_ServesMetrics tests that the diagnostics server comes
// up and serves the Prometheus exposition format.
func TestEnableEndpoint_ServesMetrics(t *testing.T) {
	addr := freePort(t)

	require.NoError(t, EnableEndpoint(addr))
	defer StopEndpoint()

	assert.True(t, IsEndpointEnabled())
	assert.Equal(t, addr, GetEndpointAddress())

	resp := waitForEndpoint(t, addr)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
}

// TestEnableEndpoint_Validation tests the refusal cases: empty address and
// double enable.
func TestEnableEndpoint_Validation(t *testing.T) {
	assert.Error(t, EnableEndpoint(""), "empty address must be refused")

	addr := freePort(t)
	require.NoError(t, EnableEndpoint(addr))
	defer StopEndpoint()

	assert.Error(t, EnableEndpoint(addr), "double enable must be refused")
}

// TestStopEndpoint tests shutdown and the post-stop state.
func TestStopEndpoint(t *testing.T) {
	addr := freePort(t)
	require.NoError(t, EnableEndpoint(addr))

	resp := waitForEndpoint(t, addr)
	resp.Body.Close()

	StopEndpoint()

	assert.False(t, IsEndpointEnabled())
	assert.Empty(t, GetEndpointAddress())

	// Stopping again is harmless.
	assert.NotPanics(t, StopEndpoint)
}
