// Package testutil provides shared test helpers and region fixtures.
package testutil

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ble27/Spherical-Visualizer/internal/monitoring"
	"github.com/ble27/Spherical-Visualizer/internal/region"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertContentType checks the Content-Type header of a recorded response.
func AssertContentType(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got := rec.Header().Get("Content-Type"); got != want {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// DefaultBounds is the region shown before the user enters anything: a unit
// ball cut to the upper hemisphere and three quarters of a turn.
func DefaultBounds() region.Bounds {
	return region.Bounds{
		RhoMin: 0, RhoMax: 1,
		PhiMin: 0, PhiMax: math.Pi / 2,
		ThetaMin: 0, ThetaMax: 3 * math.Pi / 2,
	}
}

// FullSphereBounds is a closed ball of the given radius, which needs no cone
// or wedges.
func FullSphereBounds(rho float64) region.Bounds {
	return region.Bounds{
		RhoMax:   rho,
		PhiMax:   math.Pi,
		ThetaMax: 2 * math.Pi,
	}
}

// MustBuild builds the surfaces for b at resolution n with the default
// builder, failing the test on error.
func MustBuild(t *testing.T, b region.Bounds, n int) []region.Surface {
	t.Helper()
	surfaces, err := region.Build(b, n)
	if err != nil {
		t.Fatalf("region.Build(%+v, %d): %v", b, n, err)
	}
	return surfaces
}

// CaptureLogs redirects monitoring.Logf into lines for the rest of the test.
func CaptureLogs(t *testing.T, lines *[]string) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...interface{}) {
		*lines = append(*lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(prev) })
}
