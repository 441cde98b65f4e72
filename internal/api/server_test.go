package api

import (
	"context"
	"encoding/json"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ble27/Spherical-Visualizer/internal/config"
	"github.com/ble27/Spherical-Visualizer/internal/region"
	"github.com/ble27/Spherical-Visualizer/internal/testutil"
	"github.com/ble27/Spherical-Visualizer/internal/timeutil"
)

// localHostRequest makes a request that passes tsweb's loopback check.
func localHostRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "127.0.0.1:12345"
	return req
}

func serve(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := serve(t, NewServer(nil), testutil.NewTestRequest(http.MethodGet, "/health"))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.AssertContentType(t, rec, "application/json")
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleRegion_Defaults(t *testing.T) {
	rec := serve(t, NewServer(nil), testutil.NewTestRequest(http.MethodGet, "/api/region?n=10"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp RegionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	_, err := uuid.Parse(resp.BuildID)
	assert.NoError(t, err, "build_id should be a uuid")
	assert.Equal(t, 10, resp.Resolution)
	assert.Equal(t, "rad", resp.Units)
	assert.Equal(t, "π/2", resp.Inputs["phi_max"].Display)
	assert.Equal(t, "3π/2", resp.Inputs["theta_max"].Display)

	want := testutil.DefaultBounds()
	assert.InDelta(t, want.PhiMax, resp.Chart.Bounds.PhiMax, 1e-12)
	assert.InDelta(t, want.ThetaMax, resp.Chart.Bounds.ThetaMax, 1e-12)
	require.Len(t, resp.Chart.Series, 4)
	assert.Equal(t, region.NameSphere, resp.Chart.Series[0].Name)
}

func TestHandleRegion_BuildIDsDiffer(t *testing.T) {
	s := NewServer(nil)
	var ids []string
	for i := 0; i < 2; i++ {
		rec := serve(t, s, testutil.NewTestRequest(http.MethodGet, "/api/region?n=2"))
		var resp RegionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		ids = append(ids, resp.BuildID)
	}
	assert.NotEqual(t, ids[0], ids[1])
}

func TestHandleRegion_FullSphere(t *testing.T) {
	rec := serve(t, NewServer(nil), testutil.NewTestRequest(http.MethodGet,
		"/api/region?n=5&rho_max=2&phi_max=pi&theta_max=2pi"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp RegionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Chart.Series, 1)
	assert.InDelta(t, 2.1, resp.Chart.Extent, 1e-9)
}

func TestHandleRegion_Degrees(t *testing.T) {
	rec := serve(t, NewServer(nil), testutil.NewTestRequest(http.MethodGet,
		"/api/region?n=3&units=deg&phi_max=90&theta_max=270"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp RegionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "deg", resp.Units)
	assert.InDelta(t, math.Pi/2, resp.Chart.Bounds.PhiMax, 1e-12)
	assert.InDelta(t, 3*math.Pi/2, resp.Chart.Bounds.ThetaMax, 1e-12)
}

func TestHandleRegion_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"zero n", "/api/region?n=0"},
		{"negative n", "/api/region?n=-3"},
		{"non-numeric n", "/api/region?n=ten"},
		{"n too large", "/api/region?n=100000"},
		{"bad units", "/api/region?units=grad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, NewServer(nil), testutil.NewTestRequest(http.MethodGet, tt.target))
			testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
			testutil.AssertContentType(t, rec, "application/json")
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestHandlers_MethodNotAllowed(t *testing.T) {
	for _, path := range []string{"/api/region", "/api/parse?value=1", "/chart", "/projections.png"} {
		t.Run(path, func(t *testing.T) {
			rec := serve(t, NewServer(nil), testutil.NewTestRequest(http.MethodPost, path))
			testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
		})
	}
}

func TestHandleParse(t *testing.T) {
	rec := serve(t, NewServer(nil), testutil.NewTestRequest(http.MethodGet, "/api/parse?value=2pi"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got struct {
		Display string  `json:"display"`
		Numeric float64 `json:"numeric"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "2π", got.Display)
	assert.InDelta(t, 2*math.Pi, got.Numeric, 1e-12)

	rec = serve(t, NewServer(nil), testutil.NewTestRequest(http.MethodGet, "/api/parse"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestHandleChart(t *testing.T) {
	rec := serve(t, NewServer(nil), testutil.NewTestRequest(http.MethodGet, "/chart?n=8"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.AssertContentType(t, rec, "text/html; charset=utf-8")

	body := rec.Body.String()
	assert.Contains(t, body, "Spherical Region")
	assert.Contains(t, body, "Wedge 2")
}

func TestHandleProjections(t *testing.T) {
	cfg := config.EmptyMeshConfig()
	size := 1.0
	cfg.PlotSizeInches = &size

	rec := serve(t, NewServer(cfg), testutil.NewTestRequest(http.MethodGet, "/projections.png?n=6"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.AssertContentType(t, rec, "image/png")

	_, err := png.Decode(rec.Body)
	assert.NoError(t, err)
}

func TestDebugRoutes(t *testing.T) {
	s := NewServer(nil)

	rec := serve(t, s, localHostRequest(http.MethodGet, "/debug/config"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var cfg map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, float64(100), cfg["resolution"])
	assert.Equal(t, "1s", cfg["shutdown_timeout"])

	rec = serve(t, s, localHostRequest(http.MethodGet, "/debug/version"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "spherical "))
}

func TestNewServer_UsesConfiguredEpsilon(t *testing.T) {
	cfg := config.EmptyMeshConfig()
	eps := 0.5
	cfg.ClosureEpsilon = &eps

	s := NewServer(cfg)
	assert.Equal(t, 0.5, s.builder.Epsilon)

	// With a wide tolerance a region stopping 0.4 rad short of the pole is
	// treated as closed.
	rec := serve(t, s, testutil.NewTestRequest(http.MethodGet, "/api/region?n=3&phi_max=pi-0.4&theta_max=2pi"))
	var resp RegionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Chart.Series, 1)
}

func TestLoggingMiddleware(t *testing.T) {
	var logged []string
	testutil.CaptureLogs(t, &logged)

	clock := timeutil.NewMockClock(time.Unix(0, 0))
	h := loggingMiddleware(clock, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clock.Advance(250 * time.Millisecond)
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/x?y=1"))

	testutil.AssertStatusCode(t, rec.Code, http.StatusTeapot)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "418")
	assert.Contains(t, logged[0], "/x?y=1")
	assert.Contains(t, logged[0], "250ms")
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	cfg := config.EmptyMeshConfig()
	listen := "127.0.0.1:0"
	cfg.Listen = &listen

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(cfg).Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestHandleRegion_DegreeOverrideKeepsDefaultAngles(t *testing.T) {
	rec := serve(t, NewServer(nil), testutil.NewTestRequest(http.MethodGet,
		"/api/region?units=deg&phi_max=90&n=5"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp RegionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, math.Pi/2, resp.Chart.Bounds.PhiMax, 1e-12)
	assert.InDelta(t, 3*math.Pi/2, resp.Chart.Bounds.ThetaMax, 1e-12)
	assert.InDelta(t, 270, resp.Angles["theta_max"], 1e-9)
	assert.Equal(t, "3π/2", resp.Inputs["theta_max"].Display)
}

func TestHandleRegion_ConfiguredResolutionAboveCap(t *testing.T) {
	cfg := config.EmptyMeshConfig()
	n := 10000
	cfg.Resolution = &n

	rec := serve(t, NewServer(cfg), testutil.NewTestRequest(http.MethodGet, "/api/region"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}
