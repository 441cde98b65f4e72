// Package api serves region surfaces over HTTP: JSON chart data, the
// interactive 3D page and the projection sheet, plus tsweb debug pages.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"gonum.org/v1/plot/vg"
	"tailscale.com/tsweb"

	"github.com/ble27/Spherical-Visualizer/internal/config"
	"github.com/ble27/Spherical-Visualizer/internal/exprparse"
	"github.com/ble27/Spherical-Visualizer/internal/httputil"
	"github.com/ble27/Spherical-Visualizer/internal/monitoring"
	"github.com/ble27/Spherical-Visualizer/internal/region"
	"github.com/ble27/Spherical-Visualizer/internal/render"
	"github.com/ble27/Spherical-Visualizer/internal/timeutil"
	"github.com/ble27/Spherical-Visualizer/internal/version"
)

// ANSI escape codes for request logging
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// Server builds surfaces on demand. It holds no per-request state, so one
// Server handles any number of concurrent requests.
type Server struct {
	cfg     *config.MeshConfig
	builder *region.Builder
	server  *http.Server
}

// NewServer returns a Server using cfg for defaults and rendering options.
// A nil cfg behaves like an empty one.
func NewServer(cfg *config.MeshConfig) *Server {
	if cfg == nil {
		cfg = config.EmptyMeshConfig()
	}
	builder := region.DefaultBuilder()
	builder.Epsilon = cfg.GetClosureEpsilon()
	return &Server{cfg: cfg, builder: builder}
}

// RegionResponse is the body of /api/region.
type RegionResponse struct {
	BuildID    string                      `json:"build_id"`
	Resolution int                         `json:"resolution"`
	Units      string                      `json:"units"`
	Inputs     map[string]exprparse.Parsed `json:"inputs"`
	Angles     map[string]float64          `json:"angles"` // in Units
	Chart      *render.ChartData           `json:"chart"`
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return loggingMiddleware(timeutil.RealClock{}, next)
}

func loggingMiddleware(clock timeutil.Clock, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := clock.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(clock.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the routes of the server, debug pages included.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/region", s.handleRegion)
	mux.HandleFunc("/api/parse", s.handleParse)
	mux.HandleFunc("/chart", s.handleChart)
	mux.HandleFunc("/projections.png", s.handleProjections)
	s.AttachDebugRoutes(mux)
	return mux
}

// AttachDebugRoutes mounts the config and version pages under /debug/.
func (s *Server) AttachDebugRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	debug.HandleFunc("config", "effective mesh configuration", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSONOK(w, s.effectiveConfig())
	})
	debug.HandleFunc("version", "build version", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteBody(w, "text/plain; charset=utf-8", []byte(version.String()+"\n"))
	})
}

// effectiveConfig reports every setting after defaults are applied.
func (s *Server) effectiveConfig() map[string]interface{} {
	return map[string]interface{}{
		"resolution":             s.cfg.GetResolution(),
		"closure_epsilon":        s.cfg.GetClosureEpsilon(),
		"angle_units":            s.cfg.GetAngleUnits(),
		"defaults":               DefaultInputs(s.cfg),
		"chart_width":            s.cfg.GetChartWidth(),
		"chart_height":           s.cfg.GetChartHeight(),
		"chart_theme":            s.cfg.GetChartTheme(),
		"max_points_per_surface": s.cfg.GetMaxPointsPerSurface(),
		"plot_size_inches":       s.cfg.GetPlotSizeInches(),
		"listen":                 s.cfg.GetListen(),
		"shutdown_timeout":       s.cfg.GetShutdownTimeout().String(),
	}
}

// Start serves on the configured address until ctx is cancelled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.GetListen()
	s.server = &http.Server{
		Addr:    addr,
		Handler: LoggingMiddleware(s.ServeMux()),
	}

	monitoring.Logf("Starting HTTP server on %s", addr)
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := s.server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}

	monitoring.Logf("HTTP server routine stopped")
	return nil
}

// buildFromRequest resolves the query against the configured defaults and
// builds the surfaces.
func (s *Server) buildFromRequest(r *http.Request) (Resolved, int, []region.Surface, error) {
	q := r.URL.Query()
	n, err := parseResolution(q, s.cfg.GetResolution())
	if err != nil {
		return Resolved{}, 0, nil, err
	}
	unit := q.Get("units")
	if unit == "" {
		unit = s.cfg.GetAngleUnits()
	}
	res, err := Resolve(inputsFromQuery(q, DefaultInputs(s.cfg)), unit)
	if err != nil {
		return Resolved{}, 0, nil, err
	}
	surfaces, err := s.builder.Build(res.Bounds, n)
	if err != nil {
		return Resolved{}, 0, nil, err
	}
	monitoring.Debugf("built %d surfaces at n=%d for %s", len(surfaces), n, res.Bounds.Title())
	return res, n, surfaces, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{"status": "ok", "version": version.Version})
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	res, n, surfaces, err := s.buildFromRequest(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, RegionResponse{
		BuildID:    uuid.NewString(),
		Resolution: n,
		Units:      res.Units,
		Inputs:     res.Display,
		Angles:     res.Angles,
		Chart:      render.PrepareChartData(res.Bounds, surfaces, s.cfg.GetMaxPointsPerSurface()),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if _, ok := r.URL.Query()["value"]; !ok {
		httputil.BadRequest(w, "missing 'value' parameter")
		return
	}
	httputil.WriteJSONOK(w, exprparse.ParseInput(r.URL.Query().Get("value")))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	res, _, surfaces, err := s.buildFromRequest(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	var buf bytes.Buffer
	err = render.RenderHTML(&buf, res.Bounds, surfaces, render.HTMLOptions{
		Width:     s.cfg.GetChartWidth(),
		Height:    s.cfg.GetChartHeight(),
		Theme:     s.cfg.GetChartTheme(),
		MaxPoints: s.cfg.GetMaxPointsPerSurface(),
	})
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleProjections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	res, _, surfaces, err := s.buildFromRequest(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	var buf bytes.Buffer
	size := vg.Length(s.cfg.GetPlotSizeInches()) * vg.Inch
	if err := render.RenderProjections(&buf, res.Bounds, surfaces, render.FormatPNG, size); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteBody(w, "image/png", buf.Bytes())
}
