// Command spherical draws a region given in spherical coordinates. It writes
// the interactive 3D page, the projection sheet or the chart JSON to files,
// or serves all three over HTTP with -serve.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"gonum.org/v1/plot/vg"

	"github.com/ble27/Spherical-Visualizer/internal/api"
	"github.com/ble27/Spherical-Visualizer/internal/config"
	"github.com/ble27/Spherical-Visualizer/internal/fsutil"
	"github.com/ble27/Spherical-Visualizer/internal/monitoring"
	"github.com/ble27/Spherical-Visualizer/internal/region"
	"github.com/ble27/Spherical-Visualizer/internal/render"
	"github.com/ble27/Spherical-Visualizer/internal/security"
	"github.com/ble27/Spherical-Visualizer/internal/version"
)

// outputFS receives every rendered file.
var outputFS fsutil.FileSystem = fsutil.OSFileSystem{}

type options struct {
	inputs     api.BoundInputs
	set        map[string]bool
	n          int
	units      string
	configPath string
	htmlPath   string
	projPath   string
	jsonPath   string
	serve      string
	debug      bool
	version    bool
}

func parseFlags(args []string) (*options, error) {
	o := &options{set: map[string]bool{}}
	fs := flag.NewFlagSet("spherical", flag.ContinueOnError)
	fs.StringVar(&o.inputs.RhoMin, "rho-min", "", "minimum radius (expression, e.g. 0.5)")
	fs.StringVar(&o.inputs.RhoMax, "rho-max", "", "maximum radius")
	fs.StringVar(&o.inputs.PhiMin, "phi-min", "", "minimum polar angle (e.g. 0, pi/4)")
	fs.StringVar(&o.inputs.PhiMax, "phi-max", "", "maximum polar angle")
	fs.StringVar(&o.inputs.ThetaMin, "theta-min", "", "minimum azimuth")
	fs.StringVar(&o.inputs.ThetaMax, "theta-max", "", "maximum azimuth (e.g. 3pi/2)")
	fs.IntVar(&o.n, "n", 0, "samples per axis (default from config)")
	fs.StringVar(&o.units, "units", "", "angle units: rad, deg or turn (default from config)")
	fs.StringVar(&o.configPath, "config", "", "path to a mesh config JSON file")
	fs.StringVar(&o.htmlPath, "html", "", "write the interactive 3D chart to this .html file")
	fs.StringVar(&o.projPath, "png", "", "write the projection sheet to this .png or .svg file")
	fs.StringVar(&o.jsonPath, "json", "", "write chart data to this .json file")
	fs.StringVar(&o.serve, "serve", "", "serve over HTTP on this address instead of writing files")
	fs.BoolVar(&o.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// loadConfig reads the config file when one was given and applies flag
// overrides on top.
func loadConfig(o *options) (*config.MeshConfig, error) {
	cfg := config.EmptyMeshConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadMeshConfig(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.set["n"] {
		cfg.Resolution = &o.n
	}
	if o.units != "" {
		cfg.AngleUnits = &o.units
	}
	if o.serve != "" {
		cfg.Listen = &o.serve
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// mergeInputs fills bounds the user left unset from cfg.
func mergeInputs(in api.BoundInputs, cfg *config.MeshConfig) api.BoundInputs {
	return api.Overlay(in, api.DefaultInputs(cfg))
}

// writeOutput validates path and writes it through fn.
func writeOutput(path string, fn func(io.Writer) error) error {
	if err := security.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := outputFS.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := outputFS.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// defaultHTMLPath names the chart file after the build when no output was
// requested.
func defaultHTMLPath(buildID string) string {
	return security.SanitizeFilename("region-"+buildID) + ".html"
}

func run(o *options) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	if o.serve != "" {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return api.NewServer(cfg).Start(ctx)
	}

	res, err := api.Resolve(mergeInputs(o.inputs, cfg), cfg.GetAngleUnits())
	if err != nil {
		return err
	}
	builder := region.DefaultBuilder()
	builder.Epsilon = cfg.GetClosureEpsilon()
	surfaces, err := builder.Build(res.Bounds, cfg.GetResolution())
	if err != nil {
		return fmt.Errorf("build surfaces: %w", err)
	}
	buildID := uuid.NewString()
	monitoring.Logf("build %s: %s, %d surfaces", buildID, res.Bounds.Title(), len(surfaces))

	if o.htmlPath == "" && o.projPath == "" && o.jsonPath == "" {
		o.htmlPath = defaultHTMLPath(buildID)
	}

	if o.htmlPath != "" {
		err := writeOutput(o.htmlPath, func(w io.Writer) error {
			return render.RenderHTML(w, res.Bounds, surfaces, render.HTMLOptions{
				Width:     cfg.GetChartWidth(),
				Height:    cfg.GetChartHeight(),
				Theme:     cfg.GetChartTheme(),
				MaxPoints: cfg.GetMaxPointsPerSurface(),
			})
		})
		if err != nil {
			return fmt.Errorf("write html: %w", err)
		}
		monitoring.Logf("wrote %s", o.htmlPath)
	}

	if o.projPath != "" {
		format, err := render.FormatFromPath(o.projPath)
		if err != nil {
			return err
		}
		size := vg.Length(cfg.GetPlotSizeInches()) * vg.Inch
		err = writeOutput(o.projPath, func(w io.Writer) error {
			return render.RenderProjections(w, res.Bounds, surfaces, format, size)
		})
		if err != nil {
			return fmt.Errorf("write projections: %w", err)
		}
		monitoring.Logf("wrote %s", o.projPath)
	}

	if o.jsonPath != "" {
		data := render.PrepareChartData(res.Bounds, surfaces, cfg.GetMaxPointsPerSurface())
		err := writeOutput(o.jsonPath, func(w io.Writer) error {
			return render.RenderJSON(w, data)
		})
		if err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		monitoring.Logf("wrote %s", o.jsonPath)
	}
	return nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		log.Fatalf("%v", err)
	}
	if o.version {
		fmt.Println(version.String())
		return
	}
	monitoring.SetDebug(o.debug)
	if err := run(o); err != nil {
		log.Fatalf("spherical: %v", err)
	}
}
