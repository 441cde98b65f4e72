package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/ble27/Spherical-Visualizer/internal/config"
	"github.com/ble27/Spherical-Visualizer/internal/exprparse"
	"github.com/ble27/Spherical-Visualizer/internal/region"
	"github.com/ble27/Spherical-Visualizer/internal/units"
)

// MaxResolution bounds the per-axis sample count a request may ask for.
const MaxResolution = config.MaxResolution

// Bound keys, in query parameter spelling.
const (
	KeyRhoMin   = "rho_min"
	KeyRhoMax   = "rho_max"
	KeyPhiMin   = "phi_min"
	KeyPhiMax   = "phi_max"
	KeyThetaMin = "theta_min"
	KeyThetaMax = "theta_max"
)

var boundKeys = []string{KeyRhoMin, KeyRhoMax, KeyPhiMin, KeyPhiMax, KeyThetaMin, KeyThetaMax}

// BoundInputs holds the six bounds as the user typed them. Keys in Radians
// are already in radians and are never converted from the request unit;
// configured defaults are always written in radians.
type BoundInputs struct {
	RhoMin   string `json:"rho_min"`
	RhoMax   string `json:"rho_max"`
	PhiMin   string `json:"phi_min"`
	PhiMax   string `json:"phi_max"`
	ThetaMin string `json:"theta_min"`
	ThetaMax string `json:"theta_max"`

	Radians map[string]bool `json:"-"`
}

// field returns the expression stored under key.
func (in *BoundInputs) field(key string) *string {
	switch key {
	case KeyRhoMin:
		return &in.RhoMin
	case KeyRhoMax:
		return &in.RhoMax
	case KeyPhiMin:
		return &in.PhiMin
	case KeyPhiMax:
		return &in.PhiMax
	case KeyThetaMin:
		return &in.ThetaMin
	case KeyThetaMax:
		return &in.ThetaMax
	}
	panic("api: unknown bound key " + key)
}

// DefaultInputs returns the configured default bounds, marked as radians.
func DefaultInputs(cfg *config.MeshConfig) BoundInputs {
	in := BoundInputs{
		RhoMin:   cfg.GetRhoMin(),
		RhoMax:   cfg.GetRhoMax(),
		PhiMin:   cfg.GetPhiMin(),
		PhiMax:   cfg.GetPhiMax(),
		ThetaMin: cfg.GetThetaMin(),
		ThetaMax: cfg.GetThetaMax(),
		Radians:  make(map[string]bool, len(boundKeys)),
	}
	for _, key := range boundKeys {
		in.Radians[key] = true
	}
	return in
}

// Overlay fills every bound left empty in user from defaults, keeping the
// defaults' radian marks for the bounds it fills.
func Overlay(user, defaults BoundInputs) BoundInputs {
	out := BoundInputs{Radians: make(map[string]bool)}
	for _, key := range boundKeys {
		if v := *user.field(key); v != "" {
			*out.field(key) = v
			if user.Radians[key] {
				out.Radians[key] = true
			}
			continue
		}
		*out.field(key) = *defaults.field(key)
		if defaults.Radians[key] {
			out.Radians[key] = true
		}
	}
	return out
}

// Resolved is a parsed request: the bounds in radians, the display form of
// each input and each angle expressed in the request unit, keyed by query
// parameter name.
type Resolved struct {
	Bounds  region.Bounds               `json:"bounds"`
	Display map[string]exprparse.Parsed `json:"inputs"`
	Angles  map[string]float64          `json:"angles"`
	Units   string                      `json:"units"`
}

func isAngle(key string) bool { return key != KeyRhoMin && key != KeyRhoMax }

// Resolve parses every input with exprparse.ParseInput and converts the
// angles not marked as radians from unit to radians. Radii are never
// converted.
func Resolve(in BoundInputs, unit string) (Resolved, error) {
	if !units.IsValid(unit) {
		return Resolved{}, fmt.Errorf("invalid units %q, must be one of %s", unit, units.GetValidUnitsString())
	}

	res := Resolved{
		Display: make(map[string]exprparse.Parsed, len(boundKeys)),
		Angles:  make(map[string]float64, 4),
		Units:   unit,
	}
	b := &res.Bounds
	dst := map[string]*float64{
		KeyRhoMin: &b.RhoMin, KeyRhoMax: &b.RhoMax,
		KeyPhiMin: &b.PhiMin, KeyPhiMax: &b.PhiMax,
		KeyThetaMin: &b.ThetaMin, KeyThetaMax: &b.ThetaMax,
	}
	for _, key := range boundKeys {
		p := exprparse.ParseInput(*in.field(key))
		res.Display[key] = p
		v := p.Numeric
		if isAngle(key) {
			if !in.Radians[key] {
				v = units.ToRadians(v, unit)
			}
			res.Angles[key] = units.FromRadians(v, unit)
		}
		*dst[key] = v
	}
	return res, nil
}

// inputsFromQuery overlays query parameters on the configured defaults.
// A parameter that is present but empty keeps the default.
func inputsFromQuery(q url.Values, defaults BoundInputs) BoundInputs {
	var user BoundInputs
	for _, key := range boundKeys {
		*user.field(key) = q.Get(key)
	}
	return Overlay(user, defaults)
}

// parseResolution reads the optional n parameter. The configured default
// is held to the same range as the parameter.
func parseResolution(q url.Values, def int) (int, error) {
	n := def
	if raw := q.Get("n"); raw != "" {
		var err error
		if n, err = strconv.Atoi(raw); err != nil {
			return 0, fmt.Errorf("invalid 'n' parameter %q", raw)
		}
	}
	if n < 1 || n > MaxResolution {
		return 0, fmt.Errorf("'n' must be between 1 and %d, got %d", MaxResolution, n)
	}
	return n, nil
}
