// Package region builds the boundary surfaces of a region given in spherical
// coordinates: the outer sphere at the maximum radius, and when the region
// does not reach the pole or does not wrap fully around the Z axis, the cone
// cap and the two wedge faces that close it.
package region

import (
	"fmt"
	"math"

	"github.com/ble27/Spherical-Visualizer/internal/sample"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultResolution is the number of samples taken along each axis.
	DefaultResolution = 100

	// DefaultEpsilon suppresses the cone when PhiMax is within this many
	// radians of π, and the wedges when ThetaMax is within it of 2π. It is
	// not scaled by the resolution or the radius.
	DefaultEpsilon = 0.01
)

// Surface names, in build order.
const (
	NameSphere = "Sphere"
	NameCone   = "Cone"
	NameWedge1 = "Wedge 1"
	NameWedge2 = "Wedge 2"
)

// Bounds is a region in spherical coordinates. Phi is the polar angle from +Z
// and Theta the azimuth in the XY plane, both in radians. No ordering or range
// is enforced.
type Bounds struct {
	RhoMin   float64 `json:"rho_min"`
	RhoMax   float64 `json:"rho_max"`
	PhiMin   float64 `json:"phi_min"`
	PhiMax   float64 `json:"phi_max"`
	ThetaMin float64 `json:"theta_min"`
	ThetaMax float64 `json:"theta_max"`
}

// Title describes the bounds at two decimals in ρ, φ, θ order.
func (b Bounds) Title() string {
	return fmt.Sprintf("Spherical Region: ρ=[%.2f, %.2f], φ=[%.2f, %.2f], θ=[%.2f, %.2f]",
		b.RhoMin, b.RhoMax, b.PhiMin, b.PhiMax, b.ThetaMin, b.ThetaMax)
}

// Surface is one gridded surface. X, Y and Z share a shape and belong to this
// surface alone.
type Surface struct {
	Name  string
	X     sample.Grid
	Y     sample.Grid
	Z     sample.Grid
	Style Style
}

// Extent returns the largest absolute coordinate on the surface.
func (s Surface) Extent() float64 {
	var m float64
	for _, g := range []sample.Grid{s.X, s.Y, s.Z} {
		rows, cols := g.Dims()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				if v := math.Abs(g.At(r, c)); v > m {
					m = v
				}
			}
		}
	}
	return m
}

// SphericalToCartesian converts radius rho, polar angle phi (from +Z) and
// azimuth theta into a Cartesian point.
func SphericalToCartesian(rho, phi, theta float64) r3.Vec {
	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	return r3.Vec{
		X: rho * sinPhi * cosTheta,
		Y: rho * sinPhi * sinTheta,
		Z: rho * cosPhi,
	}
}

// Builder holds the policy used to build region surfaces.
type Builder struct {
	// Epsilon is the closure tolerance in radians; see DefaultEpsilon.
	Epsilon float64

	SphereStyle func() Style
	ConeStyle   func() Style
	WedgeStyle  func() Style
}

// DefaultBuilder returns a Builder with DefaultEpsilon and the standard
// blue/red/green styles.
func DefaultBuilder() *Builder {
	return &Builder{
		Epsilon:     DefaultEpsilon,
		SphereStyle: SphereStyle,
		ConeStyle:   ConeStyle,
		WedgeStyle:  WedgeStyle,
	}
}

// Build builds the surfaces of b at resolution n with DefaultBuilder.
func Build(b Bounds, n int) ([]Surface, error) {
	return DefaultBuilder().Build(b, n)
}

// NeedsCone reports whether the region stops short of the -Z pole.
func (bl *Builder) NeedsCone(b Bounds) bool {
	return b.PhiMax < math.Pi-bl.Epsilon
}

// NeedsWedges reports whether the region covers less than a full revolution.
func (bl *Builder) NeedsWedges(b Bounds) bool {
	return b.ThetaMax < 2*math.Pi-bl.Epsilon
}

// Build returns the surfaces of b in the order Sphere, Cone, Wedge 1,
// Wedge 2, omitting the cone and wedges when they are not needed. The only
// failure is n < 1, which wraps sample.ErrInvalidArgument.
func (bl *Builder) Build(b Bounds, n int) ([]Surface, error) {
	phis, err := sample.Linspace(b.PhiMin, b.PhiMax, n)
	if err != nil {
		return nil, fmt.Errorf("phi samples: %w", err)
	}
	thetas, err := sample.Linspace(b.ThetaMin, b.ThetaMax, n)
	if err != nil {
		return nil, fmt.Errorf("theta samples: %w", err)
	}

	surfaces := make([]Surface, 0, 4)

	phiGrid, thetaGrid := sample.Meshgrid(phis, thetas)
	surfaces = append(surfaces, bl.surface(NameSphere, bl.style(bl.SphereStyle, SphereStyle), phiGrid, thetaGrid,
		func(phi, theta float64) r3.Vec {
			return SphericalToCartesian(b.RhoMax, phi, theta)
		}))

	needCone, needWedges := bl.NeedsCone(b), bl.NeedsWedges(b)
	if !needCone && !needWedges {
		return surfaces, nil
	}

	rhos, err := sample.Linspace(b.RhoMin, b.RhoMax, n)
	if err != nil {
		return nil, fmt.Errorf("rho samples: %w", err)
	}

	if needCone {
		thetaGrid, rhoGrid := sample.Meshgrid(thetas, rhos)
		surfaces = append(surfaces, bl.surface(NameCone, bl.style(bl.ConeStyle, ConeStyle), thetaGrid, rhoGrid,
			func(theta, rho float64) r3.Vec {
				return SphericalToCartesian(rho, b.PhiMax, theta)
			}))
	}

	if needWedges {
		for _, w := range []struct {
			name  string
			theta float64
		}{
			{NameWedge1, b.ThetaMin},
			{NameWedge2, b.ThetaMax},
		} {
			theta := w.theta
			phiGrid, rhoGrid := sample.Meshgrid(phis, rhos)
			surfaces = append(surfaces, bl.surface(w.name, bl.style(bl.WedgeStyle, WedgeStyle), phiGrid, rhoGrid,
				func(phi, rho float64) r3.Vec {
					return SphericalToCartesian(rho, phi, theta)
				}))
		}
	}

	return surfaces, nil
}

func (bl *Builder) style(f, fallback func() Style) Style {
	if f == nil {
		return fallback()
	}
	return f()
}

// surface evaluates point at every cell of the (a, b) grid pair.
func (bl *Builder) surface(name string, style Style, a, b sample.Grid, point func(av, bv float64) r3.Vec) Surface {
	rows, cols := a.Dims()
	xs := make([]float64, rows*cols)
	ys := make([]float64, rows*cols)
	zs := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p := point(a.At(r, c), b.At(r, c))
			i := r*cols + c
			xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
		}
	}
	return Surface{
		Name:  name,
		X:     sample.NewGrid(rows, cols, xs),
		Y:     sample.NewGrid(rows, cols, ys),
		Z:     sample.NewGrid(rows, cols, zs),
		Style: style,
	}
}
