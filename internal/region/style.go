package region

// ColorStop is one entry of a colorscale: a position in [0,1] and a CSS colour.
type ColorStop struct {
	Position float64 `json:"position"`
	Color    string  `json:"color"`
}

// Lighting holds surface shading coefficients for renderers that support them.
type Lighting struct {
	Ambient   float64 `json:"ambient"`
	Diffuse   float64 `json:"diffuse"`
	Specular  float64 `json:"specular"`
	Roughness float64 `json:"roughness"`
	Fresnel   float64 `json:"fresnel,omitempty"`
}

// LightPosition places the scene light in data coordinates.
type LightPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Contours describes z-contour lines drawn over a surface.
type Contours struct {
	Show           bool   `json:"show"`
	UseColormap    bool   `json:"use_colormap"`
	HighlightColor string `json:"highlight_color"`
	ProjectZ       bool   `json:"project_z"`
}

// Style is rendering metadata carried alongside a surface. The builder never
// reads it back.
type Style struct {
	Colorscale    []ColorStop    `json:"colorscale"`
	Opacity       float64        `json:"opacity"`
	ShowScale     bool           `json:"show_scale"`
	Lighting      Lighting       `json:"lighting"`
	LightPosition *LightPosition `json:"light_position,omitempty"`
	Contours      *Contours      `json:"contours,omitempty"`
}

// MidColor returns the colour at the centre of the colorscale, or the only
// colour when there is a single stop.
func (s Style) MidColor() string {
	if len(s.Colorscale) == 0 {
		return ""
	}
	return s.Colorscale[len(s.Colorscale)/2].Color
}

var defaultLighting = Lighting{
	Ambient:   0.4,
	Diffuse:   0.8,
	Specular:  0.3,
	Roughness: 0.8,
}

// SphereStyle is the blue, fully opaque style of the outer sphere.
func SphereStyle() Style {
	lighting := defaultLighting
	lighting.Fresnel = 0.1
	return Style{
		Colorscale: []ColorStop{
			{0, "rgb(0, 0, 180)"},
			{0.5, "rgb(0, 0, 220)"},
			{1, "rgb(50, 50, 255)"},
		},
		Opacity:       1.0,
		Lighting:      lighting,
		LightPosition: &LightPosition{X: 3000, Y: 3000, Z: 4000},
		Contours: &Contours{
			Show:           true,
			UseColormap:    true,
			HighlightColor: "rgba(255,255,255,0.1)",
		},
	}
}

// ConeStyle is the red style of the cap at the maximum polar angle.
func ConeStyle() Style {
	return Style{
		Colorscale: []ColorStop{
			{0, "rgb(150, 0, 0)"},
			{0.5, "rgb(200, 0, 0)"},
			{1, "rgb(255, 50, 50)"},
		},
		Opacity:  0.95,
		Lighting: defaultLighting,
	}
}

// WedgeStyle is the green style shared by both azimuthal cut faces.
func WedgeStyle() Style {
	return Style{
		Colorscale: []ColorStop{
			{0, "rgb(0, 130, 0)"},
			{0.5, "rgb(0, 180, 0)"},
			{1, "rgb(50, 255, 50)"},
		},
		Opacity:  0.95,
		Lighting: defaultLighting,
	}
}
