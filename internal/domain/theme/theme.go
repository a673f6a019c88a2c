// Package theme holds the Material 3 design tokens shared with the frontend.
package theme

// Scheme names a color scheme
type Scheme string

const (
	Light Scheme = "light"
	Dark  Scheme = "dark"
)

// Colors are the M3 color roles
type Colors struct {
	Primary            string `json:"primary"`
	OnPrimary          string `json:"on_primary"`
	PrimaryContainer   string `json:"primary_container"`
	OnPrimaryContainer string `json:"on_primary_container"`
	Secondary          string `json:"secondary"`
	OnSecondary        string `json:"on_secondary"`
	Tertiary           string `json:"tertiary"`
	OnTertiary         string `json:"on_tertiary"`
	Error              string `json:"error"`
	OnError            string `json:"on_error"`
	Background         string `json:"background"`
	OnBackground       string `json:"on_background"`
	Surface            string `json:"surface"`
	OnSurface          string `json:"on_surface"`
	SurfaceVariant     string `json:"surface_variant"`
	OnSurfaceVariant   string `json:"on_surface_variant"`
	Outline            string `json:"outline"`
}

// TypeStyle is one entry of the type scale
type TypeStyle struct {
	FontFamily    string  `json:"font_family"`
	FontSize      int     `json:"font_size"`
	LineHeight    int     `json:"line_height"`
	FontWeight    int     `json:"font_weight"`
	LetterSpacing float64 `json:"letter_spacing"`
}

// Shape holds corner radii in px
type Shape struct {
	ExtraSmall int `json:"extra_small"`
	Small      int `json:"small"`
	Medium     int `json:"medium"`
	Large      int `json:"large"`
	ExtraLarge int `json:"extra_large"`
}

// Tokens is the full token set for one scheme
type Tokens struct {
	Scheme     Scheme               `json:"scheme"`
	Colors     Colors               `json:"colors"`
	Typography map[string]TypeStyle `json:"typography"`
	Shape      Shape                `json:"shape"`
}

const (
	brandFont = "Inter, system-ui, sans-serif"
	plainFont = "Roboto, system-ui, sans-serif"
)

func typography() map[string]TypeStyle {
	return map[string]TypeStyle{
		"display_large":  {brandFont, 57, 64, 400, -0.25},
		"display_medium": {brandFont, 45, 52, 400, 0},
		"headline_large": {brandFont, 32, 40, 400, 0},
		"headline_small": {brandFont, 24, 32, 400, 0},
		"title_large":    {plainFont, 22, 28, 500, 0},
		"title_medium":   {plainFont, 16, 24, 500, 0.15},
		"body_large":     {plainFont, 16, 24, 400, 0.5},
		"body_medium":    {plainFont, 14, 20, 400, 0.25},
		"label_large":    {plainFont, 14, 20, 500, 0.1},
		"label_small":    {plainFont, 11, 16, 500, 0.5},
	}
}

var shape = Shape{ExtraSmall: 4, Small: 8, Medium: 12, Large: 16, ExtraLarge: 28}

var colors = map[Scheme]Colors{
	Light: {
		Primary: "#6750A4", OnPrimary: "#FFFFFF", PrimaryContainer: "#EADDFF", OnPrimaryContainer: "#21005D",
		Secondary: "#625B71", OnSecondary: "#FFFFFF", Tertiary: "#7D5260", OnTertiary: "#FFFFFF",
		Error: "#B3261E", OnError: "#FFFFFF", Background: "#FFFBFE", OnBackground: "#1C1B1F",
		Surface: "#FFFBFE", OnSurface: "#1C1B1F", SurfaceVariant: "#E7E0EC", OnSurfaceVariant: "#49454F",
		Outline: "#79747E",
	},
	Dark: {
		Primary: "#D0BCFF", OnPrimary: "#381E72", PrimaryContainer: "#4F378B", OnPrimaryContainer: "#EADDFF",
		Secondary: "#CCC2DC", OnSecondary: "#332D41", Tertiary: "#EFB8C8", OnTertiary: "#492532",
		Error: "#F2B8B5", OnError: "#601410", Background: "#1C1B1F", OnBackground: "#E6E1E5",
		Surface: "#1C1B1F", OnSurface: "#E6E1E5", SurfaceVariant: "#49454F", OnSurfaceVariant: "#CAC4D0",
		Outline: "#938F99",
	},
}

// For returns the tokens of scheme
func For(scheme Scheme) (Tokens, bool) {
	c, ok := colors[scheme]
	if !ok {
		return Tokens{}, false
	}
	return Tokens{Scheme: scheme, Colors: c, Typography: typography(), Shape: shape}, true
}

// All returns light then dark tokens
func All() []Tokens {
	light, _ := For(Light)
	dark, _ := For(Dark)
	return []Tokens{light, dark}
}
