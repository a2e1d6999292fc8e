package material

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Color is a non-premultiplied sRGB color with linear alpha.
type Color struct {
	R, G, B, A float32
}

var (
	White  = Color{1, 1, 1, 1}
	Black  = Color{0, 0, 0, 1}
	Silver = Color{0.75, 0.75, 0.75, 1}
)

func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

func RGBA(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// ColorFromLinear converts linear channels back to sRGB.
func ColorFromLinear(v mgl32.Vec4) Color {
	return Color{linearToSRGB(v[0]), linearToSRGB(v[1]), linearToSRGB(v[2]), v[3]}
}

// Linear returns the color in linear space, as the shaders expect it.
func (c Color) Linear() mgl32.Vec4 {
	return mgl32.Vec4{srgbToLinear(c.R), srgbToLinear(c.G), srgbToLinear(c.B), c.A}
}

func (c Color) Translucent() bool {
	return c.A < 1
}

func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
}

func linearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return float32(1.055*math.Pow(float64(v), 1/2.4) - 0.055)
}
