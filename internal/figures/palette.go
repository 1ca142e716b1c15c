// Package figures renders the lecture's PNG figures with gonum/plot.
package figures

import "image/color"

// Ramp is an HSL-derived color palette. It implements the gonum/plot
// palette.Palette interface for heatmaps and doubles as a line-color source.
type Ramp struct {
	N int
}

// Colors returns the palette as a blue-to-red ramp.
func (r Ramp) Colors() []color.Color {
	if r.N <= 0 {
		return nil
	}
	colors := make([]color.Color, r.N)
	for i := 0; i < r.N; i++ {
		// hue from 240° (blue, low) down to 0° (red, high)
		hue := 0.0
		if r.N > 1 {
			hue = (1 - float64(i)/float64(r.N-1)) * 2.0 / 3.0
		}
		red, green, blue := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: red, G: green, B: blue, A: 255}
	}
	return colors
}

// LineColors creates a palette of distinct colors for plot lines.
func LineColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
