package scenario

import (
	"fmt"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/udisondev/waterpath/internal/waterregion"
)

// Generate describes a noise generated archipelago.
type Generate struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Seed     int64   `yaml:"seed"`
	SeaLevel float64 `yaml:"sea_level"` // elevation below this is sea (0.0-1.0)

	Octaves   int     `yaml:"octaves"`   // default 4
	Frequency float64 `yaml:"frequency"` // default 0.05
}

func (g *Generate) validate() error {
	if g.Width <= 0 || g.Height <= 0 || g.Width%waterregion.EdgeLength != 0 || g.Height%waterregion.EdgeLength != 0 {
		return fmt.Errorf("%w: generate: %dx%d is not a positive multiple of %d",
			ErrInvalid, g.Width, g.Height, waterregion.EdgeLength)
	}
	if g.SeaLevel < 0 || g.SeaLevel > 1 {
		return fmt.Errorf("%w: generate: sea_level %.2f out of range", ErrInvalid, g.SeaLevel)
	}
	return nil
}

// GenerateRows renders the map of g, '~' for sea and '.' for land.
func GenerateRows(g Generate) []string {
	octaves := g.Octaves
	if octaves <= 0 {
		octaves = 4
	}
	freq := g.Frequency
	if freq <= 0 {
		freq = 0.05
	}

	elev := opensimplex.NewNormalized(g.Seed)
	rows := make([]string, g.Height)
	var b strings.Builder
	for y := range g.Height {
		b.Reset()
		for x := range g.Width {
			if octaveNoise(elev, float64(x), float64(y), octaves, freq, 0.5) < g.SeaLevel {
				b.WriteByte('~')
			} else {
				b.WriteByte('.')
			}
		}
		rows[y] = b.String()
	}
	return rows
}

// octaveNoise layers octaves of noise, each at double the frequency.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for range octaves {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
