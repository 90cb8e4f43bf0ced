// Package noise provides deterministic multi-channel noise sampled at world
// positions. Map generation uses it to jitter cell temperatures.
package noise

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Channels is the number of independent channels in a sample.
const Channels = 4

// Scale maps world positions to noise space.
const Scale = 0.003 * 256

// Field samples Channels independent values in [0, 1] at a world position.
type Field interface {
	Sample(x, z float64) [Channels]float64
}

// Kind names a noise implementation.
type Kind string

const (
	KindSimplex Kind = "simplex"
	KindPerlin  Kind = "perlin"
)

// Kinds lists the supported noise kinds.
func Kinds() []string {
	return []string{string(KindSimplex), string(KindPerlin)}
}

// New builds a field of the given kind.
func New(kind Kind, seed int64) (Field, error) {
	switch kind {
	case KindSimplex, "":
		return NewSimplexField(seed), nil
	case KindPerlin:
		return NewPerlinField(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

// SimplexField layers octaves of opensimplex noise per channel.
type SimplexField struct {
	channels [Channels]opensimplex.Noise
}

// NewSimplexField creates a simplex field; channel c is seeded with seed+c.
func NewSimplexField(seed int64) *SimplexField {
	f := &SimplexField{}
	for c := range f.channels {
		f.channels[c] = opensimplex.NewNormalized(seed + int64(c))
	}
	return f
}

// Sample implements Field.
func (f *SimplexField) Sample(x, z float64) [Channels]float64 {
	var out [Channels]float64
	for c, n := range f.channels {
		out[c] = octaveNoise(n, x*Scale, z*Scale, 2, 1, 0.5)
	}
	return out
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// PerlinField samples go-perlin noise per channel.
type PerlinField struct {
	channels [Channels]*perlin.Perlin
}

// NewPerlinField creates a perlin field; channel c is seeded with seed+c.
func NewPerlinField(seed int64) *PerlinField {
	f := &PerlinField{}
	for c := range f.channels {
		f.channels[c] = perlin.NewPerlin(2, 2, 3, seed+int64(c))
	}
	return f
}

// Sample implements Field.
func (f *PerlinField) Sample(x, z float64) [Channels]float64 {
	var out [Channels]float64
	for c, p := range f.channels {
		out[c] = clamp01((p.Noise2D(x*Scale, z*Scale) + 1) * 0.5)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
