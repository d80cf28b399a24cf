package world

import (
	"github.com/aquilax/go-perlin"
)

const (
	noiseAlpha   = 2.0 // smoothing
	noiseBeta    = 2.0 // frequency step between octaves
	noiseOctaves = int32(4)
)

// heightNoise is seeded Perlin noise rescaled to [0,1].
type heightNoise struct {
	p *perlin.Perlin
}

func newHeightNoise(seed int64) heightNoise {
	return heightNoise{p: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)}
}

// At returns the noise value at x,z in [0,1].
func (n heightNoise) At(x, z float64) float64 {
	v := (n.p.Noise2D(x, z) + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
