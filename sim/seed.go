package sim

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Scatter places particles uniformly in [-scale, scale)³ and gives each a
// random heading with speed up to maxSpeed.
func Scatter(rng *rand.Rand, pos, vel []r3.Vec, scale, maxSpeed float64) {
	for i := range pos {
		pos[i] = r3.Vec{
			X: (rng.Float64()*2 - 1) * scale,
			Y: (rng.Float64()*2 - 1) * scale,
			Z: (rng.Float64()*2 - 1) * scale,
		}
	}

	for i := range vel {
		if maxSpeed <= 0 {
			vel[i] = r3.Vec{}
			continue
		}
		dir := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		if dir == (r3.Vec{}) {
			dir.X = 1
		}
		vel[i] = r3.Scale(rng.Float64()*maxSpeed, r3.Unit(dir))
	}
}
