package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// defaultRules mirrors config/defaults.yaml.
func defaultRules() Rules {
	return Rules{
		Rule1Distance: 5, Rule2Distance: 3, Rule3Distance: 5,
		Rule1Scale: 0.01, Rule2Scale: 0.1, Rule3Scale: 0.1,
	}
}

// randomFlock places n particles uniformly in [-scale, scale)³ with velocities up to speed.
func randomFlock(rng *rand.Rand, n int, scale, speed float64) (pos, vel []r3.Vec) {
	pos = make([]r3.Vec, n)
	vel = make([]r3.Vec, n)
	for i := range pos {
		pos[i] = r3.Vec{
			X: (rng.Float64()*2 - 1) * scale,
			Y: (rng.Float64()*2 - 1) * scale,
			Z: (rng.Float64()*2 - 1) * scale,
		}
		vel[i] = r3.Vec{
			X: (rng.Float64()*2 - 1) * speed,
			Y: (rng.Float64()*2 - 1) * speed,
			Z: (rng.Float64()*2 - 1) * speed,
		}
	}
	return pos, vel
}

// buildIndex runs index building, sorting and range extraction serially.
func buildIndex(g *Grid, pos []r3.Vec) (arrayIndex, keys []int, ranges CellRanges) {
	n := len(pos)
	arrayIndex = make([]int, n)
	keys = make([]int, n)
	ComputeIndices(g, pos, arrayIndex, keys, 0, n)
	SortByKey(keys, arrayIndex)
	ranges = NewCellRanges(g.CellCount)
	IdentifyCellRanges(keys, &ranges, 0, n)
	return arrayIndex, keys, ranges
}
