package systems

import "gonum.org/v1/gonum/spatial/r3"

// VelocityUpdate produces the next velocity of each particle: current velocity
// plus the rule delta, clamped to MaxSpeed. Kernels read vel and write only velNext.
type VelocityUpdate struct {
	Rules    *Rules
	Grid     *Grid
	Ranges   *CellRanges
	MaxSpeed float64
}

// BruteForce updates particles [i0, i1) against the whole population.
func (u *VelocityUpdate) BruteForce(pos, vel, velNext []r3.Vec, i0, i1 int) {
	for i := i0; i < i1; i++ {
		dv := BruteForceDelta(u.Rules, i, pos, vel)
		velNext[i] = ClampSpeed(r3.Add(vel[i], dv), u.MaxSpeed)
	}
}

// Scattered updates particles [i0, i1) through the sorted array-index table.
func (u *VelocityUpdate) Scattered(arrayIndex []int, pos, vel, velNext []r3.Vec, i0, i1 int) {
	for i := i0; i < i1; i++ {
		dv := ScatteredDelta(u.Rules, u.Grid, u.Ranges, arrayIndex, i, pos, vel)
		velNext[i] = ClampSpeed(r3.Add(vel[i], dv), u.MaxSpeed)
	}
}

// Coherent updates slots [i0, i1) of buffers already reordered by cell.
func (u *VelocityUpdate) Coherent(pos, vel, velNext []r3.Vec, i0, i1 int) {
	for i := i0; i < i1; i++ {
		dv := CoherentDelta(u.Rules, u.Grid, u.Ranges, i, pos, vel)
		velNext[i] = ClampSpeed(r3.Add(vel[i], dv), u.MaxSpeed)
	}
}
