package systems

import "gonum.org/v1/gonum/spatial/r3"

// Rules holds the three flocking rules. Each rule only sees neighbors strictly
// closer than its own distance.
type Rules struct {
	Rule1Distance float64 // cohesion
	Rule2Distance float64 // separation
	Rule3Distance float64 // alignment
	Rule1Scale    float64
	Rule2Scale    float64
	Rule3Scale    float64
}

// MaxDistance returns the largest rule distance.
func (r *Rules) MaxDistance() float64 {
	return max(r.Rule1Distance, r.Rule2Distance, r.Rule3Distance)
}

// flockAccum gathers the per-rule sums for one subject particle.
type flockAccum struct {
	center     r3.Vec
	nCohesion  int
	separation r3.Vec
	alignment  r3.Vec
	nAlignment int
}

func (a *flockAccum) add(r *Rules, self, otherPos, otherVel r3.Vec) {
	offset := r3.Sub(otherPos, self)
	dist := r3.Norm(offset)

	if dist < r.Rule1Distance {
		a.center = r3.Add(a.center, otherPos)
		a.nCohesion++
	}
	if dist < r.Rule2Distance {
		a.separation = r3.Sub(a.separation, offset)
	}
	if dist < r.Rule3Distance {
		a.alignment = r3.Add(a.alignment, otherVel)
		a.nAlignment++
	}
}

func (a *flockAccum) delta(r *Rules, self r3.Vec) r3.Vec {
	var dv r3.Vec
	if a.nCohesion > 0 {
		center := r3.Scale(1/float64(a.nCohesion), a.center)
		dv = r3.Add(dv, r3.Scale(r.Rule1Scale, r3.Sub(center, self)))
	}
	dv = r3.Add(dv, r3.Scale(r.Rule2Scale, a.separation))
	if a.nAlignment > 0 {
		dv = r3.Add(dv, r3.Scale(r.Rule3Scale/float64(a.nAlignment), a.alignment))
	}
	return dv
}

// BruteForceDelta computes the velocity change of particle self by scanning
// every other particle.
func BruteForceDelta(r *Rules, self int, pos, vel []r3.Vec) r3.Vec {
	var acc flockAccum
	p := pos[self]
	for j := range pos {
		if j == self {
			continue
		}
		acc.add(r, p, pos[j], vel[j])
	}
	return acc.delta(r, p)
}

// slotAccessor resolves a sorted slot to the buffer slot holding that particle.
type slotAccessor interface {
	slot(k int) int
}

// indirectSlots reaches particles through the sorted array-index table.
type indirectSlots []int

func (s indirectSlots) slot(k int) int { return s[k] }

// directSlots reads buffers that are already in sorted order.
type directSlots struct{}

func (directSlots) slot(k int) int { return k }

// ScatteredDelta computes the velocity change of particle self by visiting the
// candidate cells and dereferencing arrayIndex into the original buffers.
func ScatteredDelta(r *Rules, g *Grid, ranges *CellRanges, arrayIndex []int, self int, pos, vel []r3.Vec) r3.Vec {
	return gridDelta(r, g, ranges, indirectSlots(arrayIndex), self, pos, vel)
}

// CoherentDelta computes the velocity change of the particle in slot self when
// pos and vel have been reordered to match the range table.
func CoherentDelta(r *Rules, g *Grid, ranges *CellRanges, self int, pos, vel []r3.Vec) r3.Vec {
	return gridDelta(r, g, ranges, directSlots{}, self, pos, vel)
}

func gridDelta[S slotAccessor](r *Rules, g *Grid, ranges *CellRanges, slots S, self int, pos, vel []r3.Vec) r3.Vec {
	var cells CandidateCells
	var acc flockAccum

	p := pos[self]
	n := g.CandidateCells(p, ranges, &cells)
	for c := 0; c < n; c++ {
		id := cells[c]
		for k := ranges.Start[id]; k < ranges.End[id]; k++ {
			j := slots.slot(k)
			if j == self {
				continue
			}
			acc.add(r, p, pos[j], vel[j])
		}
	}
	return acc.delta(r, p)
}
