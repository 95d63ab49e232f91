package systems

import "gonum.org/v1/gonum/spatial/r3"

// MaxCandidates is the most cells a particle's neighborhood can touch.
const MaxCandidates = 8

// CandidateCells holds up to MaxCandidates cell ids followed by a NoCell terminator.
// It is a value type so the list lives on the caller's stack.
type CandidateCells [MaxCandidates + 1]int

// CandidateCells writes the occupied cells that may hold neighbors of p into out
// and returns how many it wrote; out[n] is NoCell.
//
// The probes are the corners of the box p ± CellWidth/2. Since that box is one
// cell wide, it overlaps at most two cells per axis, so the distinct probes
// cover every particle within the largest rule distance.
func (g *Grid) CandidateCells(p r3.Vec, ranges *CellRanges, out *CandidateCells) int {
	h := g.CellWidth / 2
	lo := g.Coord(r3.Vec{X: p.X - h, Y: p.Y - h, Z: p.Z - h})
	hi := g.Coord(r3.Vec{X: p.X + h, Y: p.Y + h, Z: p.Z + h})

	xs, nx := axisProbes(lo.X, hi.X)
	ys, ny := axisProbes(lo.Y, hi.Y)
	zs, nz := axisProbes(lo.Z, hi.Z)

	n := 0
	for iz := 0; iz < nz; iz++ {
		for iy := 0; iy < ny; iy++ {
			for ix := 0; ix < nx; ix++ {
				c := CellCoord{X: xs[ix], Y: ys[iy], Z: zs[iz]}
				if !g.InBounds(c) {
					continue
				}
				id := g.CellID(c)
				if !ranges.Occupied(id) {
					continue
				}
				out[n] = id
				n++
			}
		}
	}
	out[n] = NoCell
	return n
}

// axisProbes returns the distinct cell coordinates an extreme pair covers on one axis.
func axisProbes(lo, hi int) ([2]int, int) {
	if lo == hi {
		return [2]int{lo, lo}, 1
	}
	return [2]int{lo, hi}, 2
}
