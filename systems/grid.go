// Package systems provides the per-tick kernels of the boid simulation.
//
// Kernels that take an [i0, i1) range are chunk kernels: the caller splits the
// index space across workers and every chunk writes a disjoint set of outputs.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// NoCell marks an unoccupied cell in a range table and terminates candidate lists.
const NoCell = -1

// CellCoord is an integer lattice coordinate. It may lie outside the grid.
type CellCoord struct {
	X, Y, Z int
}

// Grid is a uniform cubic lattice centered on the origin.
// Cell width is twice the largest rule distance, so the neighborhood of any
// particle spans at most two cells per axis.
type Grid struct {
	SideCount    int
	CellCount    int
	Min          r3.Vec
	CellWidth    float64
	InvCellWidth float64
}

// NewGrid sizes a grid covering the domain [-scale, scale]³ for the given rules.
func NewGrid(r Rules, scale float64) Grid {
	width := 2 * r.MaxDistance()
	half := int(math.Floor(scale/width)) + 1
	side := 2 * half

	offset := float64(half) * width
	return Grid{
		SideCount:    side,
		CellCount:    side * side * side,
		Min:          r3.Vec{X: -offset, Y: -offset, Z: -offset},
		CellWidth:    width,
		InvCellWidth: 1 / width,
	}
}

// Coord maps a position to its cell coordinate. No clamping is applied.
func (g *Grid) Coord(p r3.Vec) CellCoord {
	return CellCoord{
		X: int(math.Floor((p.X - g.Min.X) * g.InvCellWidth)),
		Y: int(math.Floor((p.Y - g.Min.Y) * g.InvCellWidth)),
		Z: int(math.Floor((p.Z - g.Min.Z) * g.InvCellWidth)),
	}
}

// CellID linearizes a coordinate. The coordinate must be in bounds.
func (g *Grid) CellID(c CellCoord) int {
	return c.X + c.Y*g.SideCount + c.Z*g.SideCount*g.SideCount
}

// InBounds reports whether c addresses a cell of the grid.
func (g *Grid) InBounds(c CellCoord) bool {
	return c.X >= 0 && c.X < g.SideCount &&
		c.Y >= 0 && c.Y < g.SideCount &&
		c.Z >= 0 && c.Z < g.SideCount
}

// CellOf returns the cell id containing p and false if p lies outside the grid.
func (g *Grid) CellOf(p r3.Vec) (int, bool) {
	c := g.Coord(p)
	if !g.InBounds(c) {
		return NoCell, false
	}
	return g.CellID(c), true
}
