package systems

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// ComputeIndices records the (arrayIndex, cellKey) pair of every particle in [i0, i1).
// A position outside the grid means the domain wrap was bypassed upstream and panics.
func ComputeIndices(g *Grid, pos []r3.Vec, arrayIndex, cellKey []int, i0, i1 int) {
	for i := i0; i < i1; i++ {
		c := g.Coord(pos[i])
		if !g.InBounds(c) {
			panic(fmt.Sprintf("systems: particle %d at %v maps to cell %v outside %d³ grid",
				i, pos[i], c, g.SideCount))
		}
		arrayIndex[i] = i
		cellKey[i] = g.CellID(c)
	}
}

// keyValueSorter sorts two parallel int slices by the first.
type keyValueSorter struct {
	keys, values []int
}

func (s keyValueSorter) Len() int           { return len(s.keys) }
func (s keyValueSorter) Less(i, j int) bool { return s.keys[i] < s.keys[j] }
func (s keyValueSorter) Swap(i, j int) {
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	s.values[i], s.values[j] = s.values[j], s.values[i]
}

// SortByKey permutes keys into non-decreasing order, carrying values along.
// The sort is not stable.
func SortByKey(keys, values []int) {
	if len(keys) != len(values) {
		panic(fmt.Sprintf("systems: SortByKey length mismatch %d != %d", len(keys), len(values)))
	}
	sort.Sort(keyValueSorter{keys: keys, values: values})
}
