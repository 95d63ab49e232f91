package systems

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestCandidateCellsWellFormed(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	g := NewGrid(defaultRules(), 50)
	pos, _ := randomFlock(rng, 3000, 50, 0)
	_, _, ranges := buildIndex(&g, pos)

	for i, p := range pos {
		var cells CandidateCells
		n := g.CandidateCells(p, &ranges, &cells)
		if n > MaxCandidates {
			t.Fatalf("particle %d: %d candidates exceeds %d", i, n, MaxCandidates)
		}
		if cells[n] != NoCell {
			t.Fatalf("particle %d: list not terminated, cells[%d] = %d", i, n, cells[n])
		}
		seen := make(map[int]bool, n)
		for _, id := range cells[:n] {
			if id < 0 || id >= g.CellCount {
				t.Fatalf("particle %d: candidate %d out of range", i, id)
			}
			if !ranges.Occupied(id) {
				t.Fatalf("particle %d: candidate %d is empty", i, id)
			}
			if seen[id] {
				t.Fatalf("particle %d: candidate %d listed twice", i, id)
			}
			seen[id] = true
		}

		// The particle's own cell is always a candidate.
		own, ok := g.CellOf(p)
		if !ok || !seen[own] {
			t.Fatalf("particle %d: own cell %d not among candidates %v", i, own, cells[:n])
		}
	}
}

func TestCandidateCellsSkipsEmptyAndOutOfBounds(t *testing.T) {
	g := NewGrid(defaultRules(), 100)
	// A lone particle in the min corner cell: every other probe is either
	// outside the grid or empty.
	pos := []r3.Vec{{X: -109, Y: -109, Z: -109}}
	_, _, ranges := buildIndex(&g, pos)

	var cells CandidateCells
	n := g.CandidateCells(pos[0], &ranges, &cells)
	if n != 1 {
		t.Fatalf("got %d candidates %v, want 1", n, cells[:n])
	}
	if cells[0] != 0 || cells[1] != NoCell {
		t.Errorf("cells = %v, want [0 -1 ...]", cells[:2])
	}
}

// Every particle the brute-force scan finds within the largest rule distance
// must sit in one of the candidate cells, including particles placed on and
// around cell corners.
func TestCandidateCellsCoverBruteForceNeighbors(t *testing.T) {
	rules := defaultRules()
	maxDist := rules.MaxDistance()

	tests := []struct {
		name string
		pos  func(rng *rand.Rand, g *Grid) []r3.Vec
	}{
		{"uniform", func(rng *rand.Rand, g *Grid) []r3.Vec {
			p, _ := randomFlock(rng, 1500, 30, 0)
			return p
		}},
		{"cell corners", func(rng *rand.Rand, g *Grid) []r3.Vec {
			return cornerFlock(rng, g, 1500, 30)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(5))
			g := NewGrid(rules, 30)
			pos := tt.pos(rng, &g)
			_, _, ranges := buildIndex(&g, pos)

			for i, p := range pos {
				var cells CandidateCells
				n := g.CandidateCells(p, &ranges, &cells)
				candidate := make(map[int]bool, n)
				for _, id := range cells[:n] {
					candidate[id] = true
				}
				for j, q := range pos {
					if i == j || r3.Norm(r3.Sub(q, p)) >= maxDist {
						continue
					}
					id, _ := g.CellOf(q)
					if !candidate[id] {
						t.Fatalf("particle %d at %v misses neighbor %d at %v (cell %d)", i, p, j, q, id)
					}
				}
			}
		})
	}
}

// cornerFlock places particles within a small jitter of lattice corners.
func cornerFlock(rng *rand.Rand, g *Grid, n int, scale float64) []r3.Vec {
	pos := make([]r3.Vec, n)
	corners := int(scale/g.CellWidth) + 1
	jitter := func() float64 { return (rng.Float64()*2 - 1) * 1e-3 * g.CellWidth }
	axis := func() float64 {
		k := rng.Intn(2*corners+1) - corners
		v := float64(k)*g.CellWidth + jitter()
		if v >= scale {
			v = scale - 1e-9
		}
		if v < -scale {
			v = -scale
		}
		return v
	}
	for i := range pos {
		pos[i] = r3.Vec{X: axis(), Y: axis(), Z: axis()}
	}
	return pos
}
