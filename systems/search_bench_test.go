package systems

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const benchScale = 50

// setupBench builds a flock of n particles and its cell index.
func setupBench(b *testing.B, n int) (*VelocityUpdate, []int, []r3.Vec, []r3.Vec, []r3.Vec) {
	b.Helper()
	rules := defaultRules()
	g := NewGrid(rules, benchScale)
	pos, vel := randomFlock(rand.New(rand.NewSource(1)), n, benchScale, 1)
	arrayIndex, _, ranges := buildIndex(&g, pos)
	u := &VelocityUpdate{Rules: &rules, Grid: &g, Ranges: &ranges, MaxSpeed: 1}
	return u, arrayIndex, pos, vel, make([]r3.Vec, n)
}

func BenchmarkVelocityBruteForce(b *testing.B) {
	u, _, pos, vel, velNext := setupBench(b, 2000)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		u.BruteForce(pos, vel, velNext, 0, len(pos))
	}
}

func BenchmarkVelocityScattered(b *testing.B) {
	u, arrayIndex, pos, vel, velNext := setupBench(b, 2000)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		u.Scattered(arrayIndex, pos, vel, velNext, 0, len(pos))
	}
}

func BenchmarkVelocityCoherent(b *testing.B) {
	u, arrayIndex, pos, vel, velNext := setupBench(b, 2000)
	sortedPos := make([]r3.Vec, len(pos))
	sortedVel := make([]r3.Vec, len(vel))
	Gather(sortedPos, pos, arrayIndex, 0, len(pos))
	Gather(sortedVel, vel, arrayIndex, 0, len(vel))

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		u.Coherent(sortedPos, sortedVel, velNext, 0, len(pos))
	}
}

// Index build cost paid by both grid modes every tick.
func BenchmarkBuildIndex(b *testing.B) {
	rules := defaultRules()
	g := NewGrid(rules, benchScale)
	pos, _ := randomFlock(rand.New(rand.NewSource(1)), 20000, benchScale, 1)
	arrayIndex := make([]int, len(pos))
	keys := make([]int, len(pos))
	ranges := NewCellRanges(g.CellCount)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		ComputeIndices(&g, pos, arrayIndex, keys, 0, len(pos))
		ResetRanges(&ranges, 0, g.CellCount)
		SortByKey(keys, arrayIndex)
		IdentifyCellRanges(keys, &ranges, 0, len(pos))
	}
}

func BenchmarkGather(b *testing.B) {
	rules := defaultRules()
	g := NewGrid(rules, benchScale)
	pos, _ := randomFlock(rand.New(rand.NewSource(1)), 20000, benchScale, 1)
	arrayIndex, _, _ := buildIndex(&g, pos)
	dst := make([]r3.Vec, len(pos))

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		Gather(dst, pos, arrayIndex, 0, len(pos))
	}
}
