package sim

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestWorkerPoolCoversEveryIndexOnce(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		threshold int
		n         int
	}{
		{"inline below threshold", 4, 100, 50},
		{"single worker", 1, 1, 1000},
		{"uneven chunks", 3, 1, 1001},
		{"more workers than items", 16, 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newWorkerPool(tt.workers, tt.threshold)
			defer p.stop()

			visits := make([]int32, tt.n)
			for round := 0; round < 3; round++ {
				p.run(tt.n, func(i0, i1 int) {
					for i := i0; i < i1; i++ {
						atomic.AddInt32(&visits[i], 1)
					}
				})
			}
			for i, v := range visits {
				if v != 3 {
					t.Fatalf("index %d visited %d times, want 3", i, v)
				}
			}
		})
	}
}

func TestWorkerPoolRestart(t *testing.T) {
	p := newWorkerPool(2, 1)
	var total int64
	p.run(10, func(i0, i1 int) { atomic.AddInt64(&total, int64(i1-i0)) })
	p.stop()
	p.stop()
	p.run(10, func(i0, i1 int) { atomic.AddInt64(&total, int64(i1-i0)) })
	p.stop()

	if total != 20 {
		t.Errorf("total = %d, want 20", total)
	}
}

func TestScatter(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	pos := make([]r3.Vec, 1000)
	vel := make([]r3.Vec, 1000)

	Scatter(rng, pos, vel, 10, 2)

	for i := range pos {
		p := pos[i]
		if p.X < -10 || p.X >= 10 || p.Y < -10 || p.Y >= 10 || p.Z < -10 || p.Z >= 10 {
			t.Fatalf("particle %d at %v outside [-10, 10)", i, p)
		}
		if s := r3.Norm(vel[i]); s > 2+1e-12 {
			t.Fatalf("particle %d speed %v > 2", i, s)
		}
	}

	Scatter(rng, pos, vel, 10, 0)
	for i, v := range vel {
		if v != (r3.Vec{}) {
			t.Fatalf("particle %d velocity %v, want at rest", i, v)
		}
	}
}
