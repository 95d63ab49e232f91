// Package components defines the particle state owned by the simulation.
package components

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Particles is the particle state store. A particle is identified by its slot;
// slot i of every buffer describes the same particle.
//
// Vel is the velocity source read during neighbor search and VelNext the
// destination written by it. PosSpare and VelSpare receive cell-ordered copies
// during the coherent pass and are then swapped into the primary roles.
type Particles struct {
	Pos      []r3.Vec
	PosSpare []r3.Vec
	Vel      []r3.Vec
	VelNext  []r3.Vec
	VelSpare []r3.Vec
}

// NewParticles allocates every buffer for n particles.
// maxCount bounds n (0 = unbounded); exceeding it is reported as an allocation error
// naming the first buffer that could not be sized.
func NewParticles(n, maxCount int) (*Particles, error) {
	if n < 1 {
		return nil, fmt.Errorf("allocating particles: count must be at least 1, got %d", n)
	}
	if maxCount > 0 && n > maxCount {
		return nil, fmt.Errorf("allocating particle positions: %d particles exceeds limit %d", n, maxCount)
	}

	return &Particles{
		Pos:      make([]r3.Vec, n),
		PosSpare: make([]r3.Vec, n),
		Vel:      make([]r3.Vec, n),
		VelNext:  make([]r3.Vec, n),
		VelSpare: make([]r3.Vec, n),
	}, nil
}

// Len returns the particle count.
func (p *Particles) Len() int {
	return len(p.Pos)
}

// SwapVelocities exchanges the source and destination velocity roles.
func (p *Particles) SwapVelocities() {
	p.Vel, p.VelNext = p.VelNext, p.Vel
}

// SwapReordered promotes the spare position and velocity buffers to the primary
// roles after they were filled in cell order.
func (p *Particles) SwapReordered() {
	p.Pos, p.PosSpare = p.PosSpare, p.Pos
	p.Vel, p.VelSpare = p.VelSpare, p.Vel
}

// Release drops every buffer. The store is unusable afterwards.
func (p *Particles) Release() {
	*p = Particles{}
}
