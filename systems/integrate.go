package systems

import "gonum.org/v1/gonum/spatial/r3"

// ClampSpeed rescales v to exactly maxSpeed when it is faster, keeping its direction.
func ClampSpeed(v r3.Vec, maxSpeed float64) r3.Vec {
	speed := r3.Norm(v)
	if speed > maxSpeed {
		return r3.Scale(maxSpeed/speed, v)
	}
	return v
}

// WrapAxis maps a coordinate that left [-scale, scale) to the opposite face.
// Only one crossing per tick is corrected.
func WrapAxis(x, scale float64) float64 {
	if x >= scale {
		return -scale
	}
	if x < -scale {
		return scale
	}
	return x
}

// Advance moves p along v for dt and wraps each axis independently.
func Advance(p, v r3.Vec, dt, scale float64) r3.Vec {
	p = r3.Add(p, r3.Scale(dt, v))
	return r3.Vec{
		X: WrapAxis(p.X, scale),
		Y: WrapAxis(p.Y, scale),
		Z: WrapAxis(p.Z, scale),
	}
}

// UpdatePositions advances pos[i] by vel[i] for particles [i0, i1).
func UpdatePositions(pos, vel []r3.Vec, dt, scale float64, i0, i1 int) {
	for i := i0; i < i1; i++ {
		pos[i] = Advance(pos[i], vel[i], dt, scale)
	}
}
