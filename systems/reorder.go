package systems

import "gonum.org/v1/gonum/spatial/r3"

// Gather copies src into dst in sorted order over slots [i0, i1):
// dst[i] = src[arrayIndex[i]]. dst and src must not alias.
func Gather(dst, src []r3.Vec, arrayIndex []int, i0, i1 int) {
	for i := i0; i < i1; i++ {
		dst[i] = src[arrayIndex[i]]
	}
}
