package systems

// CellRanges maps every cell id to the half-open slice [Start, End) of the
// sorted index-pair arrays occupied by that cell. Unoccupied cells hold NoCell
// in both tables.
type CellRanges struct {
	Start []int
	End   []int
}

// NewCellRanges allocates tables for cellCount cells, all unoccupied.
func NewCellRanges(cellCount int) CellRanges {
	r := CellRanges{
		Start: make([]int, cellCount),
		End:   make([]int, cellCount),
	}
	ResetRanges(&r, 0, cellCount)
	return r
}

// Occupied reports whether cell id holds at least one particle.
func (r *CellRanges) Occupied(id int) bool {
	return r.Start[id] != NoCell
}

// ResetRanges marks cells [i0, i1) unoccupied.
func ResetRanges(r *CellRanges, i0, i1 int) {
	for i := i0; i < i1; i++ {
		r.Start[i] = NoCell
		r.End[i] = NoCell
	}
}

// IdentifyCellRanges fills the range tables from keys sorted in non-decreasing
// order, visiting sorted slots [i0, i1). Each table entry is written by exactly
// one slot, so disjoint chunks can run concurrently.
func IdentifyCellRanges(keys []int, r *CellRanges, i0, i1 int) {
	n := len(keys)
	for i := i0; i < i1; i++ {
		key := keys[i]
		if i == 0 {
			r.Start[key] = 0
		} else if prev := keys[i-1]; prev != key {
			r.End[prev] = i
			r.Start[key] = i
		}
		if i == n-1 {
			r.End[key] = n
		}
	}
}
