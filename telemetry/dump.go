package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r3"
)

// IndexPairRecord is one sorted (arrayIndex, cellKey) pair.
type IndexPairRecord struct {
	Slot       int `csv:"slot"`
	ArrayIndex int `csv:"array_index"`
	CellID     int `csv:"cell_id"`
}

// CellRangeRecord is one occupied cell of a range table.
type CellRangeRecord struct {
	CellID int `csv:"cell_id"`
	Start  int `csv:"start"`
	End    int `csv:"end"`
}

// ParticleRecord is one particle slot.
type ParticleRecord struct {
	Slot int     `csv:"slot"`
	PX   float64 `csv:"px"`
	PY   float64 `csv:"py"`
	PZ   float64 `csv:"pz"`
	VX   float64 `csv:"vx"`
	VY   float64 `csv:"vy"`
	VZ   float64 `csv:"vz"`
}

// Dumper writes diagnostic read-backs of the per-tick tables as CSV files,
// one file per table per tick.
type Dumper struct {
	dir string
}

// NewDumper creates the dump directory. Returns nil if dir is empty (dumps disabled).
func NewDumper(dir string) (*Dumper, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating dump directory: %w", err)
	}
	return &Dumper{dir: dir}, nil
}

// DumpIndexPairs writes pairs_<tick>.csv.
func (d *Dumper) DumpIndexPairs(tick int32, arrayIndex, cellKey []int) (string, error) {
	if d == nil {
		return "", nil
	}
	records := make([]IndexPairRecord, len(arrayIndex))
	for i := range arrayIndex {
		records[i] = IndexPairRecord{Slot: i, ArrayIndex: arrayIndex[i], CellID: cellKey[i]}
	}
	return d.write(fmt.Sprintf("pairs_%d.csv", tick), &records)
}

// DumpCellRanges writes ranges_<tick>.csv with occupied cells only.
func (d *Dumper) DumpCellRanges(tick int32, start, end []int) (string, error) {
	if d == nil {
		return "", nil
	}
	var records []CellRangeRecord
	for c, s := range start {
		if s < 0 {
			continue
		}
		records = append(records, CellRangeRecord{CellID: c, Start: s, End: end[c]})
	}
	return d.write(fmt.Sprintf("ranges_%d.csv", tick), &records)
}

// DumpParticles writes particles_<tick>.csv.
func (d *Dumper) DumpParticles(tick int32, pos, vel []r3.Vec) (string, error) {
	if d == nil {
		return "", nil
	}
	records := make([]ParticleRecord, len(pos))
	for i := range pos {
		records[i] = ParticleRecord{
			Slot: i,
			PX:   pos[i].X, PY: pos[i].Y, PZ: pos[i].Z,
			VX: vel[i].X, VY: vel[i].Y, VZ: vel[i].Z,
		}
	}
	return d.write(fmt.Sprintf("particles_%d.csv", tick), &records)
}

func (d *Dumper) write(name string, records any) (string, error) {
	path := filepath.Join(d.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(records, f); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

// LoadCellRanges reads a ranges dump back, for offline verification.
func LoadCellRanges(path string) ([]CellRangeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ranges dump: %w", err)
	}
	defer f.Close()

	var records []CellRangeRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("parse ranges dump: %w", err)
	}
	return records, nil
}
